package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"

	"github.com/stemsi/exstem-quiz/internal/codegen"
	"github.com/stemsi/exstem-quiz/internal/model"
)

func TestShuffle(t *testing.T) {
	ids := []int{1, 2, 3, 4}

	got := Shuffle(ids, func(int) int { return 0 })
	if want := []int{2, 3, 4, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Shuffle() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(ids, []int{1, 2, 3, 4}) {
		t.Errorf("input mutated: %v", ids)
	}

	identity := Shuffle(ids, func(n int) int { return n - 1 })
	if !reflect.DeepEqual(identity, ids) {
		t.Errorf("Shuffle(identity) = %v, want %v", identity, ids)
	}

	if out := Shuffle(nil, rand.IntN); len(out) != 0 {
		t.Errorf("Shuffle(nil) = %v", out)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	ids := []int{10, 20, 30, 40, 50, 60, 70}
	for range 100 {
		out := Shuffle(ids, r.IntN)
		sorted := slices.Sorted(slices.Values(out))
		if !reflect.DeepEqual(sorted, ids) {
			t.Fatalf("Shuffle() = %v is not a permutation of %v", out, ids)
		}
	}
}

func TestBuildVariants(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	codes, err := f.variants.BuildVariants(ctx, f.exam.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	wantCodes := []string{"000000001", "000000002", "000000003"}
	for i, c := range codes {
		if c.Code != wantCodes[i] {
			t.Errorf("codes[%d] = %q, want %q", i, c.Code, wantCodes[i])
		}
		if c.ID == 0 || c.ExamID != f.exam.ID {
			t.Errorf("codes[%d] not stored: %+v", i, c)
		}
		if got := slices.Sorted(slices.Values(c.QuestionOrder)); !reflect.DeepEqual(got, []int{1, 2}) {
			t.Errorf("codes[%d] order %v is not a permutation", i, c.QuestionOrder)
		}
	}

	again, err := f.variants.BuildVariants(ctx, f.exam.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	listed, err := f.variants.ListVariants(ctx, f.exam.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 5 {
		t.Fatalf("ListVariants() = %d codes, want 5", len(listed))
	}
	// Every candidate prefix collides with the first batch, so the
	// generator falls back to a timestamp suffix.
	if again[0].Code != "0000002345001" {
		t.Errorf("second batch code = %q", again[0].Code)
	}

	n, err := f.variants.DeleteVariants(ctx, f.exam.ID)
	if err != nil || n != 5 {
		t.Errorf("DeleteVariants() = %d, %v; want 5, nil", n, err)
	}
}

func TestRebuildKeepsCodesReferencedByAttempts(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	first, err := f.variants.BuildVariants(ctx, f.exam.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.sessions.Start(ctx, 7, f.ref); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := f.variants.BuildVariants(ctx, f.exam.ID, 2); err != nil {
		t.Fatal(err)
	}

	listed, err := f.variants.ListVariants(ctx, f.exam.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 3 {
		t.Fatalf("ListVariants() = %d codes, want 3", len(listed))
	}

	attempt, err := f.sessions.GetAttempt(ctx, 7, f.ref)
	if err != nil {
		t.Fatal(err)
	}
	if attempt.ExamCodeID == nil || *attempt.ExamCodeID != first[0].ID {
		t.Fatalf("ExamCodeID = %v, want %d", attempt.ExamCodeID, first[0].ID)
	}
	found := slices.ContainsFunc(listed, func(c model.ExamCode) bool {
		return c.ID == *attempt.ExamCodeID && c.Code == first[0].Code
	})
	if !found {
		t.Errorf("code %d used by the attempt is gone after rebuilding", *attempt.ExamCodeID)
	}
}

func TestBuildVariantsErrors(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	empty := &model.Exam{Name: "Empty", DurationMinutes: 10, MaxScore: 1}
	if err := f.exams.Create(ctx, empty); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		examID  int
		count   int
		wantErr error
	}{
		{"zero count", f.exam.ID, 0, ErrInvalidVariantCount},
		{"above batch cap", f.exam.ID, 51, ErrInvalidVariantCount},
		{"missing exam", 404, 1, ErrExamNotFound},
		{"no questions", empty.ID, 1, ErrEmptyQuestionSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.variants.BuildVariants(ctx, tt.examID, tt.count); !errors.Is(err, tt.wantErr) {
				t.Errorf("BuildVariants() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildVariantsRejectsCountsBeyondSequenceWidth(t *testing.T) {
	f := newSessionFixture(t)
	svc := NewVariantService(f.exams, f.codes, fixedGenerator(), 5000, testLog)

	if _, err := svc.BuildVariants(context.Background(), f.exam.ID, 1000); !errors.Is(err, ErrInvalidVariantCount) {
		t.Fatalf("BuildVariants(1000) error = %v, want ErrInvalidVariantCount", err)
	}

	codes, err := svc.BuildVariants(context.Background(), f.exam.ID, 999)
	if err != nil {
		t.Fatal(err)
	}
	if last := codes[len(codes)-1].Code; last != "000000999" {
		t.Errorf("last code = %q, want 000000999", last)
	}
}

func TestBuildVariantsPropagatesPrefixLookupFailure(t *testing.T) {
	f := newSessionFixture(t)
	boom := errors.New("lookup failed")
	svc := NewVariantService(f.exams, failingPrefixStore{f.codes, boom}, codegen.New(), 5, testLog)

	if _, err := svc.BuildVariants(context.Background(), f.exam.ID, 1); !errors.Is(err, boom) {
		t.Errorf("BuildVariants() error = %v, want %v", err, boom)
	}
}

type failingPrefixStore struct {
	*memCodeStore
	err error
}

func (s failingPrefixStore) PrefixExists(context.Context, string) (bool, error) {
	return false, s.err
}
