package service

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/codegen"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/repository"
)

var testLog = zerolog.Nop()

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func fixedGenerator() *codegen.Generator {
	return codegen.NewWithSource(zeroReader{}, func() time.Time { return time.UnixMilli(1_700_000_012_345) })
}

// bankQuestion is a question with its answers as stored in the question bank.
type bankQuestion struct {
	Content string
	Answers []model.Answer
}

type memExamStore struct {
	mu           sync.Mutex
	nextID       int
	exams        map[int]*model.Exam
	bank         map[int]bankQuestion
	questions    map[int][]model.ExamQuestion
	codes        *memCodeStore
	contentCalls int
	// afterContent runs once GetContent has read the data, outside the lock.
	afterContent func()
}

func newMemExamStore(codes *memCodeStore) *memExamStore {
	return &memExamStore{
		exams:     map[int]*model.Exam{},
		bank:      map[int]bankQuestion{},
		questions: map[int][]model.ExamQuestion{},
		codes:     codes,
	}
}

func (m *memExamStore) Create(_ context.Context, e *model.Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.exams[e.ID] = &cp
	return nil
}

func (m *memExamStore) GetByID(_ context.Context, id int) (*model.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memExamStore) ListByAuthorPaginated(_ context.Context, authorID, limit, offset int) ([]model.Exam, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Exam
	for _, e := range m.exams {
		if authorID == 0 || e.AuthorID == authorID {
			all = append(all, *e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return pageOf(all, limit, offset), len(all), nil
}

func (m *memExamStore) QuestionIDs(_ context.Context, examID int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []int{}
	for _, q := range m.questions[examID] {
		ids = append(ids, q.QuestionID)
	}
	return ids, nil
}

func (m *memExamStore) GetContent(_ context.Context, examID int) (*model.ExamContent, error) {
	content, err := m.readContent(examID)
	m.mu.Lock()
	hook := m.afterContent
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return content, err
}

func (m *memExamStore) readContent(examID int) (*model.ExamContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contentCalls++
	e, ok := m.exams[examID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	content := &model.ExamContent{Exam: *e, Questions: []model.ContentQuestion{}}
	for _, eq := range m.questions[examID] {
		bq := m.bank[eq.QuestionID]
		content.Questions = append(content.Questions, model.ContentQuestion{
			ID:      eq.QuestionID,
			Content: bq.Content,
			Score:   eq.Score,
			Answers: slices.Clone(bq.Answers),
		})
	}
	return content, nil
}

func (m *memExamStore) ReplaceQuestions(ctx context.Context, examID int, questions []model.ExamQuestion) error {
	m.mu.Lock()
	for _, q := range questions {
		if _, ok := m.bank[q.QuestionID]; !ok {
			m.mu.Unlock()
			return repository.ErrForeignKey
		}
	}
	m.questions[examID] = slices.Clone(questions)
	m.mu.Unlock()

	if m.codes != nil {
		_, _ = m.codes.DeleteByExam(ctx, examID)
	}
	return nil
}

func (m *memExamStore) addQuestion(id int, content string, answers ...model.Answer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range answers {
		answers[i].QuestionID = id
	}
	m.bank[id] = bankQuestion{Content: content, Answers: answers}
}

func (m *memExamStore) getContentCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contentCalls
}

type memCodeStore struct {
	mu     sync.Mutex
	nextID int
	codes  map[int][]model.ExamCode
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{codes: map[int][]model.ExamCode{}}
}

func (m *memCodeStore) ListByExam(_ context.Context, examID int) ([]model.ExamCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ExamCode{}
	for _, c := range m.codes[examID] {
		c.QuestionOrder = slices.Clone(c.QuestionOrder)
		out = append(out, c)
	}
	return out, nil
}

func (m *memCodeStore) InsertBatch(_ context.Context, examID int, codes []model.ExamCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]model.ExamCode, len(codes))
	for i := range codes {
		m.nextID++
		codes[i].ID = m.nextID
		codes[i].ExamID = examID
		codes[i].CreatedAt = time.Now()
		stored[i] = codes[i]
		stored[i].QuestionOrder = slices.Clone(codes[i].QuestionOrder)
	}
	m.codes[examID] = append(m.codes[examID], stored...)
	return nil
}

func (m *memCodeStore) DeleteByExam(_ context.Context, examID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.codes[examID]))
	delete(m.codes, examID)
	return n, nil
}

func (m *memCodeStore) PrefixExists(_ context.Context, prefix string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, codes := range m.codes {
		for _, c := range codes {
			if strings.HasPrefix(c.Code, prefix) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memCodeStore) codeByID(id int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, codes := range m.codes {
		for _, c := range codes {
			if c.ID == id {
				return c.Code, true
			}
		}
	}
	return "", false
}

type memAssignmentStore struct {
	mu     sync.Mutex
	nextID int
	items  map[model.AssignmentRef]model.Assignment
}

func newMemAssignmentStore() *memAssignmentStore {
	return &memAssignmentStore{items: map[model.AssignmentRef]model.Assignment{}}
}

func (m *memAssignmentStore) Create(_ context.Context, a *model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.Ref()]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	m.items[a.Ref()] = *a
	return nil
}

func (m *memAssignmentStore) Get(_ context.Context, ref model.AssignmentRef) (*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[ref]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

type memResultStore struct {
	mu     sync.Mutex
	nextID int
	items  map[int]*model.ExamResult
	names  map[int]string
	codes  *memCodeStore
}

func newMemResultStore(codes *memCodeStore) *memResultStore {
	return &memResultStore{items: map[int]*model.ExamResult{}, names: map[int]string{}, codes: codes}
}

func cloneResult(r *model.ExamResult) *model.ExamResult {
	cp := *r
	cp.Answers = slices.Clone(r.Answers)
	cp.CorrectAnswers = slices.Clone(r.CorrectAnswers)
	if r.SubmittedAt != nil {
		t := *r.SubmittedAt
		cp.SubmittedAt = &t
	}
	return &cp
}

func (m *memResultStore) find(userID int, ref model.AssignmentRef) *model.ExamResult {
	for _, r := range m.items {
		if r.UserID == userID && r.Ref() == ref {
			return r
		}
	}
	return nil
}

func (m *memResultStore) GetByUserAndAssignment(_ context.Context, userID int, ref model.AssignmentRef) (*model.ExamResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(userID, ref)
	if r == nil {
		return nil, repository.ErrNotFound
	}
	return cloneResult(r), nil
}

func (m *memResultStore) Create(_ context.Context, res *model.ExamResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(res.UserID, res.Ref()) != nil {
		return repository.ErrDuplicate
	}
	m.nextID++
	res.ID = m.nextID
	m.items[res.ID] = cloneResult(res)
	return nil
}

func (m *memResultStore) Submit(_ context.Context, res *model.ExamResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[res.ID]
	if !ok || stored.SubmittedAt != nil {
		return repository.ErrConditionFailed
	}
	m.items[res.ID] = cloneResult(res)
	return nil
}

func (m *memResultStore) ListByAssignment(_ context.Context, ref model.AssignmentRef, filter model.ResultFilter, limit, offset int) ([]model.ResultSummary, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.ResultSummary
	for _, r := range m.items {
		if r.Ref() != ref {
			continue
		}
		name := m.names[r.UserID]
		if filter.StudentName != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(filter.StudentName)) {
			continue
		}
		s := model.ResultSummary{
			ID:          r.ID,
			UserID:      r.UserID,
			StudentName: name,
			Score:       r.Score,
			MaxScore:    r.MaxScore,
			Status:      r.Status(),
			StartedAt:   r.StartedAt,
			SubmittedAt: r.SubmittedAt,
		}
		if r.ExamCodeID != nil && m.codes != nil {
			if code, ok := m.codes.codeByID(*r.ExamCodeID); ok {
				s.ExamCode = &code
			}
		}
		if r.SubmittedAt != nil {
			d := int64(r.SubmittedAt.Sub(r.StartedAt) / time.Second)
			s.DurationSeconds = &d
		}
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartedAt.Equal(all[j].StartedAt) {
			return all[i].StartedAt.After(all[j].StartedAt)
		}
		return all[i].ID > all[j].ID
	})
	return pageOf(all, limit, offset), len(all), nil
}

func (m *memResultStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type memGroups struct {
	mu     sync.Mutex
	nextID int
	codes  map[string]bool
	ids    map[int]bool
	taken  map[string]bool
}

func (m *memGroups) init() {
	m.codes = map[string]bool{}
	m.ids = map[int]bool{}
	m.taken = map[string]bool{}
}

func (m *memGroups) CodeExists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[code], nil
}

func (m *memGroups) Exists(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[id], nil
}

// insert stores a group. Codes listed in taken collide once, like a
// concurrent insert that won the race.
func (m *memGroups) insert(code string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken[code] {
		delete(m.taken, code)
		m.codes[code] = true
		return 0, repository.ErrDuplicate
	}
	if m.codes[code] {
		return 0, repository.ErrDuplicate
	}
	m.nextID++
	m.codes[code] = true
	m.ids[m.nextID] = true
	return m.nextID, nil
}

type memClassStore struct{ memGroups }

func newMemClassStore() *memClassStore {
	s := &memClassStore{}
	s.init()
	return s
}

func (m *memClassStore) Create(_ context.Context, c *model.Class) error {
	id, err := m.insert(c.Code)
	if err != nil {
		return err
	}
	c.ID = id
	c.CreatedAt = time.Now()
	return nil
}

type memRoomStore struct{ memGroups }

func newMemRoomStore() *memRoomStore {
	s := &memRoomStore{}
	s.init()
	return s
}

func (m *memRoomStore) Create(_ context.Context, r *model.Room) error {
	id, err := m.insert(r.Code)
	if err != nil {
		return err
	}
	r.ID = id
	r.CreatedAt = time.Now()
	return nil
}

func pageOf[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := min(offset+limit, len(all))
	return slices.Clone(all[offset:end])
}
