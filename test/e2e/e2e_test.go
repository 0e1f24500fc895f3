//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/xuri/excelize/v2"
)

const (
	defaultBaseURL = "http://localhost:8080/api/v1"
	adminEmail     = "e2e_admin@example.com"
	studentEmail   = "e2e_student@example.com"
	studentName    = "E2E Student"
	lateEmail      = "late_student@example.com"
	lateName       = "Late Student"
)

var (
	baseURL      string
	dbURL        string
	adminID      int
	studentID    int
	lateID       int
	questionIDs  []int
	correctIDs   []int
	adminToken   string
	studentToken string
	lateToken    string
	examID       int
	classID      int
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	cfg := config.Load()
	dbURL = cfg.DatabaseURL

	// 1. Seed users and the question bank.
	if err := seed(); err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	// 2. Sign tokens the way the login service would.
	auth := service.NewAuthService(cfg)
	perms := make([]string, len(model.AllPermissions))
	for i, p := range model.AllPermissions {
		perms[i] = string(p)
	}
	var err error
	if adminToken, err = auth.GenerateToken(service.TokenTypeAdmin, adminID, perms); err != nil {
		fmt.Printf("Sign admin token: %v\n", err)
		os.Exit(1)
	}
	if studentToken, err = auth.GenerateToken(service.TokenTypeStudent, studentID, nil); err != nil {
		fmt.Printf("Sign student token: %v\n", err)
		os.Exit(1)
	}
	if lateToken, err = auth.GenerateToken(service.TokenTypeStudent, lateID, nil); err != nil {
		fmt.Printf("Sign student token: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func seed() error {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer conn.Close(ctx)

	// Cleanup previous test data (order matters due to FK)
	tables := []string{"exam_results", "exam_assignments", "exam_codes", "exam_questions", "exams", "classes", "rooms", "answers", "questions", "users"}
	for _, table := range tables {
		if _, err := conn.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("cleanup %s: %w", table, err)
		}
	}

	if err := conn.QueryRow(ctx,
		`INSERT INTO users (name, email, role) VALUES ('E2E Admin', $1, 'admin') RETURNING id`, adminEmail,
	).Scan(&adminID); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	if err := conn.QueryRow(ctx,
		`INSERT INTO users (name, email, role) VALUES ($1, $2, 'student') RETURNING id`, studentName, studentEmail,
	).Scan(&studentID); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	if err := conn.QueryRow(ctx,
		`INSERT INTO users (name, email, role) VALUES ($1, $2, 'student') RETURNING id`, lateName, lateEmail,
	).Scan(&lateID); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}

	// Three questions with four answers each; the second answer is correct.
	for i := 1; i <= 3; i++ {
		var qID int
		if err := conn.QueryRow(ctx,
			`INSERT INTO questions (author_id, content) VALUES ($1, $2) RETURNING id`,
			adminID, fmt.Sprintf("What is %d+%d?", i, i),
		).Scan(&qID); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		questionIDs = append(questionIDs, qID)

		for j := 0; j < 4; j++ {
			var aID int
			if err := conn.QueryRow(ctx,
				`INSERT INTO answers (question_id, content, is_correct) VALUES ($1, $2, $3) RETURNING id`,
				qID, fmt.Sprint(2*i+j-1), j == 1,
			).Scan(&aID); err != nil {
				return fmt.Errorf("insert answer: %w", err)
			}
			if j == 1 {
				correctIDs = append(correctIDs, aID)
			}
		}
	}
	return nil
}

func TestE2EFlow(t *testing.T) {
	t.Run("CreateExam", func(t *testing.T) {
		resp, err := send(http.MethodPost, "/admin/exams", model.CreateExamRequest{
			Name:            "E2E Test Exam",
			DurationMinutes: 60,
			MaxScore:        30,
		}, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Exam model.Exam `json:"exam"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		examID = body.Data.Exam.ID
		if examID == 0 {
			t.Fatal("exam ID missing")
		}
	})

	t.Run("ScoreOverMaxRejected", func(t *testing.T) {
		req := model.ReplaceQuestionsRequest{}
		for _, id := range questionIDs {
			req.Questions = append(req.Questions, model.ExamQuestion{QuestionID: id, Score: 20})
		}
		resp, err := send(http.MethodPut, fmt.Sprintf("/admin/exams/%d/questions", examID), req, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("ReplaceQuestions", func(t *testing.T) {
		req := model.ReplaceQuestionsRequest{}
		for _, id := range questionIDs {
			req.Questions = append(req.Questions, model.ExamQuestion{QuestionID: id, Score: 10})
		}
		resp, err := send(http.MethodPut, fmt.Sprintf("/admin/exams/%d/questions", examID), req, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusOK)
	})

	t.Run("GenerateCodes", func(t *testing.T) {
		resp, err := send(http.MethodPost, fmt.Sprintf("/admin/exams/%d/codes", examID), model.GenerateExamCodesRequest{Count: 3}, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Codes []model.ExamCode `json:"codes"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if len(body.Data.Codes) != 3 {
			t.Fatalf("got %d codes, want 3", len(body.Data.Codes))
		}
		for _, c := range body.Data.Codes {
			if len(c.QuestionOrder) != len(questionIDs) {
				t.Errorf("code %s order = %v", c.Code, c.QuestionOrder)
			}
		}
	})

	t.Run("CreateClass", func(t *testing.T) {
		resp, err := send(http.MethodPost, "/admin/classes", model.CreateGroupRequest{Name: "X RPL 1"}, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Class model.Class `json:"class"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		classID = body.Data.Class.ID
		if classID == 0 || body.Data.Class.Code == "" {
			t.Fatalf("class = %+v", body.Data.Class)
		}
	})

	t.Run("AssignExam", func(t *testing.T) {
		start := time.Now().Add(-time.Minute)
		resp, err := send(http.MethodPost, fmt.Sprintf("/admin/assignments/class/%d/exams", classID), model.CreateAssignmentRequest{
			ExamID:  examID,
			StartAt: start,
			EndAt:   start.Add(2 * time.Hour),
		}, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusCreated)
	})

	attemptPath := func(action string) string {
		return fmt.Sprintf("/student/assignments/class/%d/exams/%d/%s", classID, examID, action)
	}

	t.Run("StartExam", func(t *testing.T) {
		resp, err := send(http.MethodPost, attemptPath("start"), nil, studentToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Session model.SessionView `json:"session"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if len(body.Data.Session.Questions) != len(questionIDs) || body.Data.Session.Code == "" {
			t.Fatalf("session = %+v", body.Data.Session)
		}
	})

	t.Run("RegenerateCodesKeepsEarlierBatch", func(t *testing.T) {
		codesPath := fmt.Sprintf("/admin/exams/%d/codes", examID)
		resp, err := send(http.MethodPost, codesPath, model.GenerateExamCodesRequest{Count: 2}, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusCreated)

		listResp, err := send(http.MethodGet, codesPath, nil, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer listResp.Body.Close()
		expectStatus(t, listResp, http.StatusOK)

		var body struct {
			Data struct {
				Codes []model.ExamCode `json:"codes"`
			} `json:"data"`
		}
		decodeJSON(t, listResp, &body)
		if len(body.Data.Codes) != 5 {
			t.Fatalf("got %d codes, want 5", len(body.Data.Codes))
		}
	})

	t.Run("SecondStartRejected", func(t *testing.T) {
		resp, err := send(http.MethodPost, attemptPath("start"), nil, studentToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusConflict)
	})

	t.Run("SubmitExam", func(t *testing.T) {
		// Two of three correct.
		answers := []model.AnswerSet{
			{QuestionID: questionIDs[0], AnswerIDs: []int{correctIDs[0]}},
			{QuestionID: questionIDs[1], AnswerIDs: []int{correctIDs[1], correctIDs[1]}},
			{QuestionID: questionIDs[2], AnswerIDs: []int{}},
		}
		resp, err := send(http.MethodPost, attemptPath("submit"), model.SubmitExamRequest{Answers: answers}, studentToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusOK)

		var body struct {
			Data struct {
				Result model.ExamResult `json:"result"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.Result.Score != 20 || body.Data.Result.MaxScore != 30 {
			t.Errorf("score = %v / %v, want 20 / 30", body.Data.Result.Score, body.Data.Result.MaxScore)
		}
	})

	t.Run("SecondSubmitRejected", func(t *testing.T) {
		resp, err := send(http.MethodPost, attemptPath("submit"), model.SubmitExamRequest{}, studentToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusConflict)
	})

	t.Run("LateStudentStarts", func(t *testing.T) {
		resp, err := send(http.MethodPost, attemptPath("start"), nil, lateToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusCreated)
	})

	resultsPath := fmt.Sprintf("/admin/assignments/class/%d/exams/%d/results", classID, examID)

	t.Run("DurationSortKeepsInProgressLast", func(t *testing.T) {
		for _, dir := range []string{"asc", "desc"} {
			resp, err := send(http.MethodGet, resultsPath+"?duration_sort="+dir, nil, adminToken)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			expectStatus(t, resp, http.StatusOK)

			var body struct {
				Data struct {
					Results []model.ResultSummary `json:"results"`
				} `json:"data"`
			}
			decodeJSON(t, resp, &body)
			resp.Body.Close()

			results := body.Data.Results
			if len(results) != 2 {
				t.Fatalf("duration_sort=%s: got %d results, want 2", dir, len(results))
			}
			if results[0].UserID != studentID || results[0].DurationSeconds == nil {
				t.Errorf("duration_sort=%s: first = %+v, want the submitted attempt", dir, results[0])
			}
			last := results[1]
			if last.UserID != lateID || last.Status != model.ResultStatusInProgress || last.DurationSeconds != nil {
				t.Errorf("duration_sort=%s: last = %+v, want the in-progress attempt", dir, last)
			}
		}
	})

	t.Run("ListResults", func(t *testing.T) {
		resp, err := send(http.MethodGet, resultsPath+"?student_name=e2e&score_sort=desc", nil, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusOK)

		var body struct {
			Data struct {
				Results []model.ResultSummary `json:"results"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if len(body.Data.Results) != 1 {
			t.Fatalf("got %d results, want 1", len(body.Data.Results))
		}
		if r := body.Data.Results[0]; r.Status != model.ResultStatusSubmitted || r.DurationSeconds == nil {
			t.Errorf("result = %+v", r)
		}

		// A name that matches nobody.
		respEmpty, err := send(http.MethodGet, resultsPath+"?student_name=nobody", nil, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer respEmpty.Body.Close()
		decodeJSON(t, respEmpty, &body)
		if len(body.Data.Results) != 0 {
			t.Errorf("expected no results, got %d", len(body.Data.Results))
		}
	})

	t.Run("ExportResults", func(t *testing.T) {
		resp, err := send(http.MethodGet, resultsPath+"/export", nil, adminToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		expectStatus(t, resp, http.StatusOK)

		f, err := excelize.OpenReader(resp.Body)
		if err != nil {
			t.Fatalf("open workbook: %v", err)
		}
		defer f.Close()
		rows, err := f.GetRows("Results")
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 {
			t.Fatalf("rows = %v, want header and 2 attempts", rows)
		}
		names := []string{rows[1][1], rows[2][1]}
		if !slices.Contains(names, studentName) || !slices.Contains(names, lateName) {
			t.Errorf("student names = %v", names)
		}
	})
}

// Helpers

func send(method, path string, body any, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status %d, want %d: %s", resp.StatusCode, want, readBody(resp))
	}
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
