package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/repository"
	"github.com/stemsi/exstem-quiz/internal/response"
)

// scoreEpsilon absorbs float rounding when summing question scores.
const scoreEpsilon = 1e-9

// ExamService handles exam business logic and the exam content cache.
type ExamService struct {
	examRepo ExamStore
	rdb      *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewExamService creates a new ExamService. rdb may be nil, in which case
// content is always read from the store.
func NewExamService(examRepo ExamStore, rdb *redis.Client, cacheTTL time.Duration, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo: examRepo,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// Create inserts a new exam owned by authorID.
func (s *ExamService) Create(ctx context.Context, authorID int, req model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		Name:            req.Name,
		AuthorID:        authorID,
		DurationMinutes: req.DurationMinutes,
		MaxScore:        req.MaxScore,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	s.log.Info().Int("exam_id", exam.ID).Int("author_id", authorID).Msg("Exam created")
	return exam, nil
}

// GetByID retrieves an exam by its ID.
func (s *ExamService) GetByID(ctx context.Context, id int) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// ListByAuthor retrieves exams, filtered by author when authorID is non-zero.
func (s *ExamService) ListByAuthor(ctx context.Context, authorID, page, perPage int) ([]model.Exam, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	exams, total, err := s.examRepo.ListByAuthorPaginated(ctx, authorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list exams: %w", err)
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, response.NewPagination(page, perPage, total), nil
}

// Content returns the exam with questions and answer keys, reading through
// the Redis cache. Cache failures fall back to the store. A loaded payload is
// only cached if the exam's content generation did not move while it was read.
func (s *ExamService) Content(ctx context.Context, examID int) (*model.ExamContent, error) {
	key := config.CacheKey.ExamContentKey(examID)

	var gen string
	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var content model.ExamContent
			if err := json.Unmarshal(data, &content); err == nil {
				return &content, nil
			}
			s.log.Warn().Int("exam_id", examID).Msg("Discarding undecodable cached exam content")
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Int("exam_id", examID).Msg("Exam content cache read failed")
		}
		gen = s.generation(ctx, examID)
	}

	content, err := s.examRepo.GetContent(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam content: %w", err)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(content); err == nil {
			s.store(ctx, examID, gen, data)
		}
	}
	return content, nil
}

// ReplaceQuestions rewrites the ordered question list of an exam. Existing
// exam codes are deleted with it and the content cache is dropped.
func (s *ExamService) ReplaceQuestions(ctx context.Context, examID int, questions []model.ExamQuestion) error {
	exam, err := s.GetByID(ctx, examID)
	if err != nil {
		return err
	}

	seen := make(map[int]struct{}, len(questions))
	total := 0.0
	for _, q := range questions {
		if _, dup := seen[q.QuestionID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateQuestion, q.QuestionID)
		}
		seen[q.QuestionID] = struct{}{}
		total += q.Score
	}
	if total > exam.MaxScore+scoreEpsilon {
		return fmt.Errorf("%w: %g > %g", ErrScoreExceedsMax, total, exam.MaxScore)
	}

	s.invalidate(ctx, examID)
	if err := s.examRepo.ReplaceQuestions(ctx, examID, questions); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return ErrUnknownQuestion
		}
		return fmt.Errorf("replace questions: %w", err)
	}
	s.invalidate(ctx, examID)

	s.log.Info().Int("exam_id", examID).Int("questions", len(questions)).Msg("Exam questions replaced")
	return nil
}

// generation returns the current content generation of an exam, or "" when
// none was recorded yet.
func (s *ExamService) generation(ctx context.Context, examID int) string {
	gen, err := s.rdb.Get(ctx, config.CacheKey.ExamContentGenKey(examID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int("exam_id", examID).Msg("Exam content generation read failed")
	}
	return gen
}

var errStaleContent = errors.New("exam content changed while loading")

// store caches data unless the generation moved away from gen.
func (s *ExamService) store(ctx context.Context, examID int, gen string, data []byte) {
	genKey := config.CacheKey.ExamContentGenKey(examID)
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleContent
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, config.CacheKey.ExamContentKey(examID), data, s.cacheTTL)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleContent), errors.Is(err, redis.TxFailedErr):
		s.log.Debug().Int("exam_id", examID).Msg("Skipping cache write of outdated exam content")
	default:
		s.log.Warn().Err(err).Int("exam_id", examID).Msg("Exam content cache write failed")
	}
}

// invalidate bumps the content generation and drops the cached payload.
func (s *ExamService) invalidate(ctx context.Context, examID int) {
	if s.rdb == nil {
		return
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, config.CacheKey.ExamContentGenKey(examID))
		pipe.Del(ctx, config.CacheKey.ExamContentKey(examID))
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int("exam_id", examID).Msg("Failed to drop exam content cache")
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
