package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"paraeval/internal/domain"
	"paraeval/internal/metrics"
)

// Scores are the four rubric dimensions submitted for one entry.
type Scores struct {
	Semantic  int `json:"semantic"`
	Syntactic int `json:"syntactic"`
	Fluency   int `json:"fluency"`
	Overall   int `json:"overall"`
}

// ScoreService validates and persists rubric scores.
type ScoreService struct {
	scores   domain.ScoreRepository
	corpus   domain.CorpusRepository
	models   domain.Models
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewScoreService creates a ScoreService.
func NewScoreService(scores domain.ScoreRepository, corpus domain.CorpusRepository, models domain.Models, logger *zap.Logger, m *metrics.Metrics) *ScoreService {
	return &ScoreService{
		scores:   scores,
		corpus:   corpus,
		models:   models,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		metrics:  m,
	}
}

// Save upserts the scores for title into the (username, model) ledger.
func (s *ScoreService) Save(ctx context.Context, username, model, title string, sc Scores) (domain.ScoreRecord, error) {
	rec := domain.ScoreRecord{
		Title:     title,
		Semantic:  sc.Semantic,
		Syntactic: sc.Syntactic,
		Fluency:   sc.Fluency,
		Overall:   sc.Overall,
	}
	if err := s.check(rec); err != nil {
		return domain.ScoreRecord{}, err
	}

	key := domain.LedgerKey{Username: username, Model: model}
	start := time.Now()
	err := s.scores.UpsertScore(ctx, key, rec)
	s.metrics.ObserveLedgerWrite(time.Since(start))
	s.metrics.ScoreSaved(model, err)
	if err != nil {
		s.logger.Error("save scores",
			zap.String("username", username),
			zap.String("model", model),
			zap.String("title", title),
			zap.Error(err))
		return domain.ScoreRecord{}, fmt.Errorf("save scores: %w", err)
	}
	s.logger.Info("scores saved",
		zap.String("username", username),
		zap.String("model", model),
		zap.String("title", title))
	return rec, nil
}

// SaveCurrent saves scores for the pair under the session's cursor. Nothing is
// written when the session's model table is out of step with the input.
func (s *ScoreService) SaveCurrent(ctx context.Context, sess *domain.Session, sc Scores) (domain.ScoreRecord, error) {
	src, _, err := pairAt(ctx, s.corpus, s.models, sess.Model, sess.Cursor)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	return s.Save(ctx, sess.Username, sess.Model, src.Title, sc)
}

// List returns the (username, model) ledger in file order.
func (s *ScoreService) List(ctx context.Context, username, model string) ([]domain.ScoreRecord, error) {
	rows, err := s.scores.ListScores(ctx, domain.LedgerKey{Username: username, Model: model})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.ScoreRecord{}
	}
	return rows, nil
}

func (s *ScoreService) check(rec domain.ScoreRecord) error {
	err := s.validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Field() == "Title" {
			return domain.ErrMissingTitle
		}
	}
	return fmt.Errorf("%s: %w", verrs[0].Field(), domain.ErrInvalidScore)
}
