package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"paraeval/internal/domain"
	"paraeval/internal/metrics"
)

// Navigation actions, also used as metric labels.
const (
	ActionNext  = "next"
	ActionPrev  = "prev"
	ActionGoto  = "goto"
	ActionModel = "model"
)

// Entry is the source/candidate pair under a session's cursor.
type Entry struct {
	Index     int                    `json:"index"`
	Total     int                    `json:"total"`
	Model     string                 `json:"model"`
	Source    domain.SourceRecord    `json:"source"`
	Candidate domain.CandidateRecord `json:"candidate"`
}

// EvaluationService moves a session's cursor over the corpus and resolves the
// pair shown at each position.
type EvaluationService struct {
	corpus   domain.CorpusRepository
	sessions domain.SessionRepository
	models   domain.Models
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewEvaluationService creates an EvaluationService.
func NewEvaluationService(corpus domain.CorpusRepository, sessions domain.SessionRepository, models domain.Models, logger *zap.Logger, m *metrics.Metrics) *EvaluationService {
	return &EvaluationService{corpus: corpus, sessions: sessions, models: models, logger: logger, metrics: m}
}

// Models returns the configured model catalog.
func (s *EvaluationService) Models() domain.Models {
	return s.models
}

// Pair returns the source record and the named model's paraphrase at index.
func (s *EvaluationService) Pair(ctx context.Context, modelName string, index int) (domain.SourceRecord, domain.CandidateRecord, error) {
	return pairAt(ctx, s.corpus, s.models, modelName, index)
}

// pairAt resolves the aligned source/candidate pair at index. A model table
// whose length differs from the input fails with ErrCorpusMisaligned.
func pairAt(ctx context.Context, corpus domain.CorpusRepository, models domain.Models, modelName string, index int) (domain.SourceRecord, domain.CandidateRecord, error) {
	model, ok := models.Lookup(modelName)
	if !ok {
		return domain.SourceRecord{}, domain.CandidateRecord{}, fmt.Errorf("%q: %w", modelName, domain.ErrUnknownModel)
	}
	sources, err := corpus.Sources(ctx)
	if err != nil {
		return domain.SourceRecord{}, domain.CandidateRecord{}, err
	}
	candidates, err := corpus.Candidates(ctx, model)
	if err != nil {
		return domain.SourceRecord{}, domain.CandidateRecord{}, err
	}
	if len(candidates) != len(sources) {
		return domain.SourceRecord{}, domain.CandidateRecord{}, fmt.Errorf("%s has %d rows, input has %d: %w",
			model.Name, len(candidates), len(sources), domain.ErrCorpusMisaligned)
	}
	if index < 0 || index >= len(sources) {
		return domain.SourceRecord{}, domain.CandidateRecord{}, fmt.Errorf("index %d of %d: %w", index, len(sources), domain.ErrIndexOutOfRange)
	}
	return sources[index], candidates[index], nil
}

// Current returns the entry under the session's cursor. A cursor left out of
// range by a shrunken corpus is clamped and persisted first.
func (s *EvaluationService) Current(ctx context.Context, sess *domain.Session) (*Entry, error) {
	n, err := s.total(ctx)
	if err != nil {
		return nil, err
	}
	before := sess.Cursor
	sess.Clamp(n)
	if sess.Cursor != before {
		if err := s.sessions.Update(ctx, sess); err != nil {
			return nil, err
		}
	}
	return s.entry(ctx, sess, n)
}

// Next advances the cursor, stopping on the last entry.
func (s *EvaluationService) Next(ctx context.Context, sess *domain.Session) (*Entry, error) {
	return s.move(ctx, sess, ActionNext, sess.Advance)
}

// Prev moves the cursor back, stopping on the first entry.
func (s *EvaluationService) Prev(ctx context.Context, sess *domain.Session) (*Entry, error) {
	return s.move(ctx, sess, ActionPrev, func(int) { sess.Retreat() })
}

// Goto jumps to the zero-based index typed by the reviewer. Anything that is
// not an in-range integer leaves the cursor where it is.
func (s *EvaluationService) Goto(ctx context.Context, sess *domain.Session, input string) (*Entry, error) {
	return s.move(ctx, sess, ActionGoto, func(n int) { sess.Jump(input, n) })
}

// SelectModel switches the candidate model. The cursor is kept.
func (s *EvaluationService) SelectModel(ctx context.Context, sess *domain.Session, name string) error {
	if _, ok := s.models.Lookup(name); !ok {
		return fmt.Errorf("%q: %w", name, domain.ErrUnknownModel)
	}
	s.metrics.Navigated(ActionModel)
	if sess.Model == name {
		return nil
	}
	sess.Model = name
	if err := s.sessions.Update(ctx, sess); err != nil {
		return err
	}
	s.logger.Debug("model selected", zap.String("username", sess.Username), zap.String("model", name))
	return nil
}

func (s *EvaluationService) move(ctx context.Context, sess *domain.Session, action string, step func(n int)) (*Entry, error) {
	n, err := s.total(ctx)
	if err != nil {
		return nil, err
	}
	before := sess.Cursor
	sess.Clamp(n)
	step(n)
	if sess.Cursor != before {
		if err := s.sessions.Update(ctx, sess); err != nil {
			return nil, err
		}
	}
	s.metrics.Navigated(action)
	return s.entry(ctx, sess, n)
}

func (s *EvaluationService) entry(ctx context.Context, sess *domain.Session, n int) (*Entry, error) {
	src, cand, err := s.Pair(ctx, sess.Model, sess.Cursor)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Index:     sess.Cursor,
		Total:     n,
		Model:     sess.Model,
		Source:    src,
		Candidate: cand,
	}, nil
}

func (s *EvaluationService) total(ctx context.Context) (int, error) {
	sources, err := s.corpus.Sources(ctx)
	if err != nil {
		return 0, err
	}
	return len(sources), nil
}
