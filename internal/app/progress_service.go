package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"paraeval/internal/domain"
)

// ProgressService reports how much of the corpus a reviewer has scored.
type ProgressService struct {
	scores domain.ScoreRepository
	corpus domain.CorpusRepository
	models domain.Models
}

// NewProgressService creates a ProgressService backed by the given repositories.
func NewProgressService(scores domain.ScoreRepository, corpus domain.CorpusRepository, models domain.Models) *ProgressService {
	return &ProgressService{scores: scores, corpus: corpus, models: models}
}

// ModelProgress is one model's row in the progress report.
type ModelProgress struct {
	Model  string `json:"model"`
	Scored int    `json:"scored"`
	Total  int    `json:"total"`
}

// Progress returns scored/total per configured model, in catalog order. Only
// ledger rows whose title is in the current corpus count as scored.
func (s *ProgressService) Progress(ctx context.Context, username string) ([]ModelProgress, error) {
	sources, err := s.corpus.Sources(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]struct{}, len(sources))
	for _, r := range sources {
		titles[r.Title] = struct{}{}
	}

	out := make([]ModelProgress, len(s.models))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range s.models {
		g.Go(func() error {
			rows, err := s.scores.ListScores(ctx, domain.LedgerKey{Username: username, Model: m.Name})
			if err != nil {
				return err
			}
			scored := 0
			for _, r := range rows {
				if _, ok := titles[r.Title]; ok {
					scored++
				}
			}
			out[i] = ModelProgress{Model: m.Name, Scored: scored, Total: len(sources)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
