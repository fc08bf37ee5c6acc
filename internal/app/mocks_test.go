package app_test

import (
	"context"
	"sync"

	"paraeval/internal/domain"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, s *domain.Session) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	updateFn        func(ctx context.Context, s *domain.Session) error
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Update(ctx context.Context, s *domain.Session) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

type mockCorpusRepo struct {
	sources    []domain.SourceRecord
	candidates map[string][]domain.CandidateRecord
	err        error
}

func (m *mockCorpusRepo) Sources(_ context.Context) ([]domain.SourceRecord, error) {
	return m.sources, m.err
}

func (m *mockCorpusRepo) Candidates(_ context.Context, model domain.Model) ([]domain.CandidateRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates[model.Name], nil
}

type mockScoreRepo struct {
	mu       sync.Mutex
	upsertFn func(ctx context.Context, key domain.LedgerKey, rec domain.ScoreRecord) error
	listFn   func(ctx context.Context, key domain.LedgerKey) ([]domain.ScoreRecord, error)
	upserts  []domain.ScoreRecord
}

func (m *mockScoreRepo) UpsertScore(ctx context.Context, key domain.LedgerKey, rec domain.ScoreRecord) error {
	m.mu.Lock()
	m.upserts = append(m.upserts, rec)
	m.mu.Unlock()
	if m.upsertFn != nil {
		return m.upsertFn(ctx, key, rec)
	}
	return nil
}

func (m *mockScoreRepo) ListScores(ctx context.Context, key domain.LedgerKey) ([]domain.ScoreRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, key)
	}
	return nil, nil
}

type mockAssetRepo struct {
	listFn func(ctx context.Context, category domain.AssetCategory) ([]domain.Asset, error)
	pathFn func(ctx context.Context, category domain.AssetCategory, name string) (string, error)
}

func (m *mockAssetRepo) ListAssets(ctx context.Context, category domain.AssetCategory) ([]domain.Asset, error) {
	if m.listFn != nil {
		return m.listFn(ctx, category)
	}
	return nil, nil
}

func (m *mockAssetRepo) AssetPath(ctx context.Context, category domain.AssetCategory, name string) (string, error) {
	if m.pathFn != nil {
		return m.pathFn(ctx, category, name)
	}
	return "", domain.ErrAssetNotFound
}

var testModels = domain.Models{
	{Name: "gemini 1.5 pro", File: "gemini_15_pro.csv"},
	{Name: "gpt-4o", File: "gpt_4o.csv"},
}

func testCorpus() *mockCorpusRepo {
	return &mockCorpusRepo{
		sources: []domain.SourceRecord{
			{Title: "A", Abstract: "alpha"},
			{Title: "B", Abstract: "beta"},
			{Title: "C", Abstract: "gamma"},
		},
		candidates: map[string][]domain.CandidateRecord{
			"gemini 1.5 pro": {{Title: "A", Paraphrase: "a1"}, {Title: "B", Paraphrase: "b1"}, {Title: "C", Paraphrase: "c1"}},
			"gpt-4o":         {{Title: "A", Paraphrase: "a2"}, {Title: "B", Paraphrase: "b2"}, {Title: "C", Paraphrase: "c2"}},
		},
	}
}
