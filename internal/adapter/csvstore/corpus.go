package csvstore

import (
	"context"
	"fmt"
	"path/filepath"

	"paraeval/internal/domain"
)

// CorpusStore serves the input corpus and the per-model candidate tables.
// Returned slices are shared with the cache and must not be modified.
type CorpusStore struct {
	dataDir   string
	inputFile string
	cache     *tableCache
}

var _ domain.CorpusRepository = (*CorpusStore)(nil)

// NewCorpusStore creates a store resolving relative file names against dataDir.
func NewCorpusStore(dataDir, inputFile string) *CorpusStore {
	return &CorpusStore{dataDir: dataDir, inputFile: inputFile, cache: newTableCache()}
}

// DataDir returns the directory the store reads from.
func (s *CorpusStore) DataDir() string {
	return s.dataDir
}

func (s *CorpusStore) resolve(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(s.dataDir, name)
}

// Sources returns the input corpus (Title, Abstract).
func (s *CorpusStore) Sources(ctx context.Context) ([]domain.SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := s.cache.get(s.resolve(s.inputFile), loadSources)
	if err != nil {
		return nil, fmt.Errorf("load input corpus: %w", err)
	}
	return v.([]domain.SourceRecord), nil
}

// Candidates returns the paraphrase table (Title, ParaphrasedAbstract) of model.
func (s *CorpusStore) Candidates(ctx context.Context, model domain.Model) ([]domain.CandidateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := s.cache.get(s.resolve(model.File), loadCandidates)
	if err != nil {
		return nil, fmt.Errorf("load %s table: %w", model.Name, err)
	}
	return v.([]domain.CandidateRecord), nil
}

// Invalidate drops any cached table read from path.
func (s *CorpusStore) Invalidate(path string) {
	s.cache.invalidate(path)
}

func loadSources(path string) (any, error) {
	t, err := readTable(path, "Title", "Abstract")
	if err != nil {
		return nil, err
	}
	out := make([]domain.SourceRecord, len(t.rows))
	for i := range t.rows {
		out[i] = domain.SourceRecord{Title: t.get(i, "Title"), Abstract: t.get(i, "Abstract")}
	}
	return out, nil
}

func loadCandidates(path string) (any, error) {
	t, err := readTable(path, "Title", "ParaphrasedAbstract")
	if err != nil {
		return nil, err
	}
	out := make([]domain.CandidateRecord, len(t.rows))
	for i := range t.rows {
		out[i] = domain.CandidateRecord{Title: t.get(i, "Title"), Paraphrase: t.get(i, "ParaphrasedAbstract")}
	}
	return out, nil
}
