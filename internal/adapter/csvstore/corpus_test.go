package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paraeval/internal/domain"
)

const inputCSV = `Title,Abstract
Paper A,"First abstract, with a comma"
Paper B,"Second abstract
spanning two lines"
`

const gptCSV = `Title,ParaphrasedAbstract
Paper A,Paraphrase one
Paper B,Paraphrase two
`

func TestCorpusStore_Sources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "input.csv", inputCSV)

	s := NewCorpusStore(dir, "input.csv")
	src, err := s.Sources(context.Background())
	require.NoError(t, err)
	require.Len(t, src, 2)
	assert.Equal(t, domain.SourceRecord{Title: "Paper A", Abstract: "First abstract, with a comma"}, src[0])
	assert.Equal(t, "Second abstract\nspanning two lines", src[1].Abstract)
}

func TestCorpusStore_Candidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gpt_4o.csv", gptCSV)

	s := NewCorpusStore(dir, "input.csv")
	c, err := s.Candidates(context.Background(), domain.Model{Name: "gpt-4o", File: "gpt_4o.csv"})
	require.NoError(t, err)
	require.Len(t, c, 2)
	assert.Equal(t, domain.CandidateRecord{Title: "Paper B", Paraphrase: "Paraphrase two"}, c[1])
}

func TestCorpusStore_MissingTable(t *testing.T) {
	s := NewCorpusStore(t.TempDir(), "input.csv")
	_, err := s.Sources(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCorpusStore_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "llama.csv", "Title,Abstract\nx,y\n")

	s := NewCorpusStore(dir, "input.csv")
	_, err := s.Candidates(context.Background(), domain.Model{Name: "llama", File: "llama.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ParaphrasedAbstract")
}

func TestCorpusStore_CachesUntilFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "input.csv", inputCSV)
	s := NewCorpusStore(dir, "input.csv")
	ctx := context.Background()

	first, err := s.Sources(ctx)
	require.NoError(t, err)
	second, err := s.Sources(ctx)
	require.NoError(t, err)
	assert.Same(t, &first[0], &second[0], "second read should come from cache")
	assert.Equal(t, 1, s.cache.len())

	require.NoError(t, os.WriteFile(path, []byte("Title,Abstract\nOnly,One\n"), 0o600))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	third, err := s.Sources(ctx)
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Equal(t, "Only", third[0].Title)
}

func TestCorpusStore_Invalidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "input.csv", inputCSV)
	s := NewCorpusStore(dir, "input.csv")

	_, err := s.Sources(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, s.cache.len())

	s.Invalidate(filepath.Join(dir, "input.csv"))
	assert.Equal(t, 0, s.cache.len())
}

func TestCorpusStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCorpusStore(t.TempDir(), "input.csv").Sources(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
