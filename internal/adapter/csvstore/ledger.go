package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"paraeval/internal/domain"
)

// Ledger column headers, in file order.
const (
	colTitle     = "Title"
	colSemantic  = "Semantic/Adequacy Score"
	colSyntactic = "Syntactic/Novelty Score"
	colFluency   = "Fluency Score"
	colOverall   = "Overall Score"
)

var ledgerHeader = []string{colTitle, colSemantic, colSyntactic, colFluency, colOverall}

// LedgerStore keeps one CSV ledger per (username, model) pair in dir.
// Writers of the same ledger are serialized by a mutex inside the process and
// by flock(2) across processes; every write replaces the file atomically.
type LedgerStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ domain.ScoreRepository = (*LedgerStore)(nil)

// NewLedgerStore creates a store writing under dir. The directory is created
// on first write.
func NewLedgerStore(dir string) *LedgerStore {
	return &LedgerStore{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// Path returns the ledger file for key.
func (s *LedgerStore) Path(key domain.LedgerKey) string {
	name := fmt.Sprintf("%s_%s_scores.csv", safeName(key.Username), safeName(key.Model))
	return filepath.Join(s.dir, name)
}

// nameEscaper percent-encodes path separators so no name can leave dir and
// distinct names stay distinct.
var nameEscaper = strings.NewReplacer("%", "%25", "/", "%2F", `\`, "%5C")

func safeName(s string) string {
	s = nameEscaper.Replace(s)
	if s == "." || s == ".." {
		return strings.Repeat("%2E", len(s))
	}
	return s
}

// CheckKeys reports every group of keys that would share one ledger file,
// e.g. ("a_b", "c") and ("a", "b_c").
func (s *LedgerStore) CheckKeys(keys []domain.LedgerKey) error {
	owner := make(map[string]domain.LedgerKey, len(keys))
	var errs []error
	for _, k := range keys {
		p := s.Path(k)
		prev, seen := owner[p]
		switch {
		case !seen:
			owner[p] = k
		case prev != k:
			errs = append(errs, fmt.Errorf("%s: user %q model %q and user %q model %q: %w",
				filepath.Base(p), prev.Username, prev.Model, k.Username, k.Model, domain.ErrLedgerCollision))
		}
	}
	return errors.Join(errs...)
}

func (s *LedgerStore) lockFor(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

// UpsertScore replaces the row titled rec.Title, or appends it.
func (s *LedgerStore) UpsertScore(ctx context.Context, key domain.LedgerKey, rec domain.ScoreRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(key)

	l := s.lockFor(path)
	l.Lock()
	defer l.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	unlock, err := lockFile(filepath.Join(s.dir, "."+filepath.Base(path)+".lock"))
	if err != nil {
		return err
	}
	defer unlock()

	rows, err := readLedger(path)
	if err != nil {
		return err
	}
	rows = domain.UpsertByTitle(rows, rec)

	if err := writeFileAtomic(path, 0o644, func(w io.Writer) error {
		return encodeLedger(w, rows)
	}); err != nil {
		return fmt.Errorf("write ledger %s: %w", path, err)
	}
	return nil
}

// ListScores returns the ledger rows in file order; a missing ledger is empty.
func (s *LedgerStore) ListScores(ctx context.Context, key domain.LedgerKey) ([]domain.ScoreRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readLedger(s.Path(key))
}

func readLedger(path string) ([]domain.ScoreRecord, error) {
	t, err := readTable(path, ledgerHeader...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	out := make([]domain.ScoreRecord, 0, len(t.rows))
	for i := range t.rows {
		rec := domain.ScoreRecord{Title: t.get(i, colTitle)}
		fields := []struct {
			col string
			dst *int
		}{
			{colSemantic, &rec.Semantic},
			{colSyntactic, &rec.Syntactic},
			{colFluency, &rec.Fluency},
			{colOverall, &rec.Overall},
		}
		for _, f := range fields {
			n, err := strconv.Atoi(strings.TrimSpace(t.get(i, f.col)))
			if err != nil {
				return nil, fmt.Errorf("read ledger %s: row %d: %s: %w", path, i+2, f.col, err)
			}
			*f.dst = n
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeLedger(w io.Writer, rows []domain.ScoreRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Title,
			strconv.Itoa(r.Semantic),
			strconv.Itoa(r.Syntactic),
			strconv.Itoa(r.Fluency),
			strconv.Itoa(r.Overall),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
