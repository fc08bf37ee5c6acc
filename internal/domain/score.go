package domain

import "context"

// ScoreRecord is one reviewer's rating of a paraphrase. Every dimension is an
// ordinal in [1, 5].
type ScoreRecord struct {
	Title     string `json:"title" validate:"required"`
	Semantic  int    `json:"semantic" validate:"min=1,max=5"`
	Syntactic int    `json:"syntactic" validate:"min=1,max=5"`
	Fluency   int    `json:"fluency" validate:"min=1,max=5"`
	Overall   int    `json:"overall" validate:"min=1,max=5"`
}

// LedgerKey identifies the ledger holding one reviewer's scores for one model.
type LedgerKey struct {
	Username string
	Model    string
}

// ScoreRepository is the port for score ledgers. UpsertScore replaces any row
// with the same title in the ledger.
type ScoreRepository interface {
	UpsertScore(ctx context.Context, key LedgerKey, rec ScoreRecord) error
	ListScores(ctx context.Context, key LedgerKey) ([]ScoreRecord, error)
}

// UpsertByTitle returns rows without any entry titled rec.Title, followed by
// rec. The input slice is not modified.
func UpsertByTitle(rows []ScoreRecord, rec ScoreRecord) []ScoreRecord {
	out := make([]ScoreRecord, 0, len(rows)+1)
	for _, r := range rows {
		if r.Title != rec.Title {
			out = append(out, r)
		}
	}
	return append(out, rec)
}
