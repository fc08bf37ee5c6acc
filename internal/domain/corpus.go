package domain

import "context"

// SourceRecord is one original document from the input corpus.
type SourceRecord struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// CandidateRecord is one model paraphrase. Record i of a candidate table
// belongs to record i of the source table; titles are not joined.
type CandidateRecord struct {
	Title      string `json:"title"`
	Paraphrase string `json:"paraphrase"`
}

// Model names a candidate model and the table holding its paraphrases.
type Model struct {
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
}

// Models is the ordered catalog of candidate models.
type Models []Model

// Lookup returns the model with the given display name.
func (m Models) Lookup(name string) (Model, bool) {
	for _, mm := range m {
		if mm.Name == name {
			return mm, true
		}
	}
	return Model{}, false
}

// Default returns the first model, which new sessions start on.
func (m Models) Default() string {
	if len(m) == 0 {
		return ""
	}
	return m[0].Name
}

// Names returns the display names in catalog order.
func (m Models) Names() []string {
	out := make([]string, 0, len(m))
	for _, mm := range m {
		out = append(out, mm.Name)
	}
	return out
}

// CorpusRepository is the read-only port for the source and candidate tables.
type CorpusRepository interface {
	Sources(ctx context.Context) ([]SourceRecord, error)
	Candidates(ctx context.Context, model Model) ([]CandidateRecord, error)
}
