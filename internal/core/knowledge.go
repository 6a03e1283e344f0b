package core

import "time"

// IndexRecord is one embedded chunk stored in the vector index.
type IndexRecord struct {
	Vector     []float32 `json:"-"`
	Title      string    `json:"title"`
	SourceURL  string    `json:"source_url"`
	Text       string    `json:"text"`
	Category   string    `json:"category"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Clone returns a deep copy, vector included.
func (r IndexRecord) Clone() IndexRecord {
	out := r
	if r.Vector != nil {
		out.Vector = append([]float32(nil), r.Vector...)
	}
	return out
}

type ScoredRecord struct {
	IndexRecord
	Score float32 `json:"score"`
}

// Source is a document handed to the ingestion pipeline.
type Source struct {
	Text     string `yaml:"text"`
	Title    string `yaml:"title"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}
