package rag

import (
	"strings"
)

type Chunk struct {
	Text  string
	Index int
	// Offset is the rune position of the window start in the trimmed input.
	Offset int
}

type ChunkerConfig struct {
	Size    int
	Overlap int
}

func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		Size:    800,
		Overlap: 100,
	}
}

func (c ChunkerConfig) normalize() ChunkerConfig {
	if c.Size <= 0 {
		return DefaultChunkerConfig()
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		c.Overlap = c.Size / 4
	}
	return c
}

// ChunkText splits text into fixed-size character windows.
// Windows start at multiples of Size-Overlap; whitespace-only windows are dropped.
// The first window that reaches the end of the text is the last one, so no
// chunk is ever a suffix of its predecessor.
func ChunkText(text string, cfg ChunkerConfig) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	cfg = cfg.normalize()

	runes := []rune(text)
	step := cfg.Size - cfg.Overlap

	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}

		if window := strings.TrimSpace(string(runes[start:end])); window != "" {
			chunks = append(chunks, Chunk{
				Text:   window,
				Index:  len(chunks),
				Offset: start,
			})
		}

		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ChunkTexts returns only the chunk strings.
func ChunkTexts(text string, cfg ChunkerConfig) []string {
	chunks := ChunkText(text, cfg)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
