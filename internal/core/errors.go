package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyContent         = errors.New("no content to ingest")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrNotFound             = errors.New("not found")
	ErrConversationComplete = errors.New("conversation already complete")
	ErrDimensionMismatch    = errors.New("vector dimension mismatch")
	ErrNoSnapshot           = errors.New("no index snapshot")
)

// EmbeddingBatchError describes one failed embedding batch.
type EmbeddingBatchError struct {
	Batch int
	Start int
	Size  int
	Err   error
}

func (e *EmbeddingBatchError) Error() string {
	return fmt.Sprintf("embedding batch %d (items %d-%d): %v", e.Batch, e.Start, e.Start+e.Size-1, e.Err)
}

func (e *EmbeddingBatchError) Unwrap() error { return e.Err }

// PersistenceError is returned when the index snapshot could not be written or read.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("index persistence (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// GenerationError wraps a failed or unusable hypothesis-generation call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("hypothesis generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
