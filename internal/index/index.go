package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/log"
)

// Snapshotter persists the full record collection as one unit.
// Load returns core.ErrNoSnapshot when nothing was saved yet.
type Snapshotter interface {
	Save(ctx context.Context, records []core.IndexRecord) error
	Load(ctx context.Context) ([]core.IndexRecord, error)
}

// state is published atomically; it is never mutated after Store.
type state struct {
	records []core.IndexRecord
	dim     int
	search  SimilaritySearch
}

// Index is an append-only, in-memory vector store.
// Readers never block; appends are serialised and publish a new state
// only after the search structure is rebuilt from the full collection.
type Index struct {
	writeMu     sync.Mutex
	current     atomic.Pointer[state]
	accelerated bool
	build       Builder
	snapshot    Snapshotter
}

type Option func(*Index)

// WithAccelerated selects the BLAS flat backend instead of plain cosine.
func WithAccelerated(on bool) Option {
	return func(i *Index) {
		i.accelerated = on
	}
}

func WithSnapshotter(s Snapshotter) Option {
	return func(i *Index) {
		i.snapshot = s
	}
}

func New(opts ...Option) *Index {
	idx := &Index{}
	for _, o := range opts {
		o(idx)
	}

	idx.build = NewCosine
	if idx.accelerated {
		idx.build = NewFlatIP
	}

	idx.current.Store(&state{})
	return idx
}

func (i *Index) Len() int {
	return len(i.current.Load().records)
}

// Dimension is zero until the first non-empty append.
func (i *Index) Dimension() int {
	return i.current.Load().dim
}

func (i *Index) Accelerated() bool {
	return i.accelerated
}

// Records returns deep copies of all records in insertion order.
func (i *Index) Records() []core.IndexRecord {
	st := i.current.Load()
	out := make([]core.IndexRecord, len(st.records))
	for n, r := range st.records {
		out[n] = r.Clone()
	}
	return out
}

// Append adds records to the end of the index. Every vector must match the
// index dimension; the first append fixes it. Nothing is added on error.
func (i *Index) Append(records []core.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	cur := i.current.Load()
	next, err := i.extend(cur, records)
	if err != nil {
		return err
	}

	i.current.Store(next)
	return nil
}

func (i *Index) extend(cur *state, records []core.IndexRecord) (*state, error) {
	dim := cur.dim
	if dim == 0 {
		dim = len(records[0].Vector)
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector", core.ErrDimensionMismatch)
	}

	for n, r := range records {
		if len(r.Vector) != dim {
			return nil, fmt.Errorf("%w: record %d has %d values, index has %d",
				core.ErrDimensionMismatch, n, len(r.Vector), dim)
		}
	}

	all := make([]core.IndexRecord, 0, len(cur.records)+len(records))
	all = append(all, cur.records...)
	for _, r := range records {
		all = append(all, r.Clone())
	}

	vectors := make([][]float32, len(all))
	for n := range all {
		vectors[n] = all[n].Vector
	}

	return &state{
		records: all,
		dim:     dim,
		search:  i.build(vectors, dim),
	}, nil
}

// Search returns up to topK records scoring at least threshold, best first.
// Returned records are copies.
func (i *Index) Search(query []float32, topK int, threshold float32) ([]core.ScoredRecord, error) {
	st := i.current.Load()
	if len(st.records) == 0 || topK <= 0 {
		return nil, nil
	}
	if len(query) != st.dim {
		return nil, fmt.Errorf("%w: query has %d values, index has %d", core.ErrDimensionMismatch, len(query), st.dim)
	}

	hits, err := st.search.Search(query, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]core.ScoredRecord, 0, len(hits))
	for _, h := range hits {
		if h.Score < threshold {
			continue
		}
		out = append(out, core.ScoredRecord{
			IndexRecord: st.records[h.ID].Clone(),
			Score:       h.Score,
		})
	}
	return out, nil
}

// Save writes the current collection through the snapshotter.
func (i *Index) Save(ctx context.Context) error {
	if i.snapshot == nil {
		return &core.PersistenceError{Op: "save", Err: errors.New("no snapshotter configured")}
	}

	st := i.current.Load()
	if err := i.snapshot.Save(ctx, st.records); err != nil {
		return &core.PersistenceError{Op: "save", Err: err}
	}

	log.FromCtx(ctx).Debug().Int("records", len(st.records)).Msg("index snapshot saved")
	return nil
}

// Load replaces the index contents with the persisted snapshot and rebuilds
// the search structure from it. A missing snapshot yields (false, nil); a
// corrupt one leaves the index empty and returns the error.
func (i *Index) Load(ctx context.Context) (bool, error) {
	if i.snapshot == nil {
		return false, nil
	}
	logger := log.FromCtx(ctx)

	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	records, err := i.snapshot.Load(ctx)
	if errors.Is(err, core.ErrNoSnapshot) {
		logger.Info().Msg("no existing index snapshot")
		return false, nil
	}
	if err != nil {
		i.current.Store(&state{})
		logger.Error().Err(err).Msg("index snapshot unreadable, starting empty")
		return false, &core.PersistenceError{Op: "load", Err: err}
	}

	next := &state{}
	if len(records) > 0 {
		next, err = i.extend(&state{}, records)
		if err != nil {
			i.current.Store(&state{})
			logger.Error().Err(err).Msg("index snapshot corrupt, starting empty")
			return false, &core.PersistenceError{Op: "load", Err: err}
		}
	}

	i.current.Store(next)
	logger.Info().
		Int("records", len(next.records)).
		Int("dim", next.dim).
		Bool("accelerated", i.accelerated).
		Msg("index snapshot loaded")
	return true, nil
}
