// Package dataloader provides per-request DataLoaders that batch the
// per-community lookups of list endpoints into single store calls.
// Loaders call the store directly; visibility is enforced by its queries
// (only public sentences are returned as top sentences).
package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

type topSentencesStore interface {
	TopSentencesByCommunity(ctx context.Context, communityIDs []int64, perCommunity int) (map[int64][]domain.Sentence, error)
}

// Loaders contains the per-request DataLoaders. Created per request via
// NewLoaders.
type Loaders struct {
	TopSentencesByCommunityID *dataloader.Loader[int64, []domain.Sentence]
}

// NewLoaders creates a new set of DataLoaders backed by the given store.
// Must be called per request (loaders cache results within a single request).
func NewLoaders(st topSentencesStore) *Loaders {
	return &Loaders{
		TopSentencesByCommunityID: newLoader(newTopSentencesBatchFn(st)),
	}
}

func newLoader[V any](batchFn dataloader.BatchFunc[int64, V]) *dataloader.Loader[int64, V] {
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[int64, V](wait),
		dataloader.WithBatchCapacity[int64, V](maxBatch),
	)
}

func newTopSentencesBatchFn(st topSentencesStore) dataloader.BatchFunc[int64, []domain.Sentence] {
	return func(ctx context.Context, keys []int64) []*dataloader.Result[[]domain.Sentence] {
		grouped, err := st.TopSentencesByCommunity(ctx, keys, domain.TopSentencesPerGroup)
		if err != nil {
			return errorResults[[]domain.Sentence](len(keys), err)
		}
		return mapResults(keys, grouped, emptySlice[domain.Sentence])
	}
}

// LoadTopSentences fills TopSentences on every community of the page. The
// thunks are created before any is awaited so the loader sees one batch.
func (l *Loaders) LoadTopSentences(ctx context.Context, list []domain.CommunityWithStats) error {
	thunks := make([]dataloader.Thunk[[]domain.Sentence], len(list))
	for i := range list {
		thunks[i] = l.TopSentencesByCommunityID.Load(ctx, list[i].ID)
	}
	for i, thunk := range thunks {
		top, err := thunk()
		if err != nil {
			return err
		}
		list[i].TopSentences = top
	}
	return nil
}

func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// mapResults maps grouped results back to key order, using defaultFn for missing keys.
func mapResults[V any](keys []int64, grouped map[int64]V, defaultFn func() V) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))
	for i, key := range keys {
		if v, ok := grouped[key]; ok {
			results[i] = &dataloader.Result[V]{Data: v}
		} else {
			results[i] = &dataloader.Result[V]{Data: defaultFn()}
		}
	}
	return results
}

func emptySlice[T any]() []T {
	return []T{}
}

type contextKey string

const loadersKey contextKey = "dataloaders"

// WithLoaders stores Loaders in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext retrieves Loaders from the context.
// Panics if loaders are not present (middleware misconfiguration).
func FromContext(ctx context.Context) *Loaders {
	l, ok := ctx.Value(loadersKey).(*Loaders)
	if !ok || l == nil {
		panic("dataloader: loaders not found in context, is the middleware installed?")
	}
	return l
}

// Middleware attaches a fresh set of loaders to every request.
func Middleware(st topSentencesStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(st))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
