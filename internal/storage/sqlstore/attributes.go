package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/graph-gophers/dataloader"

	"hotel_listing/internal/domain"
)

// Attribute strategy names accepted by NewAttributeStore.
const (
	StrategyNaive  = "naive"
	StrategyEntity = "entity"
	StrategyBatch  = "batch"
)

// NewAttributeStore returns the attribute store for a strategy name.
func NewAttributeStore(s *Store, strategy string, batchWait time.Duration) (domain.AttributeStore, error) {
	switch strategy {
	case StrategyNaive:
		return NaiveAttributes{s: s}, nil
	case StrategyEntity, "":
		return EntityAttributes{s: s}, nil
	case StrategyBatch:
		return NewBatchAttributes(s, batchWait), nil
	}
	return nil, fmt.Errorf("unknown attribute strategy %q", strategy)
}

// NaiveAttributes issues one query per requested key.
type NaiveAttributes struct{ s *Store }

func (a NaiveAttributes) Attributes(ctx context.Context, entityID int64, keys []string) (domain.AttributeBag, error) {
	bag := emptyBag(keys)
	for _, k := range keys {
		v, err := a.s.Meta(ctx, entityID, k)
		if err != nil {
			return nil, err
		}
		bag[k] = v
	}
	return bag, nil
}

// EntityAttributes issues one query per entity.
type EntityAttributes struct{ s *Store }

func (a EntityAttributes) Attributes(ctx context.Context, entityID int64, keys []string) (domain.AttributeBag, error) {
	return a.s.Metas(ctx, entityID, keys)
}

// BatchAttributes coalesces (entity, key) lookups made within the wait window
// into one query. Scope returns a copy whose loader also caches values for the
// lifetime of one listing call; the unscoped store never caches.
type BatchAttributes struct {
	s      *Store
	wait   time.Duration
	loader *dataloader.Loader
}

func NewBatchAttributes(s *Store, wait time.Duration) *BatchAttributes {
	b := &BatchAttributes{s: s, wait: wait}
	b.loader = b.newLoader(&dataloader.NoCache{})
	return b
}

func (b *BatchAttributes) Scope() domain.AttributeStore {
	return &BatchAttributes{s: b.s, wait: b.wait, loader: b.newLoader(dataloader.NewCache())}
}

func (b *BatchAttributes) Attributes(ctx context.Context, entityID int64, keys []string) (domain.AttributeBag, error) {
	thunks := make([]dataloader.Thunk, len(keys))
	for i, k := range keys {
		thunks[i] = b.loader.Load(ctx, metaKey{entityID: entityID, key: k})
	}
	bag := emptyBag(keys)
	for i, thunk := range thunks {
		v, err := thunk()
		if err != nil {
			return nil, err
		}
		s, _ := v.(*string)
		bag[keys[i]] = s
	}
	return bag, nil
}

func (b *BatchAttributes) newLoader(cache dataloader.Cache) *dataloader.Loader {
	return dataloader.NewBatchedLoader(b.batch,
		dataloader.WithWait(b.wait),
		dataloader.WithBatchCapacity(500),
		dataloader.WithCache(cache),
	)
}

func (b *BatchAttributes) batch(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
	var (
		ids      []int64
		metaKeys []string
		seenID   = map[int64]bool{}
		seenKey  = map[string]bool{}
	)
	for _, k := range keys {
		mk := k.(metaKey)
		if !seenID[mk.entityID] {
			seenID[mk.entityID] = true
			ids = append(ids, mk.entityID)
		}
		if !seenKey[mk.key] {
			seenKey[mk.key] = true
			metaKeys = append(metaKeys, mk.key)
		}
	}

	results := make([]*dataloader.Result, len(keys))
	bags, err := b.s.BatchMetas(ctx, ids, metaKeys)
	if err != nil {
		for i := range results {
			results[i] = &dataloader.Result{Error: err}
		}
		return results
	}
	for i, k := range keys {
		mk := k.(metaKey)
		results[i] = &dataloader.Result{Data: bags[mk.entityID][mk.key]}
	}
	return results
}

type metaKey struct {
	entityID int64
	key      string
}

func (k metaKey) String() string    { return strconv.FormatInt(k.entityID, 10) + "/" + k.key }
func (k metaKey) Raw() interface{} { return k }
