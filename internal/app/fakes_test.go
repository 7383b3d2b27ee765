package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"hotel_listing/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	records []domain.PrimaryRecord
	err     error
	calls   int32
}

func (f *fakeSource) ListRecords(ctx context.Context, search string) ([]domain.PrimaryRecord, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.records, f.err
}

type fakeAttrs struct {
	bags  map[int64]domain.AttributeBag
	err   error
	delay func(id int64) time.Duration
}

func (f *fakeAttrs) Attributes(ctx context.Context, id int64, keys []string) (domain.AttributeBag, error) {
	if f.delay != nil {
		select {
		case <-time.After(f.delay(id)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := domain.AttributeBag{}
	for _, k := range keys {
		out[k] = f.bags[id][k]
	}
	return out, nil
}

// scopedAttrs counts how many listing scopes were opened.
type scopedAttrs struct {
	*fakeAttrs
	scopes int32
}

func (s *scopedAttrs) Scope() domain.AttributeStore {
	atomic.AddInt32(&s.scopes, 1)
	return s.fakeAttrs
}

type fakeReviews struct {
	stats map[int64]domain.ReviewStats
	err   error
	// sleep blocks every call without watching ctx, like a store with no deadline support
	sleep time.Duration
}

func (f *fakeReviews) ReviewStats(ctx context.Context, id int64) (domain.ReviewStats, error) {
	time.Sleep(f.sleep)
	if f.err != nil {
		return domain.ReviewStats{}, f.err
	}
	return f.stats[id], nil
}

type fakeRooms struct {
	rooms  map[int64][]domain.Room
	err    error
	failOn int64
}

func (f *fakeRooms) FindCheapestRoom(ctx context.Context, owner int64, filter domain.FilterArgs) (domain.Room, bool, error) {
	if f.err != nil && (f.failOn == 0 || f.failOn == owner) {
		return domain.Room{}, false, f.err
	}
	r, found := domain.CheapestRoom(f.rooms[owner], filter)
	return r, found, nil
}

type fakeRoomIndex struct {
	ids map[int64][]int64
	err error
}

func (f *fakeRoomIndex) RoomIDs(ctx context.Context, owner int64) ([]int64, error) {
	return f.ids[owner], f.err
}

type fakeRoomLoader struct {
	rooms map[int64]domain.Room
	loads int
}

func (f *fakeRoomLoader) LoadRoom(ctx context.Context, id int64) (domain.Room, error) {
	f.loads++
	r, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

// recordingInstrument keeps the names of finished steps.
type recordingInstrument struct {
	mu    sync.Mutex
	steps []string
}

func (r *recordingInstrument) Start(ctx context.Context, step string) (context.Context, func()) {
	return ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.steps = append(r.steps, step)
	}
}

type fakeCache struct {
	store map[string][]byte
	ttls  map[string]int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	if c.ttls == nil {
		c.ttls = map[string]int{}
	}
	c.ttls[key] = ttlSec
	b, err := json.Marshal(v)
	c.store[key] = b
	return err
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

var errStoreDown = errors.New("store down")

func ptr[T any](v T) *T { return &v }
