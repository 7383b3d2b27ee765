package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"hotel_listing/internal/domain"
)

// ListingService lists the hotels that survive a filter.
type ListingService struct {
	source    domain.HotelSource
	asm       *Assembler
	inst      Instrument
	cache     domain.Cache
	cacheTTL  time.Duration
	workers   int
	timeout   time.Duration
	onOutcome func(Outcome)
}

type ListingOption func(*ListingService)

// WithCache serves repeated filters from c for ttl. A zero ttl disables it.
// The cache stores whole seconds, so ttl is rounded up to the next second.
func WithCache(c domain.Cache, ttl time.Duration) ListingOption {
	if ttl > 0 {
		ttl = (ttl + time.Second - 1).Truncate(time.Second)
	}
	return func(s *ListingService) { s.cache, s.cacheTTL = c, ttl }
}

// WithWorkers assembles up to n hotels concurrently. n <= 1 is sequential.
func WithWorkers(n int) ListingOption {
	return func(s *ListingService) { s.workers = n }
}

// WithTimeout bounds every List call.
func WithTimeout(d time.Duration) ListingOption {
	return func(s *ListingService) { s.timeout = d }
}

// WithOutcomeHook is called once per assembled hotel, possibly from several
// goroutines at once.
func WithOutcomeHook(fn func(Outcome)) ListingOption {
	return func(s *ListingService) { s.onOutcome = fn }
}

func NewListingService(src domain.HotelSource, asm *Assembler, opts ...ListingOption) *ListingService {
	s := &ListingService{source: src, asm: asm, inst: asm.inst, workers: 1}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns the hotels matching f in the order their records were read.
// Excluded hotels are dropped; any store failure aborts the whole call.
func (s *ListingService) List(ctx context.Context, f domain.FilterArgs) ([]domain.Hotel, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	key := listCacheKey(f)
	if s.cacheEnabled() {
		var cached []domain.Hotel
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	start := time.Now()
	ctx, end := s.inst.Start(ctx, StepTotal)
	defer end()

	var search string
	if f.Search != nil {
		search = *f.Search
	}
	records, err := timed(ctx, s.inst, StepLoadRecords, func(ctx context.Context) ([]domain.PrimaryRecord, error) {
		return s.source.ListRecords(ctx, search)
	})
	if err != nil {
		return nil, fmt.Errorf("load hotels: %w", err)
	}

	outcomes, err := s.assembleAll(ctx, s.asm.scoped(), records, f)
	if err != nil {
		return nil, err
	}

	hotels := make([]domain.Hotel, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Kind == OutcomeOK {
			hotels = append(hotels, o.Hotel)
			continue
		}
		log.Debug().Int64("hotel_id", o.HotelID).Str("reason", string(o.Reason)).Msg("hotel excluded")
	}
	log.Info().
		Int("records", len(records)).
		Int("kept", len(hotels)).
		Int("excluded", len(records)-len(hotels)).
		Int("workers", s.workers).
		Dur("duration", time.Since(start)).
		Msg("listing computed")

	if s.cacheEnabled() {
		_ = s.cache.Set(ctx, key, hotels, int(s.cacheTTL.Seconds()))
	}
	return hotels, nil
}

func (s *ListingService) cacheEnabled() bool { return s.cache != nil && s.cacheTTL > 0 }

// assembleAll keeps outcomes index-aligned with records. The first failure
// cancels the remaining work and is returned.
func (s *ListingService) assembleAll(ctx context.Context, asm *Assembler, records []domain.PrimaryRecord, f domain.FilterArgs) ([]Outcome, error) {
	outcomes := make([]Outcome, len(records))
	if s.workers <= 1 {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			o := asm.Assemble(ctx, rec, f)
			s.observe(o)
			if o.Kind == OutcomeFailed {
				return nil, fmt.Errorf("hotel %d: %w", rec.ID, o.Err)
			}
			outcomes[i] = o
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(s.workers))
	for i, rec := range records {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			o := asm.Assemble(gctx, rec, f)
			s.observe(o)
			if o.Kind == OutcomeFailed {
				return fmt.Errorf("hotel %d: %w", rec.ID, o.Err)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *ListingService) observe(o Outcome) {
	if s.onOutcome != nil {
		s.onOutcome(o)
	}
}

func listCacheKey(f domain.FilterArgs) string {
	b, _ := json.Marshal(f)
	sum := sha1.Sum(b)
	return "hotels:list:" + hex.EncodeToString(sum[:])
}
