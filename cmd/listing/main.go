// Command listing runs one hotel listing against a database and prints it as
// JSON. With -compare it runs every strategy combination and reports whether
// they all produce the same listing.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"hotel_listing/internal/adapters/observability"
	"hotel_listing/internal/app"
	"hotel_listing/internal/bootstrap"
	"hotel_listing/internal/domain"
	"hotel_listing/internal/shared"
	"hotel_listing/internal/storage/sqlstore"
)

func main() {
	_ = godotenv.Load()
	cfg, err := shared.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var (
		query   string
		seed    bool
		compare bool
		timings bool
	)
	flag.StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "database driver (mysql, pgx, sqlite)")
	flag.StringVar(&cfg.DBDSN, "dsn", cfg.DBDSN, "database DSN")
	flag.StringVar(&cfg.AttributeStrategy, "attributes", cfg.AttributeStrategy, "attribute strategy (naive, entity, batch)")
	flag.StringVar(&cfg.RoomStrategy, "rooms", cfg.RoomStrategy, "room strategy (naive, scan)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "hotels assembled concurrently")
	flag.StringVar(&query, "q", "", `filter as a query string, e.g. "price[max]=50&types[]=Suite"`)
	flag.BoolVar(&seed, "seed", false, "create the schema and insert demo hotels first")
	flag.BoolVar(&compare, "compare", false, "run every strategy combination and compare the outputs")
	flag.BoolVar(&timings, "timings", false, "print step timings to stderr")
	flag.Parse()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, query, seed, compare, timings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg shared.Config, query string, seed, compare, timings bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	q, err := url.ParseQuery(query)
	if err != nil {
		return fmt.Errorf("parse -q: %w", err)
	}
	f, err := domain.ParseFilter(q)
	if err != nil {
		return err
	}

	db, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if seed {
		if err := seedDemo(ctx, db); err != nil {
			return err
		}
	}
	store := sqlstore.New(db, sqlstore.WithQueryHook(observability.ObserveQuery))

	if compare {
		return compareStrategies(ctx, store, cfg, f)
	}

	st := observability.NewServerTiming()
	steps := observability.Steps{observability.StepMetrics{}, observability.StepTimings{}}
	strategies := bootstrap.Strategies{Attributes: cfg.AttributeStrategy, Rooms: cfg.RoomStrategy, BatchWait: cfg.BatchWait}
	svc, err := bootstrap.NewListing(store, strategies, steps, app.WithWorkers(cfg.Workers), app.WithTimeout(cfg.ListTimeout))
	if err != nil {
		return err
	}
	hotels, err := svc.List(observability.WithServerTiming(ctx, st), f)
	if err != nil {
		return err
	}
	if timings {
		fmt.Fprintln(os.Stderr, st.Header())
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(hotels)
}

func seedDemo(ctx context.Context, db *sqlx.DB) error {
	if err := sqlstore.ApplySchema(ctx, db); err != nil {
		return err
	}
	if err := sqlstore.Seed(ctx, db, sqlstore.DemoHotels()); err != nil {
		return fmt.Errorf("seed demo hotels: %w", err)
	}
	log.Info().Int("hotels", len(sqlstore.DemoHotels())).Msg("demo hotels seeded")
	return nil
}

// compareStrategies lists f with every strategy, sequentially and with the
// configured workers, and fails when any output differs from the first.
func compareStrategies(ctx context.Context, store *sqlstore.Store, cfg shared.Config, f domain.FilterArgs) error {
	workers := []int{1}
	if cfg.Workers > 1 {
		workers = append(workers, cfg.Workers)
	}
	var (
		reference []byte
		refName   string
		mismatch  bool
	)
	for _, st := range bootstrap.AllStrategies(cfg.BatchWait) {
		for _, w := range workers {
			name := fmt.Sprintf("%s workers=%d", st, w)
			svc, err := bootstrap.NewListing(store, st, nil, app.WithWorkers(w), app.WithTimeout(cfg.ListTimeout))
			if err != nil {
				return err
			}
			start := time.Now()
			hotels, err := svc.List(ctx, f)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out, err := json.Marshal(hotels)
			if err != nil {
				return err
			}
			same := reference == nil || bytes.Equal(out, reference)
			if reference == nil {
				reference, refName = out, name
			}
			mismatch = mismatch || !same
			fmt.Printf("%-28s hotels=%-4d %-10s same=%v\n", name, len(hotels), time.Since(start).Round(time.Microsecond), same)
		}
	}
	if mismatch {
		return fmt.Errorf("outputs differ from %s", refName)
	}
	return nil
}
