//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	server "hotel_listing/internal/adapters/http_server"
	"hotel_listing/internal/adapters/observability"
	redisad "hotel_listing/internal/adapters/redis"
	"hotel_listing/internal/app"
	"hotel_listing/internal/bootstrap"
	"hotel_listing/internal/domain"
	"hotel_listing/internal/storage/sqlstore"
)

// ---------- helpers ----------

func newDemoStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "demo.db") + "?_pragma=busy_timeout(5000)"
	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlstore.ApplySchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if err := sqlstore.Seed(ctx, db, sqlstore.DemoHotels()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return sqlstore.New(db, sqlstore.WithQueryHook(observability.ObserveQuery))
}

func newAPI(t *testing.T, store *sqlstore.Store, st bootstrap.Strategies, workers int) *httptest.Server {
	t.Helper()
	steps := observability.Steps{observability.StepMetrics{}, observability.StepTimings{}}
	svc, err := bootstrap.NewListing(store, st, steps, app.WithWorkers(workers), app.WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	srv := server.New(server.Options{})
	srv.MountHandlers(&server.Handlers{L: svc})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func fetch(t *testing.T, url string) (int, http.Header, []byte) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res.StatusCode, res.Header, body
}

type summary struct {
	ID       int64
	RoomID   int64
	Rating   int
	Count    int
	Distance *float64
}

func summarize(t *testing.T, body []byte) []summary {
	t.Helper()
	var hotels []domain.Hotel
	if err := json.Unmarshal(body, &hotels); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	out := make([]summary, len(hotels))
	for i, h := range hotels {
		out[i] = summary{ID: h.ID, RoomID: h.CheapestRoom.ID, Rating: h.Rating, Count: h.RatingCount, Distance: h.Distance}
	}
	return out
}

func ids(s []summary) []int64 {
	out := make([]int64, len(s))
	for i, h := range s {
		out[i] = h.ID
	}
	return out
}

// ---------- the tests ----------

func TestHTTP_EndToEnd_Listing(t *testing.T) {
	store := newDemoStore(t)
	ts := newAPI(t, store, bootstrap.Strategies{Attributes: sqlstore.StrategyEntity, Rooms: bootstrap.RoomsScan}, 1)

	status, hdr, body := fetch(t, ts.URL+"/v1/hotels")
	if status != http.StatusOK {
		t.Fatalf("status %d: %s", status, body)
	}
	for _, step := range []string{"total", "loadRecords", "loadAttributes", "loadReviews", "findCheapestRoom"} {
		if !strings.Contains(hdr.Get("Server-Timing"), step+";dur=") {
			t.Fatalf("Server-Timing %q lacks %s", hdr.Get("Server-Timing"), step)
		}
	}
	got := summarize(t, body)
	want := []summary{
		{ID: 1, RoomID: 102, Rating: 5, Count: 3},
		{ID: 2, RoomID: 201, Rating: 4, Count: 2},
		{ID: 3, RoomID: 301},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hotel %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	var full []domain.Hotel
	_ = json.Unmarshal(body, &full)
	if *full[0].Address.City != "Paris" || full[0].GeoLat != 48.8566 || full[1].Phone != nil || full[0].CheapestRoom.Price != 30 {
		t.Fatalf("unexpected hotel %+v", full[0])
	}
}

func TestHTTP_EndToEnd_Filters(t *testing.T) {
	store := newDemoStore(t)
	ts := newAPI(t, store, bootstrap.Strategies{Attributes: sqlstore.StrategyBatch, Rooms: bootstrap.RoomsScan, BatchWait: time.Millisecond}, 4)

	tests := []struct {
		query string
		want  []int64
		rooms []int64
	}{
		{"price%5Bmax%5D=50", []int64{1, 2}, []int64{102, 201}},
		{"types%5B%5D=Suite", []int64{1, 3}, []int64{103, 301}},
		{"rooms=2&bathRooms=2", []int64{1, 3}, []int64{103, 301}},
		{"surface%5Bmin%5D=20&surface%5Bmax%5D=35", []int64{2}, []int64{201}},
		{"search=vieux", []int64{2}, []int64{201}},
		{"price%5Bmin%5D=1000", []int64{}, []int64{}},
		{"lat=48.8566&lng=2.3522&distance=100", []int64{1}, []int64{102}},
		{"lat=48.8566&lng=2.3522&distance=500", []int64{1, 2}, []int64{102, 201}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			status, _, body := fetch(t, ts.URL+"/v1/hotels?"+tt.query)
			if status != http.StatusOK {
				t.Fatalf("status %d: %s", status, body)
			}
			got := summarize(t, body)
			if !slices.Equal(ids(got), tt.want) {
				t.Fatalf("ids = %v, want %v", ids(got), tt.want)
			}
			for i, h := range got {
				if h.RoomID != tt.rooms[i] {
					t.Fatalf("hotel %d: room %d, want %d", h.ID, h.RoomID, tt.rooms[i])
				}
				if strings.Contains(tt.query, "distance") && h.Distance == nil {
					t.Fatalf("hotel %d: distance missing", h.ID)
				}
			}
		})
	}

	if status, _, _ := fetch(t, ts.URL+"/v1/hotels?price%5Bmin%5D=90&price%5Bmax%5D=10"); status != http.StatusBadRequest {
		t.Fatalf("inverted range: status %d", status)
	}
}

func TestHTTP_EndToEnd_StrategiesAgree(t *testing.T) {
	store := newDemoStore(t)
	queries := []string{"", "price%5Bmax%5D=50", "types%5B%5D=Suite&lat=45.76&lng=4.83&distance=1000"}

	reference := map[string][]byte{}
	for _, st := range bootstrap.AllStrategies(time.Millisecond) {
		for _, workers := range []int{1, 3} {
			ts := newAPI(t, store, st, workers)
			for _, q := range queries {
				status, _, body := fetch(t, ts.URL+"/v1/hotels?"+q)
				if status != http.StatusOK {
					t.Fatalf("%s workers=%d %q: status %d", st, workers, q, status)
				}
				ref, ok := reference[q]
				if !ok {
					reference[q] = body
					continue
				}
				if string(ref) != string(body) {
					t.Fatalf("%s workers=%d %q differs:\n%s\nvs\n%s", st, workers, q, body, ref)
				}
			}
		}
	}
}

func TestHTTP_EndToEnd_RoundTrips(t *testing.T) {
	store := newDemoStore(t)
	count := func(label string) float64 {
		return testutil.ToFloat64(observability.StoreQueries.WithLabelValues(label))
	}

	run := func(st bootstrap.Strategies) {
		svc, err := bootstrap.NewListing(store, st, nil)
		if err != nil {
			t.Fatalf("listing: %v", err)
		}
		if _, err := svc.List(context.Background(), domain.FilterArgs{}); err != nil {
			t.Fatalf("%s: %v", st, err)
		}
	}

	hotels := float64(len(sqlstore.DemoHotels()))
	keys := float64(len(domain.HotelAttributeKeys))

	before := count("get_meta")
	run(bootstrap.Strategies{Attributes: sqlstore.StrategyNaive, Rooms: bootstrap.RoomsScan})
	if got := count("get_meta") - before; got != hotels*keys {
		t.Fatalf("naive: %v attribute queries, want %v", got, hotels*keys)
	}

	before = count("entity_metas")
	run(bootstrap.Strategies{Attributes: sqlstore.StrategyEntity, Rooms: bootstrap.RoomsScan})
	if got := count("entity_metas") - before; got != hotels {
		t.Fatalf("entity: %v attribute queries, want %v", got, hotels)
	}

	before = count("room_scan")
	beforeDetail := count("room_post")
	run(bootstrap.Strategies{Attributes: sqlstore.StrategyEntity, Rooms: bootstrap.RoomsScan})
	if got := count("room_scan") - before; got != hotels {
		t.Fatalf("scan: %v room queries, want %v", got, hotels)
	}
	if count("room_post") != beforeDetail {
		t.Fatalf("scan strategy loaded room details")
	}

	rooms := 0
	for _, h := range sqlstore.DemoHotels() {
		rooms += len(h.Rooms)
	}
	before = count("room_post")
	run(bootstrap.Strategies{Attributes: sqlstore.StrategyEntity, Rooms: bootstrap.RoomsNaive})
	if got := count("room_post") - before; got != float64(rooms) {
		t.Fatalf("naive rooms: %v detail loads, want %d", got, rooms)
	}
}

func TestListing_RedisCache(t *testing.T) {
	store := newDemoStore(t)
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	svc, err := bootstrap.NewListing(store, bootstrap.Strategies{}, nil, app.WithCache(cache, time.Minute))
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	f := domain.FilterArgs{Types: []string{"Suite"}}
	first, err := svc.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected one cached listing, got %v", mr.Keys())
	}

	before := testutil.ToFloat64(observability.StoreQueries.WithLabelValues("list_records"))
	second, err := svc.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if after := testutil.ToFloat64(observability.StoreQueries.WithLabelValues("list_records")); after != before {
		t.Fatalf("cached listing still read the store")
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("cached listing differs:\n%s\nvs\n%s", a, b)
	}
}
