package sqlstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// SeedHotel describes one hotel with its meta, reviews and rooms.
type SeedHotel struct {
	ID      int64
	Name    string
	Meta    map[string]string
	Ratings []float64
	Rooms   []SeedRoom
}

type SeedRoom struct {
	ID    int64
	Title string
	Meta  map[string]string
}

// reviewIDBase keeps generated review post ids clear of room ids.
const reviewIDBase = 1_000_000

// Seed inserts hotels in one transaction. Review posts get generated ids.
func Seed(ctx context.Context, db *sqlx.DB, hotels []SeedHotel) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	exec := func(q string, args ...any) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(q), args...)
		return err
	}
	nextReview := int64(reviewIDBase)
	for _, h := range hotels {
		if err := exec(`INSERT INTO wp_users (ID, display_name) VALUES (?, ?)`, h.ID, h.Name); err != nil {
			return fmt.Errorf("seed hotel %d: %w", h.ID, err)
		}
		for _, k := range sortedKeys(h.Meta) {
			if err := exec(`INSERT INTO wp_usermeta (user_id, meta_key, meta_value) VALUES (?, ?, ?)`, h.ID, k, h.Meta[k]); err != nil {
				return fmt.Errorf("seed hotel %d meta %q: %w", h.ID, k, err)
			}
		}
		for _, r := range h.Rooms {
			if err := exec(`INSERT INTO wp_posts (ID, post_author, post_title, post_type) VALUES (?, ?, ?, 'room')`, r.ID, h.ID, r.Title); err != nil {
				return fmt.Errorf("seed room %d: %w", r.ID, err)
			}
			for _, k := range sortedKeys(r.Meta) {
				if err := exec(`INSERT INTO wp_postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)`, r.ID, k, r.Meta[k]); err != nil {
					return fmt.Errorf("seed room %d meta %q: %w", r.ID, k, err)
				}
			}
		}
		for _, rating := range h.Ratings {
			nextReview++
			if err := exec(`INSERT INTO wp_posts (ID, post_author, post_title, post_type) VALUES (?, ?, '', 'review')`, nextReview, h.ID); err != nil {
				return fmt.Errorf("seed review of %d: %w", h.ID, err)
			}
			v := strconv.FormatFloat(rating, 'f', -1, 64)
			if err := exec(`INSERT INTO wp_postmeta (post_id, meta_key, meta_value) VALUES (?, 'rating', ?)`, nextReview, v); err != nil {
				return fmt.Errorf("seed review of %d: %w", h.ID, err)
			}
		}
	}
	return tx.Commit()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DemoHotels is a small data set used by the listing CLI and the tests.
func DemoHotels() []SeedHotel {
	return []SeedHotel{
		{
			ID:   1,
			Name: "Hôtel Rivoli",
			Meta: map[string]string{
				"address_1": "1 rue de Rivoli", "address_city": "Paris", "address_zip": "75001",
				"address_country": "France", "geo_lat": "48.8566", "geo_lng": "2.3522",
				"coverImage": "https://img.example/rivoli.jpg", "phone": "0102030405",
			},
			Ratings: []float64{4, 5, 5},
			Rooms: []SeedRoom{
				{ID: 101, Title: "Chambre double", Meta: roomMeta("50", "18", "1", "1", "Chambre")},
				{ID: 102, Title: "Chambre simple", Meta: roomMeta("30", "12", "1", "1", "Chambre")},
				{ID: 103, Title: "Suite Rivoli", Meta: roomMeta("80", "40", "2", "2", "Suite")},
			},
		},
		{
			ID:   2,
			Name: "Auberge du Vieux Lyon",
			Meta: map[string]string{
				"address_1": "5 place du Change", "address_city": "Lyon", "address_zip": "69005",
				"address_country": "France", "geo_lat": "45.7640", "geo_lng": "4.8357",
			},
			Ratings: []float64{3, 4},
			Rooms: []SeedRoom{
				{ID: 201, Title: "Dortoir", Meta: roomMeta("25.90", "30", "6", "1", "Dortoir")},
				{ID: 202, Title: "Chambre privée", Meta: roomMeta("60", "15", "1", "1", "Chambre")},
			},
		},
		{
			ID:   3,
			Name: "Villa Promenade",
			Meta: map[string]string{
				"address_1": "12 promenade des Anglais", "address_city": "Nice", "address_zip": "06000",
				"address_country": "France", "geo_lat": "43.6950", "geo_lng": "7.2650", "phone": "0493000000",
			},
			Rooms: []SeedRoom{
				{ID: 301, Title: "Suite vue mer", Meta: roomMeta("150", "55", "2", "2", "Suite")},
			},
		},
		{
			ID:   4,
			Name: "Refuge sans chambre",
			Meta: map[string]string{"address_city": "Chamonix", "geo_lat": "45.9237", "geo_lng": "6.8694"},
		},
	}
}

func roomMeta(price, surface, bedrooms, bathrooms, typ string) map[string]string {
	return map[string]string{
		"price": price, "surface": surface, "bedrooms_count": bedrooms,
		"bathrooms_count": bathrooms, "type": typ,
	}
}
