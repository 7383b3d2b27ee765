package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"hotel_listing/internal/domain"
)

// Store reads hotels, reviews and rooms from WordPress-style tables.
type Store struct {
	db      *sqlx.DB
	onQuery func(name string)
}

type Option func(*Store)

// WithQueryHook calls fn with the name of every query before it is sent.
func WithQueryHook(fn func(name string)) Option {
	return func(s *Store) { s.onQuery = fn }
}

func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) observe(name string) {
	if s.onQuery != nil {
		s.onQuery(name)
	}
}

func (s *Store) ListRecords(ctx context.Context, search string) ([]domain.PrimaryRecord, error) {
	var out []domain.PrimaryRecord
	q, args := listRecordsSQL, []any(nil)
	if search = strings.TrimSpace(search); search != "" {
		q, args = searchRecordsSQL, []any{"%" + escapeLike(strings.ToLower(search)) + "%"}
	}
	s.observe("list_records")
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// Meta returns one attribute of an entity, nil when it is not stored.
func (s *Store) Meta(ctx context.Context, entityID int64, key string) (*string, error) {
	var v sql.NullString
	s.observe("get_meta")
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(getMetaSQL), entityID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meta %q of %d: %w", key, entityID, err)
	}
	return nullable(v), nil
}

// Metas returns the requested attributes of one entity in a single query.
func (s *Store) Metas(ctx context.Context, entityID int64, keys []string) (domain.AttributeBag, error) {
	bag := emptyBag(keys)
	if len(keys) == 0 {
		return bag, nil
	}
	q, args, err := sqlx.In(entityMetasSQL, entityID, keys)
	if err != nil {
		return nil, err
	}
	s.observe("entity_metas")
	if err := s.scanMetas(ctx, q, args, bag); err != nil {
		return nil, fmt.Errorf("get metas of %d: %w", entityID, err)
	}
	return bag, nil
}

// BatchMetas returns the requested attributes of several entities in one query.
func (s *Store) BatchMetas(ctx context.Context, entityIDs []int64, keys []string) (map[int64]domain.AttributeBag, error) {
	out := make(map[int64]domain.AttributeBag, len(entityIDs))
	for _, id := range entityIDs {
		out[id] = emptyBag(keys)
	}
	if len(entityIDs) == 0 || len(keys) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(batchMetasSQL, entityIDs, keys)
	if err != nil {
		return nil, err
	}
	s.observe("batch_metas")
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("batch metas: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id  int64
			key string
			v   sql.NullString
		)
		if err := rows.Scan(&id, &key, &v); err != nil {
			return nil, fmt.Errorf("batch metas: %w", err)
		}
		if bag, ok := out[id]; ok {
			bag[key] = nullable(v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("batch metas: %w", err)
	}
	return out, nil
}

func (s *Store) ReviewStats(ctx context.Context, hotelID int64) (domain.ReviewStats, error) {
	var (
		count int64
		total float64
	)
	s.observe("review_stats")
	if err := s.db.QueryRowxContext(ctx, s.db.Rebind(reviewStatsSQL), hotelID).Scan(&count, &total); err != nil {
		return domain.ReviewStats{}, fmt.Errorf("review stats of %d: %w", hotelID, err)
	}
	return domain.NewReviewStats(int(count), total), nil
}

func (s *Store) RoomIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	s.observe("room_ids")
	if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(roomIDsSQL), ownerID); err != nil {
		return nil, fmt.Errorf("room ids of %d: %w", ownerID, err)
	}
	return ids, nil
}

// LoadRoom returns the full detail of one room, or domain.ErrNotFound.
func (s *Store) LoadRoom(ctx context.Context, roomID int64) (domain.Room, error) {
	var post struct {
		ID    int64  `db:"id"`
		Title string `db:"post_title"`
	}
	s.observe("room_post")
	err := s.db.GetContext(ctx, &post, s.db.Rebind(roomPostSQL), roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, fmt.Errorf("room %d: %w", roomID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("load room %d: %w", roomID, err)
	}

	bag := emptyBag(domain.RoomAttributeKeys)
	q, args, err := sqlx.In(roomMetasSQL, roomID, domain.RoomAttributeKeys)
	if err != nil {
		return domain.Room{}, err
	}
	s.observe("room_metas")
	if err := s.scanMetas(ctx, q, args, bag); err != nil {
		return domain.Room{}, fmt.Errorf("load room %d metas: %w", roomID, err)
	}
	return domain.NewRoom(post.ID, post.Title, bag), nil
}

// scanMetas runs a (meta_key, meta_value) query into bag.
func (s *Store) scanMetas(ctx context.Context, q string, args []any, bag domain.AttributeBag) error {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(q), args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			v   sql.NullString
		)
		if err := rows.Scan(&key, &v); err != nil {
			return err
		}
		bag[key] = nullable(v)
	}
	return rows.Err()
}

func emptyBag(keys []string) domain.AttributeBag {
	bag := make(domain.AttributeBag, len(keys))
	for _, k := range keys {
		bag[k] = nil
	}
	return bag
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
