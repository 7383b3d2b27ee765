package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"hotel_listing/internal/domain"
)

// ScanRoomFinder reads every room of a hotel with its meta in one query,
// pivots the rows into rooms and picks the cheapest match.
type ScanRoomFinder struct{ s *Store }

func NewScanRoomFinder(s *Store) ScanRoomFinder { return ScanRoomFinder{s: s} }

func (f ScanRoomFinder) FindCheapestRoom(ctx context.Context, ownerID int64, filter domain.FilterArgs) (domain.Room, bool, error) {
	q, args, err := sqlx.In(roomScanSQL, domain.RoomAttributeKeys, ownerID)
	if err != nil {
		return domain.Room{}, false, err
	}
	f.s.observe("room_scan")
	rows, err := f.s.db.QueryxContext(ctx, f.s.db.Rebind(q), args...)
	if err != nil {
		return domain.Room{}, false, fmt.Errorf("scan rooms of %d: %w", ownerID, err)
	}
	defer rows.Close()

	var (
		rooms   []domain.Room
		curID   int64
		curName string
		curBag  domain.AttributeBag
	)
	flush := func() {
		if curBag != nil {
			rooms = append(rooms, domain.NewRoom(curID, curName, curBag))
		}
	}
	for rows.Next() {
		var (
			id         int64
			title      string
			key, value sql.NullString
		)
		if err := rows.Scan(&id, &title, &key, &value); err != nil {
			return domain.Room{}, false, fmt.Errorf("scan rooms of %d: %w", ownerID, err)
		}
		if curBag == nil || id != curID {
			flush()
			curID, curName, curBag = id, title, emptyBag(domain.RoomAttributeKeys)
		}
		if key.Valid {
			curBag[key.String] = nullable(value)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Room{}, false, fmt.Errorf("scan rooms of %d: %w", ownerID, err)
	}
	flush()
	room, found := domain.CheapestRoom(rooms, filter)
	return room, found, nil
}
