package app

import (
	"context"

	"hotel_listing/internal/domain"
)

// DetailRoomFinder lists the room ids of a hotel, loads every room through
// the detail loader and filters them in memory. It costs one round trip per
// room and is kept as the reference for ScanRoomFinder.
type DetailRoomFinder struct {
	index  domain.RoomIndex
	loader domain.RoomDetailLoader
}

func NewDetailRoomFinder(idx domain.RoomIndex, l domain.RoomDetailLoader) DetailRoomFinder {
	return DetailRoomFinder{index: idx, loader: l}
}

func (f DetailRoomFinder) FindCheapestRoom(ctx context.Context, ownerID int64, filter domain.FilterArgs) (domain.Room, bool, error) {
	ids, err := f.index.RoomIDs(ctx, ownerID)
	if err != nil {
		return domain.Room{}, false, err
	}
	rooms := make([]domain.Room, 0, len(ids))
	for _, id := range ids {
		r, err := f.loader.LoadRoom(ctx, id)
		if err != nil {
			return domain.Room{}, false, err
		}
		rooms = append(rooms, r)
	}
	room, found := domain.CheapestRoom(rooms, filter)
	return room, found, nil
}
