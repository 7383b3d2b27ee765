package domain

import (
	"math"
	"strconv"
)

// PrimaryRecord is one row of the hotel table, read before assembly.
type PrimaryRecord struct {
	ID          int64  `db:"id"`
	DisplayName string `db:"display_name"`
}

// Attribute keys read for every hotel.
const (
	AttrAddress1       = "address_1"
	AttrAddress2       = "address_2"
	AttrAddressCity    = "address_city"
	AttrAddressZip     = "address_zip"
	AttrAddressCountry = "address_country"
	AttrGeoLat         = "geo_lat"
	AttrGeoLng         = "geo_lng"
	AttrCoverImage     = "coverImage"
	AttrPhone          = "phone"
)

// HotelAttributeKeys lists the keys the assembler asks the attribute store for.
var HotelAttributeKeys = []string{
	AttrAddress1, AttrAddress2, AttrAddressCity, AttrAddressZip, AttrAddressCountry,
	AttrGeoLat, AttrGeoLng, AttrCoverImage, AttrPhone,
}

// AttributeBag maps an attribute key to its raw value. A nil value means the
// key is not stored for the entity.
type AttributeBag map[string]*string

func (b AttributeBag) Get(key string) *string {
	if b == nil {
		return nil
	}
	return b[key]
}

// Float parses the value as a float; absent, unparsable or non-finite
// values yield 0.
func (b AttributeBag) Float(key string) float64 {
	v := b.Get(key)
	if v == nil {
		return 0
	}
	f, err := strconv.ParseFloat(*v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

type Address struct {
	Line1   *string `json:"line1"`
	Line2   *string `json:"line2"`
	City    *string `json:"city"`
	Zip     *string `json:"zip"`
	Country *string `json:"country"`
}

// Hotel is the fully assembled listing entry.
type Hotel struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Address      Address  `json:"address"`
	GeoLat       float64  `json:"geoLat"`
	GeoLng       float64  `json:"geoLng"`
	ImageURL     *string  `json:"imageUrl"`
	Phone        *string  `json:"phone"`
	Rating       int      `json:"rating"`
	RatingCount  int      `json:"ratingCount"`
	CheapestRoom Room     `json:"cheapestRoom"`
	Distance     *float64 `json:"distance,omitempty"`
}

// ApplyAttributes copies the recognized attributes of bag onto h.
func (h *Hotel) ApplyAttributes(bag AttributeBag) {
	h.Address = Address{
		Line1:   bag.Get(AttrAddress1),
		Line2:   bag.Get(AttrAddress2),
		City:    bag.Get(AttrAddressCity),
		Zip:     bag.Get(AttrAddressZip),
		Country: bag.Get(AttrAddressCountry),
	}
	h.GeoLat = bag.Float(AttrGeoLat)
	h.GeoLng = bag.Float(AttrGeoLng)
	h.ImageURL = bag.Get(AttrCoverImage)
	h.Phone = bag.Get(AttrPhone)
}
