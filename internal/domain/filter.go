package domain

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

type FloatRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type IntRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// FilterArgs narrows a listing. Every field is optional; nil means no constraint.
type FilterArgs struct {
	Search    *string    `json:"search,omitempty"`
	Lat       *float64   `json:"lat,omitempty"`
	Lng       *float64   `json:"lng,omitempty"`
	Distance  *float64   `json:"distance,omitempty"`
	Price     FloatRange `json:"price"`
	Surface   IntRange   `json:"surface"`
	Rooms     *int       `json:"rooms,omitempty"`
	BathRooms *int       `json:"bathRooms,omitempty"`
	Types     []string   `json:"types,omitempty"`
}

// HasRadius reports whether origin and radius are all set.
func (f FilterArgs) HasRadius() bool {
	return f.Lat != nil && f.Lng != nil && f.Distance != nil
}

// MatchesRoom applies every room constraint of f. Prices compare truncated.
func (f FilterArgs) MatchesRoom(r Room) bool {
	if f.Surface.Min != nil && r.Surface < *f.Surface.Min {
		return false
	}
	if f.Surface.Max != nil && r.Surface > *f.Surface.Max {
		return false
	}
	if f.Price.Min != nil && r.PriceKey() < math.Trunc(*f.Price.Min) {
		return false
	}
	if f.Price.Max != nil && r.PriceKey() > math.Trunc(*f.Price.Max) {
		return false
	}
	if f.Rooms != nil && r.BedRooms < *f.Rooms {
		return false
	}
	if f.BathRooms != nil && r.BathRooms < *f.BathRooms {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, r.Type) {
		return false
	}
	return true
}

// Validate rejects filters no listing could be computed for.
func (f FilterArgs) Validate() error {
	floats := []struct {
		name string
		v    *float64
	}{
		{"lat", f.Lat}, {"lng", f.Lng}, {"distance", f.Distance},
		{"price[min]", f.Price.Min}, {"price[max]", f.Price.Max},
	}
	for _, p := range floats {
		if p.v != nil && (math.IsNaN(*p.v) || math.IsInf(*p.v, 0)) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidFilter, p.name)
		}
	}
	if f.Lat != nil && (*f.Lat < -90 || *f.Lat > 90) {
		return fmt.Errorf("%w: lat must be within [-90, 90]", ErrInvalidFilter)
	}
	if f.Lng != nil && (*f.Lng < -180 || *f.Lng > 180) {
		return fmt.Errorf("%w: lng must be within [-180, 180]", ErrInvalidFilter)
	}
	if f.Distance != nil && *f.Distance < 0 {
		return fmt.Errorf("%w: distance must not be negative", ErrInvalidFilter)
	}
	if f.Price.Min != nil && f.Price.Max != nil && *f.Price.Min > *f.Price.Max {
		return fmt.Errorf("%w: price[min] is greater than price[max]", ErrInvalidFilter)
	}
	if f.Surface.Min != nil && f.Surface.Max != nil && *f.Surface.Min > *f.Surface.Max {
		return fmt.Errorf("%w: surface[min] is greater than surface[max]", ErrInvalidFilter)
	}
	ints := []struct {
		name string
		v    *int
	}{
		{"surface[min]", f.Surface.Min}, {"surface[max]", f.Surface.Max},
		{"rooms", f.Rooms}, {"bathRooms", f.BathRooms},
	}
	for _, p := range ints {
		if p.v != nil && *p.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidFilter, p.name)
		}
	}
	return nil
}

// ParseFilter reads a filter from query parameters (search, lat, lng,
// distance, price[min], price[max], surface[min], surface[max], rooms,
// bathRooms, types[]). Empty values are treated as absent.
func ParseFilter(q url.Values) (FilterArgs, error) {
	var (
		f   FilterArgs
		err error
	)
	if s := strings.TrimSpace(q.Get("search")); s != "" {
		f.Search = &s
	}
	floats := []struct {
		key string
		dst **float64
	}{
		{"lat", &f.Lat}, {"lng", &f.Lng}, {"distance", &f.Distance},
		{"price[min]", &f.Price.Min}, {"price[max]", &f.Price.Max},
	}
	for _, p := range floats {
		if *p.dst, err = parseFloat(q, p.key); err != nil {
			return FilterArgs{}, err
		}
	}
	ints := []struct {
		key string
		dst **int
	}{
		{"surface[min]", &f.Surface.Min}, {"surface[max]", &f.Surface.Max},
		{"rooms", &f.Rooms}, {"bathRooms", &f.BathRooms},
	}
	for _, p := range ints {
		if *p.dst, err = parseInt(q, p.key); err != nil {
			return FilterArgs{}, err
		}
	}
	for _, key := range []string{"types[]", "types"} {
		for _, t := range q[key] {
			if t = strings.TrimSpace(t); t != "" {
				f.Types = append(f.Types, t)
			}
		}
	}
	if err := f.Validate(); err != nil {
		return FilterArgs{}, err
	}
	return f, nil
}

func parseFloat(q url.Values, key string) (*float64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidFilter, key)
	}
	return &v, nil
}

func parseInt(q url.Values, key string) (*int, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidFilter, key)
	}
	return &v, nil
}
