package domain_test

import (
	"testing"

	"hotel_listing/internal/domain"
)

func TestApplyAttributes(t *testing.T) {
	bag := domain.AttributeBag{
		domain.AttrAddress1:    ptr("1 rue de Rivoli"),
		domain.AttrAddressCity: ptr("Paris"),
		domain.AttrGeoLat:      ptr("48.8566"),
		domain.AttrGeoLng:      ptr("oops"),
		domain.AttrPhone:       ptr("0102030405"),
		domain.AttrAddress2:    nil,
	}
	var h domain.Hotel
	h.ApplyAttributes(bag)

	if h.Address.Line1 == nil || *h.Address.Line1 != "1 rue de Rivoli" || *h.Address.City != "Paris" {
		t.Fatalf("unexpected address: %+v", h.Address)
	}
	if h.Address.Line2 != nil || h.Address.Zip != nil || h.ImageURL != nil {
		t.Fatalf("absent attributes must stay nil: %+v", h)
	}
	if h.GeoLat != 48.8566 || h.GeoLng != 0 {
		t.Fatalf("unexpected coordinates: %v %v", h.GeoLat, h.GeoLng)
	}
	if h.Phone == nil || *h.Phone != "0102030405" {
		t.Fatalf("unexpected phone: %v", h.Phone)
	}
}
