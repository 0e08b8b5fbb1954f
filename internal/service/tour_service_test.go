package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Paradox281/altura-go/internal/api"
	"github.com/Paradox281/altura-go/internal/apitest"
	"github.com/Paradox281/altura-go/internal/domain"
)

func TestDestinationsNormalizeDiscount(t *testing.T) {
	srv := apitest.New(t)
	srv.Destinations = []map[string]any{
		{
			// The list payload carries hargaDiskon as a discounted
			// price, not an amount.
			"id": 1, "nama": "Bromo", "location": "Jawa Timur",
			"price": 1_000_000, "hargaDiskon": 750_000,
		},
		{"id": 2, "nama": "Komodo", "location": "NTT", "price": 3_000_000},
	}

	tours := NewTourService(api.New(srv.URL), quietLogger())
	list, err := tours.Destinations(context.Background(), DestinationFilter{})
	if err != nil {
		t.Fatalf("Destinations returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 destinations, got %d", len(list))
	}

	if list[0].DiscountAmount != 250_000 {
		t.Fatalf("expected discount amount 250000, got %v", list[0].DiscountAmount)
	}
	if list[0].EffectivePrice() != 750_000 {
		t.Fatalf("expected effective price 750000, got %v", list[0].EffectivePrice())
	}
	if list[1].DiscountAmount != 0 {
		t.Fatalf("expected no discount, got %v", list[1].DiscountAmount)
	}
}

func TestDestinationsForwardFilter(t *testing.T) {
	srv := apitest.New(t)
	tours := NewTourService(api.New(srv.URL), quietLogger())

	// The fake returns the seeded list regardless; this only asserts the
	// query string renders without error.
	_, err := tours.Destinations(context.Background(), DestinationFilter{Location: "Bali", SortBy: SortPriceAsc})
	if err != nil {
		t.Fatalf("Destinations returned error: %v", err)
	}
}

func TestDestinationDetailUnwrapsEnvelope(t *testing.T) {
	srv := apitest.New(t)
	srv.Details[7] = map[string]any{
		"id": 7, "nama": "Raja Ampat", "harga": 5_000_000,
		"hargaDiskon": 500_000, "lokasi": "Papua Barat",
		"itenary": []string{"day 1", "day 2"},
	}

	tours := NewTourService(api.New(srv.URL), quietLogger())
	detail, err := tours.DestinationDetail(context.Background(), 7)
	if err != nil {
		t.Fatalf("DestinationDetail returned error: %v", err)
	}
	if detail.Name != "Raja Ampat" {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	// The detail payload's hargaDiskon is already an amount.
	if detail.EffectivePrice() != 4_500_000 {
		t.Fatalf("expected effective price 4500000, got %v", detail.EffectivePrice())
	}
	if len(detail.Itinerary) != 2 {
		t.Fatalf("expected itinerary to decode, got %+v", detail.Itinerary)
	}
}

func TestDestinationDetailNotFound(t *testing.T) {
	srv := apitest.New(t)
	tours := NewTourService(api.New(srv.URL), quietLogger())

	_, err := tours.DestinationDetail(context.Background(), 99)
	var httpErr *api.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *api.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", httpErr.StatusCode)
	}
}

func TestPromoPackagesUnwrap(t *testing.T) {
	srv := apitest.New(t)
	srv.Promos = []map[string]any{
		{
			"promoId": 3, "idDestinasi": 1, "namaDestinasi": "Bromo",
			"hargaAsli": 1_000_000, "hargaDiskon": 250_000, "persentaseDiskon": 25,
		},
	}

	tours := NewTourService(api.New(srv.URL), quietLogger())
	promos, err := tours.PromoPackages(context.Background())
	if err != nil {
		t.Fatalf("PromoPackages returned error: %v", err)
	}
	if len(promos) != 1 {
		t.Fatalf("expected 1 promo, got %d", len(promos))
	}
	if promos[0].EffectivePrice() != 750_000 {
		t.Fatalf("expected promo price 750000, got %v", promos[0].EffectivePrice())
	}
}

func TestLocationsAndTestimonials(t *testing.T) {
	srv := apitest.New(t)
	srv.Locations = []string{"Bali", "Lombok"}
	srv.Feedback = []domain.Testimonial{{ID: 1, Testimonial: "Great trip", Rating: 5, UserName: "Andi"}}

	tours := NewTourService(api.New(srv.URL), quietLogger())

	locations, err := tours.Locations(context.Background())
	if err != nil {
		t.Fatalf("Locations returned error: %v", err)
	}
	if len(locations) != 2 || locations[0] != "Bali" {
		t.Fatalf("unexpected locations: %v", locations)
	}

	list, err := tours.Testimonials(context.Background())
	if err != nil {
		t.Fatalf("Testimonials returned error: %v", err)
	}
	if len(list) != 1 || list[0].Rating != 5 {
		t.Fatalf("unexpected testimonials: %+v", list)
	}
}

func TestSubmitTestimonialValidatesBeforeNetwork(t *testing.T) {
	srv := apitest.New(t)
	acct := srv.Seed("a@x.com", "secret", "Andi")
	tok := srv.Token(acct)
	client := api.New(srv.URL, api.WithTokenSource(func(context.Context) string { return tok }))
	tours := NewTourService(client, quietLogger())

	cases := []struct {
		text   string
		rating int
	}{
		{"", 5},
		{"   ", 5},
		{"nice", 0},
		{"nice", 6},
	}
	for _, tc := range cases {
		err := tours.SubmitTestimonial(context.Background(), tc.text, tc.rating)
		if !errors.Is(err, ErrTestimonialValidation) {
			t.Fatalf("text=%q rating=%d: expected validation error, got %v", tc.text, tc.rating, err)
		}
	}
	if got := len(srv.Testimonials()); got != 0 {
		t.Fatalf("expected no testimonial posts, server saw %d", got)
	}

	if err := tours.SubmitTestimonial(context.Background(), "nice", 5); err != nil {
		t.Fatalf("SubmitTestimonial returned error: %v", err)
	}
	received := srv.Testimonials()
	if len(received) != 1 || received[0].Rating != 5 || received[0].Testimonial != "nice" {
		t.Fatalf("unexpected received testimonials: %+v", received)
	}
}
