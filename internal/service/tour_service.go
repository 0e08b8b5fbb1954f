package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/Paradox281/altura-go/internal/api"
	"github.com/Paradox281/altura-go/internal/domain"
)

var ErrTestimonialValidation = errors.New("testimonial validation failed")

// DestinationSort values accepted by GET /destinations.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

type DestinationFilter struct {
	Location string
	SortBy   string
}

// TourService is a typed wrapper over the catalogue endpoints. Each method
// performs exactly one API call and unwraps the response envelope; failures
// are logged and returned unchanged.
type TourService struct {
	api    *api.Client
	logger *log.Logger
}

func NewTourService(apiClient *api.Client, logger *log.Logger) *TourService {
	if logger == nil {
		logger = log.Default()
	}
	return &TourService{api: apiClient, logger: logger}
}

func (s *TourService) PromoPackages(ctx context.Context) ([]domain.TourPackage, error) {
	var resp struct {
		Data struct {
			TourPackages []domain.TourPackage `json:"tourPackages"`
		} `json:"data"`
	}
	if err := s.api.Get(ctx, "/tour-package-diskon", &resp); err != nil {
		s.logger.Printf("tour: fetch promo packages: %v", err)
		return nil, err
	}
	return resp.Data.TourPackages, nil
}

func (s *TourService) TopDestinations(ctx context.Context) ([]domain.Destination, error) {
	return s.destinations(ctx, "/destinations/top")
}

func (s *TourService) Destinations(ctx context.Context, filter DestinationFilter) ([]domain.Destination, error) {
	q := url.Values{}
	if filter.Location != "" {
		q.Set("location", filter.Location)
	}
	if filter.SortBy != "" {
		q.Set("sortBy", filter.SortBy)
	}
	endpoint := "/destinations"
	if encoded := q.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	return s.destinations(ctx, endpoint)
}

func (s *TourService) destinations(ctx context.Context, endpoint string) ([]domain.Destination, error) {
	var resp struct {
		Data struct {
			Destinations []domain.Destination `json:"destinations"`
		} `json:"data"`
	}
	if err := s.api.Get(ctx, endpoint, &resp); err != nil {
		s.logger.Printf("tour: fetch destinations: %v", err)
		return nil, err
	}

	out := resp.Data.Destinations
	for i := range out {
		out[i].DiscountAmount = normalizeDiscount(out[i])
	}
	return out, nil
}

// normalizeDiscount converts the list payload's hargaDiskon, which is a
// discounted price, into the canonical discount amount. The detail payload
// already carries an amount and needs no conversion.
func normalizeDiscount(d domain.Destination) float64 {
	if d.DiscountedPrice == nil {
		return 0
	}
	amount := d.Price - *d.DiscountedPrice
	if amount < 0 {
		return 0
	}
	return amount
}

func (s *TourService) DestinationDetail(ctx context.Context, id int) (*domain.DestinationDetail, error) {
	var resp struct {
		Data struct {
			Destination domain.DestinationDetail `json:"destination"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("/destinations/%d/detail", id)
	if err := s.api.Get(ctx, endpoint, &resp); err != nil {
		s.logger.Printf("tour: fetch destination %d: %v", id, err)
		return nil, err
	}
	return &resp.Data.Destination, nil
}

func (s *TourService) Locations(ctx context.Context) ([]string, error) {
	var resp struct {
		Data struct {
			Locations []string `json:"locations"`
		} `json:"data"`
	}
	if err := s.api.Get(ctx, "/locations", &resp); err != nil {
		s.logger.Printf("tour: fetch locations: %v", err)
		return nil, err
	}
	return resp.Data.Locations, nil
}

func (s *TourService) Testimonials(ctx context.Context) ([]domain.Testimonial, error) {
	var resp struct {
		Data struct {
			Testimonials []domain.Testimonial `json:"testimonials"`
		} `json:"data"`
	}
	if err := s.api.Get(ctx, "/testimonials", &resp); err != nil {
		s.logger.Printf("tour: fetch testimonials: %v", err)
		return nil, err
	}
	return resp.Data.Testimonials, nil
}

// SubmitTestimonial posts a rating and comment. Validation runs before any
// network call: non-empty text and a rating between 1 and 5.
func (s *TourService) SubmitTestimonial(ctx context.Context, text string, rating int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: testimonial text is required", ErrTestimonialValidation)
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrTestimonialValidation)
	}

	payload := struct {
		Testimonial string `json:"testimonial"`
		Rating      int    `json:"rating"`
	}{Testimonial: text, Rating: rating}

	if err := s.api.Post(ctx, "/testimonials", payload, nil); err != nil {
		s.logger.Printf("tour: submit testimonial: %v", err)
		return err
	}
	return nil
}
