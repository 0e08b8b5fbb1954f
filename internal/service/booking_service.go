package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/Paradox281/altura-go/internal/api"
	"github.com/Paradox281/altura-go/internal/domain"
)

var (
	// ErrLoginRequired is returned before any network call when no token is
	// stored; it saves a round trip that would only come back as 401.
	ErrLoginRequired = errors.New("you must log in first")

	ErrPaymentValidation = errors.New("payment validation failed")
	ErrPaymentRejected   = errors.New("payment was not accepted")
)

// PaymentProof is the uploaded evidence of a bank transfer.
type PaymentProof struct {
	FileName    string
	ContentType string
	Reader      io.Reader
}

// BookingService creates bookings and handles the payment flow.
type BookingService struct {
	api    *api.Client
	auth   *AuthService
	logger *log.Logger

	newIdempotencyKey func() string
}

func NewBookingService(apiClient *api.Client, auth *AuthService, logger *log.Logger) *BookingService {
	if logger == nil {
		logger = log.Default()
	}
	return &BookingService{
		api:               apiClient,
		auth:              auth,
		logger:            logger,
		newIdempotencyKey: func() string { return uuid.NewString() },
	}
}

// CreateBooking submits a booking. Every attempt carries a client-generated
// idempotency key so a duplicate submission of the same payload cannot
// create two bookings server-side.
func (s *BookingService) CreateBooking(ctx context.Context, b domain.Booking) (map[string]any, error) {
	if s.auth.Token(ctx) == "" {
		return nil, ErrLoginRequired
	}

	var resp map[string]any
	key := s.newIdempotencyKey()
	err := s.api.Post(ctx, "/bookings", b, &resp, api.Header{Key: "Idempotency-Key", Value: key})
	if err != nil {
		s.logger.Printf("booking: create: %v", err)
		return nil, err
	}
	return resp, nil
}

// Receipt fetches the payment receipt data for a booking.
func (s *BookingService) Receipt(ctx context.Context, bookingID int) (*domain.Receipt, error) {
	var resp struct {
		Data domain.Receipt `json:"data"`
	}
	endpoint := "/kwitansi?id=" + strconv.Itoa(bookingID)
	if err := s.api.Get(ctx, endpoint, &resp); err != nil {
		s.logger.Printf("booking: fetch receipt %d: %v", bookingID, err)
		return nil, err
	}
	return &resp.Data, nil
}

// SubmitPayment uploads the transfer proof for a booking as multipart form
// data. The server keys the payment off query parameters, not the body.
func (s *BookingService) SubmitPayment(ctx context.Context, bookingID int, bankName string, proof PaymentProof) error {
	if bookingID <= 0 {
		return fmt.Errorf("%w: booking id is required", ErrPaymentValidation)
	}
	if bankName == "" {
		return fmt.Errorf("%w: bank name is required", ErrPaymentValidation)
	}
	if proof.Reader == nil {
		return fmt.Errorf("%w: payment proof is required", ErrPaymentValidation)
	}
	if s.auth.Token(ctx) == "" {
		return ErrLoginRequired
	}

	endpoint := "/payments?bookingId=" + strconv.Itoa(bookingID) + "&namaBank=" + url.QueryEscape(bankName)

	var resp struct {
		Status string `json:"status"`
	}
	err := s.api.PostMultipart(ctx, endpoint, func(w *multipart.Writer) error {
		part, err := createProofPart(w, proof)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, proof.Reader)
		return err
	}, &resp)
	if err != nil {
		s.logger.Printf("booking: submit payment %d: %v", bookingID, err)
		return err
	}

	if resp.Status != "success" {
		return fmt.Errorf("%w: server status %q", ErrPaymentRejected, resp.Status)
	}
	return nil
}

// createProofPart writes the uploadBukti file part with an explicit content
// type; the server rejects parts typed as bare "image".
func createProofPart(w *multipart.Writer, proof PaymentProof) (io.Writer, error) {
	name := proof.FileName
	if name == "" {
		name = "bukti.jpg"
	}
	contentType := proof.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="uploadBukti"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	return w.CreatePart(header)
}
