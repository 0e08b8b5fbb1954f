package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Paradox281/altura-go/internal/domain"
)

// FormPhase drives the booking screen as an explicit sequence instead of
// callback chaining: Editing -> Submitting -> AwaitingTestimonial -> Done.
type FormPhase string

const (
	PhaseEditing             FormPhase = "editing"
	PhaseSubmitting          FormPhase = "submitting"
	PhaseAwaitingTestimonial FormPhase = "awaiting_testimonial"
	PhaseDone                FormPhase = "done"
)

var (
	ErrTotalPersonsRequired  = errors.New("number of travellers is required")
	ErrParticipantIncomplete = errors.New("every traveller needs a name, identity number, and age")
	ErrParticipantAge        = errors.New("traveller age must be a number")
	ErrReturnBeforeDeparture = errors.New("return date must be after departure date")
	ErrSubmissionInFlight    = errors.New("a submission is already in progress")
	ErrNoPendingTestimonial  = errors.New("no booking is awaiting a testimonial")
)

// FormParticipant keeps traveller fields as free text the way the form
// captures them; coercion to the wire types happens at submission.
type FormParticipant struct {
	Name           string
	IdentityNumber string
	Age            string
}

func (p FormParticipant) complete() bool {
	return p.Name != "" && p.IdentityNumber != "" && p.Age != ""
}

// FormController owns the state of one booking screen session.
type FormController struct {
	bookings    *BookingService
	tours       *TourService
	destination domain.DestinationDetail
	user        domain.UserData

	mu            sync.Mutex
	phase         FormPhase
	totalPersons  string
	departureDate time.Time
	returnDate    time.Time
	participants  []FormParticipant
}

func NewFormController(bookings *BookingService, tours *TourService, destination domain.DestinationDetail, user domain.UserData) *FormController {
	return &FormController{
		bookings:    bookings,
		tours:       tours,
		destination: destination,
		user:        user,
		phase:       PhaseEditing,
	}
}

// SetTotalPersons records the traveller count and resizes the participant
// list to exactly N blank entries for numeric N >= 0. Prior per-traveller
// input is discarded on every resize, matching the shipped app. A
// non-numeric value clears the list.
func (c *FormController) SetTotalPersons(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalPersons = value
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		c.participants = nil
		return
	}
	c.participants = make([]FormParticipant, n)
}

func (c *FormController) SetDates(departure, ret time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.departureDate = departure
	c.returnDate = ret
}

// SetParticipant fills in one traveller. Out-of-range indexes are a
// programming error on the screen side and are reported, not ignored.
func (c *FormController) SetParticipant(index int, p FormParticipant) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.participants) {
		return fmt.Errorf("participant index %d out of range (have %d)", index, len(c.participants))
	}
	c.participants[index] = p
	return nil
}

// TotalPrice is (per-person price after discount) * traveller count, and 0
// while the count is unset or non-numeric.
func (c *FormController) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPriceLocked()
}

func (c *FormController) totalPriceLocked() float64 {
	n, err := strconv.Atoi(strings.TrimSpace(c.totalPersons))
	if err != nil || n < 0 {
		return 0
	}
	return c.destination.EffectivePrice() * float64(n)
}

// Validate checks the form in submission order, stopping at the first
// failure: traveller count, then participant completeness, then the date
// range.
func (c *FormController) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *FormController) validateLocked() error {
	if strings.TrimSpace(c.totalPersons) == "" {
		return ErrTotalPersonsRequired
	}
	for _, p := range c.participants {
		if !p.complete() {
			return ErrParticipantIncomplete
		}
	}
	if !c.departureDate.Before(c.returnDate) {
		return ErrReturnBeforeDeparture
	}
	return nil
}

// Submit validates and posts the booking. While a submission is in flight
// the controller refuses another one, so a double tap cannot create two
// bookings. On success the flow moves to AwaitingTestimonial; on failure it
// returns to Editing with the error.
func (c *FormController) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseEditing {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if err := c.validateLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	payload, err := c.buildBookingLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.phase = PhaseSubmitting
	c.mu.Unlock()

	_, err = c.bookings.CreateBooking(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = PhaseEditing
		return err
	}
	c.phase = PhaseAwaitingTestimonial
	return nil
}

func (c *FormController) buildBookingLocked() (domain.Booking, error) {
	n, err := strconv.Atoi(strings.TrimSpace(c.totalPersons))
	if err != nil {
		return domain.Booking{}, ErrTotalPersonsRequired
	}

	participants := make([]domain.Participant, 0, len(c.participants))
	for _, p := range c.participants {
		age, err := strconv.Atoi(strings.TrimSpace(p.Age))
		if err != nil {
			return domain.Booking{}, ErrParticipantAge
		}
		participants = append(participants, domain.Participant{
			Name:           p.Name,
			IdentityNumber: p.IdentityNumber,
			Age:            age,
		})
	}

	return domain.Booking{
		PackageID:     c.destination.ID,
		UserID:        c.user.ID,
		TotalPersons:  n,
		Status:        domain.BookingStatusPending,
		DepartureDate: c.departureDate.Format(time.RFC3339),
		ReturnDate:    c.returnDate.Format(time.RFC3339),
		Participants:  participants,
	}, nil
}

// SubmitTestimonial posts the post-booking testimonial and finishes the
// flow. Validation failures leave the flow waiting so the user can fix the
// input and retry.
func (c *FormController) SubmitTestimonial(ctx context.Context, text string, rating int) error {
	c.mu.Lock()
	if c.phase != PhaseAwaitingTestimonial {
		c.mu.Unlock()
		return ErrNoPendingTestimonial
	}
	c.mu.Unlock()

	if err := c.tours.SubmitTestimonial(ctx, text, rating); err != nil {
		return err
	}

	c.mu.Lock()
	c.phase = PhaseDone
	c.mu.Unlock()
	return nil
}

// SkipTestimonial ends the flow without posting anything. The booking made
// in Submit stays created server-side.
func (c *FormController) SkipTestimonial() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseAwaitingTestimonial {
		c.phase = PhaseDone
	}
}

func (c *FormController) Phase() FormPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Participants returns a copy of the current traveller entries.
func (c *FormController) Participants() []FormParticipant {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FormParticipant, len(c.participants))
	copy(out, c.participants)
	return out
}

func (c *FormController) TotalPersons() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPersons
}
