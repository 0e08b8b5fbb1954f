// Package apitest runs an in-memory stand-in for the Altura API so package
// tests can exercise the real HTTP client against real routes.
package apitest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Paradox281/altura-go/internal/domain"
)

const signingSecret = "apitest-secret"

type Account struct {
	ID       int
	Fullname string
	Password string
	Phone    string
}

type ReceivedBooking struct {
	Booking        domain.Booking
	IdempotencyKey string
}

type ReceivedTestimonial struct {
	Testimonial string `json:"testimonial"`
	Rating      int    `json:"rating"`
}

type ReceivedPayment struct {
	BookingID int
	BankName  string
	FileName  string
	FileBytes int
}

// Server wires an echo router onto an httptest server and records every
// write request for assertions.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	accounts     map[string]*Account
	nextID       int
	bookings     []ReceivedBooking
	testimonials []ReceivedTestimonial
	payments     []ReceivedPayment

	// Destinations and Promos are returned verbatim by the catalogue
	// routes; tests seed them before making calls.
	Destinations []map[string]any
	Details      map[int]map[string]any
	Promos       []map[string]any
	Locations    []string
	Feedback     []domain.Testimonial
	Receipts     map[int]domain.Receipt

	// ForceStatus short-circuits every route with the given status when
	// non-zero. Used to drive 401 and 5xx paths.
	ForceStatus int
}

func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		accounts: map[string]*Account{},
		nextID:   1,
		Details:  map[int]map[string]any{},
		Receipts: map[int]domain.Receipt{},
	}

	e := echo.New()
	e.Use(s.forceStatusMiddleware)

	e.POST("/auth/login", s.handleLogin)
	e.POST("/auth/register", s.handleRegister)

	e.GET("/tour-package-diskon", s.handlePromos)
	e.GET("/destinations", s.handleDestinations)
	e.GET("/destinations/top", s.handleDestinations)
	e.GET("/destinations/:id/detail", s.handleDestinationDetail)
	e.GET("/locations", s.handleLocations)
	e.GET("/testimonials", s.handleTestimonials)

	authed := e.Group("", s.requireBearer)
	authed.GET("/user/profile", s.handleProfile)
	authed.PUT("/user/profile", s.handleUpdateProfile)
	authed.PUT("/user/profile/password", s.handleChangePassword)
	authed.POST("/testimonials", s.handleCreateTestimonial)
	authed.POST("/bookings", s.handleCreateBooking)
	authed.GET("/kwitansi", s.handleReceipt)
	authed.POST("/payments", s.handleCreatePayment)

	s.Server = httptest.NewServer(e)
	t.Cleanup(s.Close)
	return s
}

// Seed registers an account without going through the register route.
func (s *Server) Seed(email, password, fullname string) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := &Account{ID: s.nextID, Fullname: fullname, Password: password}
	s.nextID++
	s.accounts[email] = acct
	return acct
}

func (s *Server) Bookings() []ReceivedBooking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReceivedBooking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

func (s *Server) Testimonials() []ReceivedTestimonial {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReceivedTestimonial, len(s.testimonials))
	copy(out, s.testimonials)
	return out
}

func (s *Server) Payments() []ReceivedPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReceivedPayment, len(s.payments))
	copy(out, s.payments)
	return out
}

// Token issues a bearer token the same way the login route does, for tests
// that want an authenticated client without the login round trip.
func (s *Server) Token(acct *Account) string {
	tok, err := issueToken(acct)
	if err != nil {
		panic(err)
	}
	return tok
}

func issueToken(acct *Account) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.Itoa(acct.ID),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingSecret))
}

func (s *Server) forceStatusMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.ForceStatus != 0 {
			return c.JSON(s.ForceStatus, echo.Map{"message": http.StatusText(s.ForceStatus)})
		}
		return next(c)
	}
}

func (s *Server) requireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
		}
		tok, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
			return []byte(signingSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !tok.Valid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		sub, _ := tok.Claims.GetSubject()
		c.Set("userID", sub)
		return next(c)
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad body"})
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || acct.Password != req.Password {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	tok, err := issueToken(acct)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":    tok,
		"fullname": acct.Fullname,
		"role":     "user",
		"id":       acct.ID,
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	var req struct {
		Fullname string `json:"fullname"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad body"})
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	}
	acct := &Account{ID: s.nextID, Fullname: req.Fullname, Password: req.Password, Phone: req.Phone}
	s.nextID++
	s.accounts[req.Email] = acct
	s.mu.Unlock()

	tok, err := issueToken(acct)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token":    tok,
		"fullname": acct.Fullname,
		"role":     "user",
		"id":       acct.ID,
	})
}

func (s *Server) handleProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{
		"email":          "tester@example.com",
		"fullname":       "Tester",
		"phone":          "0800",
		"bookingHistory": []any{},
	}})
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (s *Server) handleChangePassword(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (s *Server) handlePromos(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"tourPackages": s.Promos}})
}

func (s *Server) handleDestinations(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"destinations": s.Destinations}})
}

func (s *Server) handleDestinationDetail(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad id"})
	}
	detail, ok := s.Details[id]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "destination not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"destination": detail}})
}

func (s *Server) handleLocations(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"locations": s.Locations}})
}

func (s *Server) handleTestimonials(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"testimonials": s.Feedback}})
}

func (s *Server) handleCreateTestimonial(c echo.Context) error {
	var req ReceivedTestimonial
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad body"})
	}
	s.mu.Lock()
	s.testimonials = append(s.testimonials, req)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, echo.Map{"status": "success"})
}

func (s *Server) handleCreateBooking(c echo.Context) error {
	var b domain.Booking
	if err := c.Bind(&b); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad body"})
	}
	key := c.Request().Header.Get("Idempotency-Key")

	s.mu.Lock()
	for _, prev := range s.bookings {
		if key != "" && prev.IdempotencyKey == key {
			s.mu.Unlock()
			return c.JSON(http.StatusOK, echo.Map{"status": "success", "duplicate": true})
		}
	}
	s.bookings = append(s.bookings, ReceivedBooking{Booking: b, IdempotencyKey: key})
	id := len(s.bookings)
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": echo.Map{"bookingId": id}})
}

func (s *Server) handleReceipt(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad id"})
	}
	receipt, ok := s.Receipts[id]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "receipt not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": receipt})
}

func (s *Server) handleCreatePayment(c echo.Context) error {
	bookingID, err := strconv.Atoi(c.QueryParam("bookingId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bookingId is required"})
	}
	bank := c.QueryParam("namaBank")
	if bank == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "namaBank is required"})
	}

	file, err := c.FormFile("uploadBukti")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "uploadBukti is required"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "open upload"})
	}
	defer src.Close()
	n, _ := io.Copy(io.Discard, src)

	s.mu.Lock()
	s.payments = append(s.payments, ReceivedPayment{
		BookingID: bookingID,
		BankName:  bank,
		FileName:  file.Filename,
		FileBytes: int(n),
	})
	s.mu.Unlock()

	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
