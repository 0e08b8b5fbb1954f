package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Paradox281/altura-go/internal/api"
	"github.com/Paradox281/altura-go/internal/config"
	"github.com/Paradox281/altura-go/internal/logging"
	"github.com/Paradox281/altura-go/internal/service"
	"github.com/Paradox281/altura-go/internal/session"
	"github.com/Paradox281/altura-go/internal/storage"
)

const usage = `Usage: altura <command> [flags]

Commands:
  login          log in and persist the session
  register       create an account and log in
  logout         clear the stored session
  whoami         show the current session identity
  destinations   list destinations (filter and sort flags)
  promos         list discounted tour packages
  locations      list known locations
  testimonials   list testimonials
  profile        show account profile and booking history
  book           create a booking interactively from flags
  pay            upload payment proof for a booking
  receipt        show the payment receipt for a booking
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(2)
		}
		if errors.Is(err, api.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "session expired, run `altura login` again")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "altura:", err)
		os.Exit(1)
	}
}

// app bundles the wired service graph behind one constructor so every
// subcommand starts from identical state.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	closeLog io.Closer
	store    *storage.FileStore
	session  *session.Manager
	auth     *service.AuthService
	tours    *service.TourService
	bookings *service.BookingService
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	logger, closeLog, err := logging.Setup(cfg.LogCollectorAddr)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	sess := session.NewManager(store)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}

	opts := []api.Option{
		api.WithTokenSource(func(ctx context.Context) string {
			v, ok, err := store.Get(ctx, storage.KeyToken)
			if err != nil || !ok {
				return ""
			}
			return v
		}),
		api.WithUnauthorizedHook(func(ctx context.Context) {
			// Best effort: the request already failed, the session is
			// gone either way.
			_ = sess.Logout(ctx)
		}),
	}
	if cfg.HTTPDebug {
		opts = append(opts, api.WithDebug(logger))
	}
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, api.WithHTTPClient(newTimeoutClient(cfg.HTTPTimeout)))
	}

	client := api.New(cfg.APIBaseURL, opts...)
	auth := service.NewAuthService(client, store, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		closeLog: closeLog,
		store:    store,
		session:  sess,
		auth:     auth,
		tours:    service.NewTourService(client, logger),
		bookings: service.NewBookingService(client, auth, logger),
	}, nil
}

func (a *app) close() {
	_ = a.closeLog.Close()
}

func run(command string, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	switch command {
	case "login":
		return a.runLogin(ctx, args)
	case "register":
		return a.runRegister(ctx, args)
	case "logout":
		return a.session.Logout(ctx)
	case "whoami":
		return a.runWhoami()
	case "destinations":
		return a.runDestinations(ctx, args)
	case "promos":
		return a.runPromos(ctx)
	case "locations":
		return a.runLocations(ctx)
	case "testimonials":
		return a.runTestimonials(ctx)
	case "profile":
		return a.runProfile(ctx)
	case "book":
		return a.runBook(ctx, args)
	case "pay":
		return a.runPay(ctx, args)
	case "receipt":
		return a.runReceipt(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	resp, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	user := a.auth.UserData(ctx)
	if user != nil {
		if err := a.session.Login(ctx, *user); err != nil {
			return err
		}
	}
	fmt.Printf("logged in as %s\n", resp.Fullname)
	return nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("register", pflag.ContinueOnError)
	fullname := flags.String("fullname", "", "full name")
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	phone := flags.String("phone", "", "phone number")
	if err := flags.Parse(args); err != nil {
		return err
	}

	resp, err := a.auth.Register(ctx, *fullname, *email, *password, *phone)
	if err != nil {
		return err
	}
	user := a.auth.UserData(ctx)
	if user != nil {
		if err := a.session.Login(ctx, *user); err != nil {
			return err
		}
	}
	fmt.Printf("registered as %s\n", resp.Fullname)
	return nil
}

func (a *app) runWhoami() error {
	state := a.session.Current()
	if state.Phase != session.Authenticated {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> (id %d)\n", state.User.Name, state.User.Email, state.User.ID)
	return nil
}

func (a *app) runDestinations(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("destinations", pflag.ContinueOnError)
	location := flags.String("location", "", "filter by location")
	sortBy := flags.String("sort", "", "price_asc or price_desc")
	if err := flags.Parse(args); err != nil {
		return err
	}

	list, err := a.tours.Destinations(ctx, service.DestinationFilter{Location: *location, SortBy: *sortBy})
	if err != nil {
		return err
	}
	for _, d := range list {
		fmt.Printf("%4d  %-30s %-15s Rp %.0f", d.ID, d.Name, d.Location, d.EffectivePrice())
		if d.DiscountAmount > 0 {
			fmt.Printf("  (was Rp %.0f)", d.Price)
		}
		fmt.Println()
	}
	return nil
}

func (a *app) runPromos(ctx context.Context) error {
	promos, err := a.tours.PromoPackages(ctx)
	if err != nil {
		return err
	}
	for _, p := range promos {
		fmt.Printf("%4d  %-30s %-15s Rp %.0f (-%.0f%%)\n",
			p.DestinationID, p.Name, p.Location, p.EffectivePrice(), p.DiscountPercent)
	}
	return nil
}

func (a *app) runLocations(ctx context.Context) error {
	locations, err := a.tours.Locations(ctx)
	if err != nil {
		return err
	}
	for _, l := range locations {
		fmt.Println(l)
	}
	return nil
}

func (a *app) runTestimonials(ctx context.Context) error {
	list, err := a.tours.Testimonials(ctx)
	if err != nil {
		return err
	}
	for _, t := range list {
		fmt.Printf("%s (%d/5): %s\n", t.UserName, t.Rating, t.Testimonial)
	}
	return nil
}

func (a *app) runProfile(ctx context.Context) error {
	profile, err := a.auth.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> %s\n", profile.Fullname, profile.Email, profile.Phone)
	for _, b := range profile.BookingHistory {
		fmt.Printf("  booking %d: package %d, %d person(s), %s, Rp %.0f\n",
			b.BookingID, b.PackageID, b.TotalPersons, b.Status, b.TotalPrice)
	}
	return nil
}

func (a *app) runBook(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("book", pflag.ContinueOnError)
	destinationID := flags.Int("destination", 0, "destination id")
	persons := flags.String("persons", "", "number of travellers")
	departure := flags.String("departure", "", "departure date (YYYY-MM-DD)")
	ret := flags.String("return", "", "return date (YYYY-MM-DD)")
	participants := flags.StringArray("participant", nil, "traveller as name:identity:age (repeatable)")
	testimonial := flags.String("testimonial", "", "optional post-booking testimonial text")
	rating := flags.Int("rating", 0, "testimonial rating 1-5")
	if err := flags.Parse(args); err != nil {
		return err
	}

	state := a.session.Current()
	if state.Phase != session.Authenticated {
		return service.ErrLoginRequired
	}

	detail, err := a.tours.DestinationDetail(ctx, *destinationID)
	if err != nil {
		return err
	}

	form := service.NewFormController(a.bookings, a.tours, *detail, *state.User)
	form.SetTotalPersons(*persons)

	dep, err := parseDate(*departure)
	if err != nil {
		return fmt.Errorf("departure: %w", err)
	}
	back, err := parseDate(*ret)
	if err != nil {
		return fmt.Errorf("return: %w", err)
	}
	form.SetDates(dep, back)

	for i, raw := range *participants {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("participant %q: want name:identity:age", raw)
		}
		p := service.FormParticipant{Name: parts[0], IdentityNumber: parts[1], Age: parts[2]}
		if err := form.SetParticipant(i, p); err != nil {
			return err
		}
	}

	fmt.Printf("total price: Rp %.0f\n", form.TotalPrice())
	if err := form.Submit(ctx); err != nil {
		return err
	}
	fmt.Println("booking created")

	if *testimonial == "" {
		form.SkipTestimonial()
		return nil
	}
	if err := form.SubmitTestimonial(ctx, *testimonial, *rating); err != nil {
		return err
	}
	fmt.Println("testimonial submitted")
	return nil
}

func (a *app) runPay(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("pay", pflag.ContinueOnError)
	bookingID := flags.Int("booking", 0, "booking id")
	bank := flags.String("bank", "BNI", "bank name (BCA, MANDIRI, BRI, BNI)")
	proofPath := flags.String("proof", "", "path to the transfer proof image")
	if err := flags.Parse(args); err != nil {
		return err
	}

	f, err := os.Open(*proofPath)
	if err != nil {
		return err
	}
	defer f.Close()

	proof := service.PaymentProof{
		FileName:    filepath.Base(*proofPath),
		ContentType: contentTypeForFile(*proofPath),
		Reader:      f,
	}
	if err := a.bookings.SubmitPayment(ctx, *bookingID, *bank, proof); err != nil {
		return err
	}
	fmt.Println("payment submitted")
	return nil
}

func (a *app) runReceipt(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("receipt", pflag.ContinueOnError)
	bookingID := flags.Int("booking", 0, "booking id")
	if err := flags.Parse(args); err != nil {
		return err
	}

	r, err := a.bookings.Receipt(ctx, *bookingID)
	if err != nil {
		return err
	}
	fmt.Printf("receipt %d: %s\n", r.ID, r.Destination)
	fmt.Printf("  %d person(s), booked %s, departs %s\n", r.TotalPersons, r.BookingDate, r.DepartureDate)
	fmt.Printf("  status %s, total Rp %.0f\n", r.Status, r.TotalDue())
	return nil
}

func newTimeoutClient(d time.Duration) *http.Client {
	return &http.Client{Timeout: d}
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("date is required")
	}
	return time.Parse("2006-01-02", value)
}

func contentTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
