package domain

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Participant is one traveller on a booking. Age is numeric on the wire;
// the form layer keeps it as free text until submission.
type Participant struct {
	Name           string `json:"name"`
	IdentityNumber string `json:"identityNumber"`
	Age            int    `json:"age"`
}

// Receipt is the payment receipt data from GET /kwitansi?id=. The app
// renders it into a shareable document; harga_diskon is a discount amount.
type Receipt struct {
	ID            int     `json:"id"`
	UserID        int     `json:"user_id"`
	Destination   string  `json:"destination"`
	OriginalPrice float64 `json:"harga_asli"`
	DiscountAmt   float64 `json:"harga_diskon"`
	TotalPersons  int     `json:"total_persons"`
	TotalPrice    float64 `json:"totalPrice"`
	BookingDate   string  `json:"booking_date"`
	DepartureDate string  `json:"departure_date"`
	Status        string  `json:"status"`
}

// TotalDue is the amount payable: per-person price after discount times the
// number of travellers, unless the server already computed totalPrice.
func (r Receipt) TotalDue() float64 {
	if r.TotalPrice > 0 {
		return r.TotalPrice
	}
	persons := r.TotalPersons
	if persons <= 0 {
		persons = 1
	}
	due := (r.OriginalPrice - r.DiscountAmt) * float64(persons)
	if due < 0 {
		return 0
	}
	return due
}

// Booking is the payload for POST /bookings. The status lifecycle is
// server-owned after creation; clients always submit PENDING.
type Booking struct {
	PackageID     int           `json:"package_id"`
	UserID        int           `json:"user_id"`
	TotalPersons  int           `json:"total_persons"`
	Status        BookingStatus `json:"status"`
	DepartureDate string        `json:"departure_date"`
	ReturnDate    string        `json:"return_date"`
	Participants  []Participant `json:"participants"`
}
