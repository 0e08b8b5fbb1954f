package domain

import "strings"

// UserData is the minimal identity persisted alongside the auth token.
type UserData struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DefaultUserName fills in for identities persisted by older app versions
// that stored the name under a different key or not at all.
const DefaultUserName = "User"

// Normalize applies the canonical validity rule for persisted identities:
// the record is usable iff it carries a positive ID; a missing name falls
// back to DefaultUserName and a missing email to the empty string. Every
// reader of persisted identity goes through this one rule.
func (u UserData) Normalize() (UserData, bool) {
	if u.ID <= 0 {
		return UserData{}, false
	}
	out := u
	if strings.TrimSpace(out.Name) == "" {
		out.Name = DefaultUserName
	}
	out.Email = strings.TrimSpace(out.Email)
	return out, true
}

// Profile is the account record returned by GET /user/profile, including
// the user's booking history.
type Profile struct {
	Email          string               `json:"email"`
	Fullname       string               `json:"fullname"`
	Phone          string               `json:"phone"`
	BookingHistory []BookingHistoryItem `json:"bookingHistory"`
}

type BookingHistoryItem struct {
	BookingID     int     `json:"bookingId"`
	UserID        int     `json:"userId"`
	PackageID     int     `json:"packageId"`
	TotalPersons  int     `json:"totalPersons"`
	Status        string  `json:"status"`
	BookingDate   string  `json:"bookingDate"`
	DepartureDate string  `json:"departureDate"`
	ReturnDate    string  `json:"returnDate"`
	TotalPrice    float64 `json:"totalPrice"`
}
