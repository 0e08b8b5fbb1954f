package domain

// Destination is a bookable travel package as served by GET /destinations.
// JSON field names follow the server contract, which mixes English and
// Indonesian (nama, harga, itenary).
type Destination struct {
	ID              int      `json:"id"`
	Name            string   `json:"nama"`
	Location        string   `json:"location"`
	ImageURL        string   `json:"imageUrl"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Quota           int      `json:"quota"`
	Itinerary       []string `json:"itenary"`
	BookingCount    int      `json:"jumlahBooking"`
	DiscountedPrice *float64 `json:"hargaDiskon,omitempty"`
	DiscountPercent *float64 `json:"persentaseDiskon,omitempty"`
	PromoID         *int     `json:"promoId,omitempty"`

	// DiscountAmount is the canonical discount representation, derived
	// from the wire payload by the tour service. The server sends the
	// discounted price here but a discount amount elsewhere; everything
	// downstream works with the amount.
	DiscountAmount float64 `json:"-"`
}

// EffectivePrice is the per-person price after discount, never negative.
func (d Destination) EffectivePrice() float64 {
	p := d.Price - d.DiscountAmount
	if p < 0 {
		return 0
	}
	return p
}

// DestinationDetail is the richer record from GET /destinations/{id}/detail.
// Unlike the list payload, hargaDiskon here is a discount amount.
type DestinationDetail struct {
	ID             int      `json:"id"`
	Name           string   `json:"nama"`
	Image          string   `json:"image"`
	Description    string   `json:"description"`
	Price          float64  `json:"harga"`
	MaxPersons     int      `json:"jumlah_orang"`
	Location       string   `json:"lokasi"`
	Itinerary      []string `json:"itenary"`
	Facilities     []string `json:"facilities"`
	BookingCount   int      `json:"jumlahBooking"`
	Galleries      []string `json:"galleries"`
	DiscountAmount float64  `json:"hargaDiskon"`
}

// EffectivePrice is the per-person price after discount, never negative.
func (d DestinationDetail) EffectivePrice() float64 {
	p := d.Price - d.DiscountAmount
	if p < 0 {
		return 0
	}
	return p
}

// TourPackage is a destination flattened together with an active promotion,
// from GET /tour-package-diskon. hargaDiskon is the discount amount
// subtracted from hargaAsli.
type TourPackage struct {
	PromoID         int     `json:"promoId"`
	DestinationID   int     `json:"idDestinasi"`
	Name            string  `json:"namaDestinasi"`
	Description     string  `json:"deskripsiDestinasi"`
	OriginalPrice   float64 `json:"hargaAsli"`
	DiscountAmount  float64 `json:"hargaDiskon"`
	DiscountPercent float64 `json:"persentaseDiskon"`
	BookingCount    int     `json:"jumlahBooking"`
	Image           string  `json:"gambarDestinasi"`
	Location        string  `json:"lokasiDestinasi"`
}

// EffectivePrice is the promo price after the discount amount is applied.
func (p TourPackage) EffectivePrice() float64 {
	v := p.OriginalPrice - p.DiscountAmount
	if v < 0 {
		return 0
	}
	return v
}
