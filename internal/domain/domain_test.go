package domain

import "testing"

func TestUserDataNormalize(t *testing.T) {
	u, ok := UserData{ID: 5, Name: "A", Email: "a@x.com"}.Normalize()
	if !ok {
		t.Fatal("expected complete identity to be usable")
	}
	if u.ID != 5 || u.Name != "A" || u.Email != "a@x.com" {
		t.Fatalf("unexpected normalized identity: %+v", u)
	}
}

func TestUserDataNormalizeFillsDefaults(t *testing.T) {
	u, ok := UserData{ID: 2}.Normalize()
	if !ok {
		t.Fatal("expected identity with id to be usable")
	}
	if u.Name != DefaultUserName {
		t.Fatalf("expected fallback name %q, got %q", DefaultUserName, u.Name)
	}
	if u.Email != "" {
		t.Fatalf("expected empty email fallback, got %q", u.Email)
	}
}

func TestUserDataNormalizeRejectsMissingID(t *testing.T) {
	if _, ok := (UserData{Name: "A", Email: "a@x.com"}).Normalize(); ok {
		t.Fatal("expected identity without id to be unusable")
	}
	if _, ok := (UserData{ID: -3}).Normalize(); ok {
		t.Fatal("expected negative id to be unusable")
	}
}

func TestDestinationEffectivePrice(t *testing.T) {
	d := Destination{Price: 1000, DiscountAmount: 200}
	if got := d.EffectivePrice(); got != 800 {
		t.Fatalf("expected 800, got %v", got)
	}
}

func TestDestinationEffectivePriceNeverNegative(t *testing.T) {
	d := Destination{Price: 100, DiscountAmount: 500}
	if got := d.EffectivePrice(); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestTourPackageEffectivePrice(t *testing.T) {
	p := TourPackage{OriginalPrice: 2_000_000, DiscountAmount: 500_000}
	if got := p.EffectivePrice(); got != 1_500_000 {
		t.Fatalf("expected 1500000, got %v", got)
	}
}

func TestReceiptTotalDue(t *testing.T) {
	r := Receipt{OriginalPrice: 1000, DiscountAmt: 100, TotalPersons: 3}
	if got := r.TotalDue(); got != 2700 {
		t.Fatalf("expected 2700, got %v", got)
	}
}

func TestReceiptTotalDuePrefersServerTotal(t *testing.T) {
	r := Receipt{OriginalPrice: 1000, DiscountAmt: 100, TotalPersons: 3, TotalPrice: 2500}
	if got := r.TotalDue(); got != 2500 {
		t.Fatalf("expected server total 2500, got %v", got)
	}
}

func TestReceiptTotalDueDefaultsToOnePerson(t *testing.T) {
	r := Receipt{OriginalPrice: 1000, DiscountAmt: 0}
	if got := r.TotalDue(); got != 1000 {
		t.Fatalf("expected 1000, got %v", got)
	}
}
