package model

// Address is a mailing address value object embedded into transactions and
// orders as billing/shipping.
type Address struct {
	FirstName  string `gorm:"size:64" json:"firstName"`
	LastName   string `gorm:"size:64" json:"lastName"`
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2,omitempty"`
	City       string `gorm:"size:128" json:"city"`
	State      string `gorm:"size:128" json:"state"`
	PostalCode string `gorm:"size:32" json:"postalCode"`
	Country    string `gorm:"size:2" json:"country"`
}

func (a *Address) IsZero() bool {
	return a == nil || (a.Line1 == "" && a.City == "" && a.PostalCode == "")
}

// FullName joins first and last name, falling back to the given value when
// both are empty.
func (a *Address) FullName(fallback string) string {
	switch {
	case a == nil:
		return fallback
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	case a.LastName != "":
		return a.LastName
	}
	return fallback
}
