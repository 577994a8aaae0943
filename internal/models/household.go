package models

import "time"

// Household is the recipient unit an enrollment is made for. Only the fields
// the scheduling flow needs are modeled here; intake data lives elsewhere.
type Household struct {
	ID                  string    `db:"id" json:"id"`
	ReferenceCode       string    `db:"reference_code" json:"reference_code"`
	Name                string    `db:"name" json:"name"`
	Phone               string    `db:"phone" json:"phone,omitempty"`
	OutsideHoursParcels int       `db:"outside_hours_parcels" json:"outside_hours_parcels"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
