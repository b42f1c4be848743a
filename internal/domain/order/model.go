package order

import (
	"time"

	"github.com/google/uuid"
)

// Order maps to the non_medication_orders table. Exactly one of Frequency
// (every N days) or SpecificDays (comma-separated weekday names) is set.
type Order struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	ResidentID           uuid.UUID  `db:"resident_id" json:"resident_id"`
	OrderName            string     `db:"order_name" json:"order_name"`
	Frequency            *int       `db:"frequency" json:"frequency,omitempty"`
	SpecificDays         *string    `db:"specific_days" json:"specific_days,omitempty"`
	SpecialInstructions  string     `db:"special_instructions" json:"special_instructions"`
	DiscontinuedDate     *time.Time `db:"discontinued_date" json:"discontinued_date,omitempty"`
	LastAdministeredDate *time.Time `db:"last_administered_date" json:"last_administered_date,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// Administration maps to the append-only non_med_order_administrations table.
type Administration struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	OrderID            uuid.UUID `db:"order_id" json:"order_id"`
	ResidentID         uuid.UUID `db:"resident_id" json:"resident_id"`
	AdministrationDate time.Time `db:"administration_date" json:"administration_date"`
	Notes              string    `db:"notes" json:"notes"`
	Initials           string    `db:"initials" json:"initials"`
}

// CreateRequest is the transport payload for creating an order.
type CreateRequest struct {
	ResidentID          uuid.UUID `json:"resident_id"`
	OrderName           string    `json:"order_name"`
	Frequency           *int      `json:"frequency,omitempty"`
	SpecificDays        string    `json:"specific_days,omitempty"`
	SpecialInstructions string    `json:"special_instructions"`
}

// UpdateRequest carries editable order fields. Empty strings and nil values
// leave the stored values unchanged.
type UpdateRequest struct {
	OrderName           string `json:"order_name"`
	Frequency           *int   `json:"frequency,omitempty"`
	SpecificDays        string `json:"specific_days,omitempty"`
	SpecialInstructions string `json:"special_instructions"`
}

// PerformRequest records that an order was carried out.
type PerformRequest struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Notes    string `json:"notes"`
	Initials string `json:"initials"`
}

// DiscontinueRequest sets the discontinuation date for an order.
type DiscontinueRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}
