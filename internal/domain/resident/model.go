package resident

import (
	"time"

	"github.com/google/uuid"
)

// Levels of care recognized by the facility.
const (
	LevelSupervisory = "Supervisory Care"
	LevelPersonal    = "Personal Care"
	LevelDirected    = "Directed Care"
)

// ValidLevelsOfCare lists the accepted level_of_care values in display order.
var ValidLevelsOfCare = []string{LevelSupervisory, LevelPersonal, LevelDirected}

// Resident maps to the residents table.
type Resident struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	LevelOfCare string    `db:"level_of_care" json:"level_of_care"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateRequest is the transport payload for creating or updating a resident.
// The date of birth travels as a YYYY-MM-DD string.
type CreateRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
	LevelOfCare string `json:"level_of_care"`
}
