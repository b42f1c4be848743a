package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry maps to the append-only audit_logs table.
type Entry struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Username string    `db:"username" json:"username"`
	Activity string    `db:"activity" json:"activity"`
	Details  string    `db:"details" json:"details"`
	LogTime  time.Time `db:"log_time" json:"log_time"`
}
