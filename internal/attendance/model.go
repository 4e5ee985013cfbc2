package attendance

import (
	"time"

	"github.com/uptrace/bun"
)

// Status of an accepted check-in. Absence is never stored: it is derived
// from the lack of a record after the window closes.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
)

const (
	// DateLayout is the calendar-date key of the ledger.
	DateLayout = "2006-01-02"
	// TimeLayout is the stored time-of-day of a check-in.
	TimeLayout = "15:04:05"
)

// Record is one accepted check-in. The composite unique constraint on
// (student_id, date) is the invariant: at most one record per student per
// day, enforced by the database even under concurrent scans.
type Record struct {
	bun.BaseModel `bun:"table:attendance_records,alias:a"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	StudentID string    `bun:"student_id,notnull,unique:uq_attendance_student_date" json:"studentId"`
	Date      string    `bun:"date,notnull,unique:uq_attendance_student_date" json:"date"`
	TimeIn    string    `bun:"time_in,notnull" json:"timeIn"`
	Status    Status    `bun:"status,notnull" json:"status"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}
