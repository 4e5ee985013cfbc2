package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/izdlan/AttendanceSMC/internal/student"
)

// Roster is the slice of the student repository the engine reads:
// barcode resolution for scans, filtered listing for reports.
type Roster interface {
	GetByBarcode(ctx context.Context, barcode string) (*student.Student, error)
	List(ctx context.Context, filter student.Filter) ([]student.Student, error)
}

// OutcomeKind identifies how a scan resolved. Every kind except accepted is
// an expected, reportable rejection; kiosks show them as warnings.
type OutcomeKind string

const (
	OutcomeAccepted         OutcomeKind = "accepted"
	OutcomeNotFound         OutcomeKind = "not_found"
	OutcomeEarlyWindow      OutcomeKind = "early_window"
	OutcomeWindowClosed     OutcomeKind = "window_closed"
	OutcomeDuplicateCheckIn OutcomeKind = "duplicate_checkin"
)

// ScanOutcome is the result of resolving one barcode scan. Message is
// user-facing: kiosk operators are non-technical.
type ScanOutcome struct {
	Kind    OutcomeKind      `json:"kind"`
	Student *student.Student `json:"student,omitempty"`
	Status  Status           `json:"status,omitempty"`
	TimeIn  string           `json:"timeIn,omitempty"`
	Message string           `json:"message"`
}

type Service interface {
	ResolveScan(ctx context.Context, barcode string, observedAt time.Time) (ScanOutcome, error)
	AttendanceForDate(ctx context.Context, date string, filter student.Filter) ([]Row, error)
	AbsentForDate(ctx context.Context, date string, filter student.Filter) ([]Row, error)
	LateForDate(ctx context.Context, date string, filter student.Filter) ([]Row, error)
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	repo   Repository
	roster Roster
	window Window
	loc    *time.Location
	clock  func() time.Time
	events EventPublisher
	logger *slog.Logger
}

// NewService builds the scan resolution engine and reporting aggregator.
// clock supplies "now" for report gating and for scans that carry no
// observed time; events may be nil.
func NewService(repo Repository, roster Roster, window Window, loc *time.Location, clock func() time.Time, events EventPublisher, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		roster: roster,
		window: window,
		loc:    loc,
		clock:  clock,
		events: events,
		logger: logger,
	}
}

// ResolveScan is the single path that creates attendance records. Callers
// must branch on the outcome kind; the error return is reserved for storage
// failures.
func (s *service) ResolveScan(ctx context.Context, barcode string, observedAt time.Time) (ScanOutcome, error) {
	if barcode == "" {
		return ScanOutcome{}, student.ErrInvalidInput
	}

	st, err := s.roster.GetByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			return ScanOutcome{
				Kind:    OutcomeNotFound,
				Message: "No student matches this barcode.",
			}, nil
		}
		return ScanOutcome{}, err
	}

	// Kiosks may report their own scan time to tolerate clock skew; a zero
	// value means "trust the server clock".
	if observedAt.IsZero() {
		observedAt = s.clock()
	}
	observedAt = observedAt.In(s.loc)
	date := observedAt.Format(DateLayout)
	minute := MinuteOf(observedAt)

	switch s.window.Classify(minute) {
	case TooEarly:
		return ScanOutcome{
			Kind:    OutcomeEarlyWindow,
			Student: st,
			Message: fmt.Sprintf("Check-in has not opened yet. Please come back in %d minutes.", s.window.MinutesUntilOpen(minute)),
		}, nil
	case TooLate:
		// No record is written: absence is derived from the missing record
		// once the window has closed, never stored.
		return ScanOutcome{
			Kind:    OutcomeWindowClosed,
			Student: st,
			Message: fmt.Sprintf("Check-in closed at %s. %s will be reported absent for %s.", clockString(s.window.Latest), st.Name, date),
		}, nil
	}

	status := StatusPresent
	if s.window.Classify(minute) == Late {
		status = StatusLate
	}

	rec := &Record{
		StudentID: st.StudentID,
		Date:      date,
		TimeIn:    observedAt.Format(TimeLayout),
		Status:    status,
	}
	if err := s.repo.TryRecord(ctx, rec); err != nil {
		if errors.Is(err, ErrAlreadyRecorded) {
			return s.duplicateOutcome(ctx, st, date), nil
		}
		return ScanOutcome{}, err
	}

	s.logger.InfoContext(ctx, "check-in recorded",
		"student_id", st.StudentID, "date", date, "time_in", rec.TimeIn, "status", status)
	s.publish(st, rec)

	verb := "checked in"
	if status == StatusLate {
		verb = "checked in late"
	}
	return ScanOutcome{
		Kind:    OutcomeAccepted,
		Student: st,
		Status:  status,
		TimeIn:  rec.TimeIn,
		Message: fmt.Sprintf("%s %s at %s.", st.Name, verb, rec.TimeIn),
	}, nil
}

func (s *service) duplicateOutcome(ctx context.Context, st *student.Student, date string) ScanOutcome {
	out := ScanOutcome{
		Kind:    OutcomeDuplicateCheckIn,
		Student: st,
		Message: fmt.Sprintf("%s already checked in today.", st.Name),
	}
	// Best effort: include the first check-in time in the warning.
	if existing, err := s.repo.Find(ctx, st.StudentID, date); err == nil {
		out.Status = existing.Status
		out.TimeIn = existing.TimeIn
		out.Message = fmt.Sprintf("%s already checked in today at %s.", st.Name, existing.TimeIn)
	}
	return out
}

func (s *service) publish(st *student.Student, rec *Record) {
	if s.events == nil {
		return
	}
	event := CheckInEvent{
		StudentID: st.StudentID,
		Name:      st.Name,
		Form:      st.Form,
		Class:     st.Class,
		Date:      rec.Date,
		TimeIn:    rec.TimeIn,
		Status:    rec.Status,
	}
	if err := s.events.PublishCheckIn(event); err != nil {
		// Event publishing never blocks a check-in.
		s.logger.Warn("failed to publish check-in event", "error", err)
	}
}

func clockString(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
