package attendance

import (
	"context"

	"github.com/izdlan/AttendanceSMC/internal/student"
)

// Row is one line of a report, directly serializable to JSON or CSV.
// Absent students carry status "absent" and no time.
type Row struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Form      int    `json:"form"`
	Class     string `json:"class"`
	TimeIn    string `json:"timeIn,omitempty"`
	Status    string `json:"status"`
}

const statusAbsent = "absent"

type Stats struct {
	TotalStudents int    `json:"totalStudents"`
	PresentToday  int    `json:"presentToday"`
	LateToday     int    `json:"lateToday"`
	AbsentToday   int    `json:"absentToday"`
	WindowClosed  bool   `json:"windowClosed"`
	Date          string `json:"date"`
}

// AttendanceForDate left-joins the filtered roster against the day's ledger.
// Ordering follows the roster (by name), so every view sorts the same way.
func (s *service) AttendanceForDate(ctx context.Context, date string, filter student.Filter) ([]Row, error) {
	roster, records, err := s.fetch(ctx, date, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(roster))
	for _, st := range roster {
		row := Row{
			StudentID: st.StudentID,
			Name:      st.Name,
			Form:      st.Form,
			Class:     st.Class,
			Status:    statusAbsent,
		}
		if rec, ok := records[st.StudentID]; ok {
			row.TimeIn = rec.TimeIn
			row.Status = string(rec.Status)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AbsentForDate returns roster students with no record for the date. For the
// current date it returns an empty list while the check-in window is still
// open: a partial absence list would be misleading.
func (s *service) AbsentForDate(ctx context.Context, date string, filter student.Filter) ([]Row, error) {
	if s.windowStillOpen(date) {
		return []Row{}, nil
	}

	roster, records, err := s.fetch(ctx, date, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	for _, st := range roster {
		if _, ok := records[st.StudentID]; ok {
			continue
		}
		rows = append(rows, Row{
			StudentID: st.StudentID,
			Name:      st.Name,
			Form:      st.Form,
			Class:     st.Class,
			Status:    statusAbsent,
		})
	}
	return rows, nil
}

// LateForDate returns roster students whose record for the date is late.
func (s *service) LateForDate(ctx context.Context, date string, filter student.Filter) ([]Row, error) {
	roster, records, err := s.fetch(ctx, date, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	for _, st := range roster {
		rec, ok := records[st.StudentID]
		if !ok || rec.Status != StatusLate {
			continue
		}
		rows = append(rows, Row{
			StudentID: st.StudentID,
			Name:      st.Name,
			Form:      st.Form,
			Class:     st.Class,
			TimeIn:    rec.TimeIn,
			Status:    string(rec.Status),
		})
	}
	return rows, nil
}

// Stats summarizes today for the dashboard. The absent count stays zero
// until the window closes, consistent with AbsentForDate.
func (s *service) Stats(ctx context.Context) (Stats, error) {
	now := s.clock().In(s.loc)
	date := now.Format(DateLayout)

	roster, records, err := s.fetch(ctx, date, student.Filter{})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalStudents: len(roster),
		WindowClosed:  s.window.Closed(MinuteOf(now)),
		Date:          date,
	}
	for _, rec := range records {
		switch rec.Status {
		case StatusLate:
			stats.LateToday++
		default:
			stats.PresentToday++
		}
	}
	if stats.WindowClosed {
		stats.AbsentToday = stats.TotalStudents - len(records)
	}
	return stats, nil
}

// fetch reads the filtered roster and the day's records keyed by student.
// Records of students outside the filter are simply never looked up.
func (s *service) fetch(ctx context.Context, date string, filter student.Filter) ([]student.Student, map[string]Record, error) {
	roster, err := s.roster.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.repo.ListForDate(ctx, date)
	if err != nil {
		return nil, nil, err
	}

	byStudent := make(map[string]Record, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec
	}
	return roster, byStudent, nil
}

func (s *service) windowStillOpen(date string) bool {
	now := s.clock().In(s.loc)
	return date == now.Format(DateLayout) && !s.window.Closed(MinuteOf(now))
}
