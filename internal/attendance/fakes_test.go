package attendance_test

import (
	"context"
	"sort"
	"sync"

	"github.com/izdlan/AttendanceSMC/internal/attendance"
	"github.com/izdlan/AttendanceSMC/internal/student"
)

// In-memory doubles for the ledger and roster so the engine and reports can
// be exercised without a database.

type fakeLedger struct {
	mu      sync.Mutex
	nextID  int
	records map[string]attendance.Record // keyed studentID|date
	failure error                        // injected storage failure
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]attendance.Record)}
}

func ledgerKey(studentID, date string) string {
	return studentID + "|" + date
}

func (f *fakeLedger) TryRecord(_ context.Context, rec *attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failure != nil {
		return f.failure
	}

	key := ledgerKey(rec.StudentID, rec.Date)
	if _, ok := f.records[key]; ok {
		return attendance.ErrAlreadyRecorded
	}
	f.nextID++
	rec.ID = f.nextID
	f.records[key] = *rec
	return nil
}

func (f *fakeLedger) Find(_ context.Context, studentID, date string) (*attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[ledgerKey(studentID, date)]
	if !ok {
		return nil, attendance.ErrNoRecord
	}
	return &rec, nil
}

func (f *fakeLedger) ListForDate(_ context.Context, date string) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var recs []attendance.Record
	for _, rec := range f.records {
		if rec.Date == date {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].TimeIn < recs[j].TimeIn })
	return recs, nil
}

func (f *fakeLedger) CountByStudent(_ context.Context, studentID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, rec := range f.records {
		if rec.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLedger) DeleteByStudent(_ context.Context, studentID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	deleted := 0
	for key, rec := range f.records {
		if rec.StudentID == studentID {
			delete(f.records, key)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeLedger) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeRoster struct {
	students []student.Student
}

func (f *fakeRoster) GetByBarcode(_ context.Context, barcode string) (*student.Student, error) {
	for i := range f.students {
		if f.students[i].Barcode == barcode {
			st := f.students[i]
			return &st, nil
		}
	}
	return nil, student.ErrStudentNotFound
}

func (f *fakeRoster) List(_ context.Context, filter student.Filter) ([]student.Student, error) {
	var out []student.Student
	for _, st := range f.students {
		if filter.Form != 0 && st.Form != filter.Form {
			continue
		}
		if filter.Class != "" && st.Class != filter.Class {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []attendance.CheckInEvent
}

func (f *fakePublisher) PublishCheckIn(event attendance.CheckInEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
