package attendance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/izdlan/AttendanceSMC/internal/attendance"
	"github.com/izdlan/AttendanceSMC/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoster = []student.Student{
	{ID: 1, StudentID: "202601A001", Name: "Aisyah Rahman", Form: 1, Class: "Advance", Barcode: "SMK202601A001"},
	{ID: 2, StudentID: "202603C002", Name: "Chong Wei Lun", Form: 3, Class: "Creative", Barcode: "SMK202603C002"},
	{ID: 3, StudentID: "202603C003", Name: "Balan Kumar", Form: 3, Class: "Creative", Barcode: "SMK202603C003"},
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// at builds an instant on the test day from an HH:MM clock string.
func at(t *testing.T, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", "2026-03-02 "+clock)
	require.NoError(t, err)
	return ts
}

func newEngine(t *testing.T, ledger *fakeLedger, clock time.Time, events attendance.EventPublisher) attendance.Service {
	t.Helper()
	return attendance.NewService(
		ledger,
		&fakeRoster{students: testRoster},
		mustWindow(t),
		time.UTC,
		func() time.Time { return clock },
		events,
		testLogger(),
	)
}

func TestResolveScan(t *testing.T) {
	ctx := context.Background()

	t.Run("OnTimeScanFollowedByDuplicate", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newEngine(t, ledger, at(t, "07:00"), nil)

		out, err := svc.ResolveScan(ctx, "SMK202601A001", at(t, "07:00"))
		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomeAccepted, out.Kind)
		assert.Equal(t, attendance.StatusPresent, out.Status)
		assert.Equal(t, "07:00:00", out.TimeIn)
		require.NotNil(t, out.Student)
		assert.Equal(t, "Aisyah Rahman", out.Student.Name)
		assert.Equal(t, 1, ledger.size())

		// Second scan the same day is rejected and mutates nothing.
		out, err = svc.ResolveScan(ctx, "SMK202601A001", at(t, "08:00"))
		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomeDuplicateCheckIn, out.Kind)
		assert.Equal(t, "07:00:00", out.TimeIn, "first record wins")
		assert.Contains(t, out.Message, "already checked in")
		assert.Equal(t, 1, ledger.size())

		rec, err := ledger.Find(ctx, "202601A001", "2026-03-02")
		require.NoError(t, err)
		assert.Equal(t, "07:00:00", rec.TimeIn)
		assert.Equal(t, attendance.StatusPresent, rec.Status)
	})

	t.Run("TooEarlyScanWritesNothing", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newEngine(t, ledger, at(t, "04:30"), nil)

		out, err := svc.ResolveScan(ctx, "SMK202601A001", at(t, "04:30"))
		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomeEarlyWindow, out.Kind)
		assert.Contains(t, out.Message, "30 minutes")
		assert.Equal(t, 0, ledger.size())
	})

	t.Run("TooLateScanWritesNothingAndBecomesAbsence", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newEngine(t, ledger, at(t, "09:30"), nil)

		out, err := svc.ResolveScan(ctx, "SMK202601A001", at(t, "09:30"))
		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomeWindowClosed, out.Kind)
		assert.Contains(t, out.Message, "09:00")
		assert.Equal(t, 0, ledger.size())

		// Window has closed, so the rejected student shows up absent.
		absent, err := svc.AbsentForDate(ctx, "2026-03-02", student.Filter{})
		require.NoError(t, err)
		ids := make([]string, 0, len(absent))
		for _, row := range absent {
			ids = append(ids, row.StudentID)
		}
		assert.Contains(t, ids, "202601A001")
	})

	t.Run("LateScanAccepted", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newEngine(t, ledger, at(t, "08:00"), nil)

		out, err := svc.ResolveScan(ctx, "SMK202603C002", at(t, "08:00"))
		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomeAccepted, out.Kind)
		assert.Equal(t, attendance.StatusLate, out.Status)
		assert.Contains(t, out.Message, "late")

		late, err := svc.LateForDate(ctx, "2026-03-02", student.Filter{})
		require.NoError(t, err)
		require.Len(t, late, 1)
		assert.Equal(t, "202603C002", late[0].StudentID)

		// The same student must not show as absent in the full report.
		report, err := svc.AttendanceForDate(ctx, "2026-03-02", student.Filter{})
		require.NoError(t, err)
		for _, row := range report {
			if row.StudentID == "202603C002" {
				assert.Equal(t, "late", row.Status)
			}
		}
	})

	t.Run("UnknownBarcode", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newEngine(t, ledger, at(t, "07:00"), nil)

		out, err := svc.ResolveScan(ctx, "SMK999999X999", at(t, "07:00"))
		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomeNotFound, out.Kind)
		assert.Nil(t, out.Student)
		assert.Equal(t, 0, ledger.size())
	})

	t.Run("EmptyBarcodeIsInvalidInput", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newEngine(t, ledger, at(t, "07:00"), nil)

		_, err := svc.ResolveScan(ctx, "", at(t, "07:00"))
		assert.ErrorIs(t, err, student.ErrInvalidInput)
	})

	t.Run("ZeroObservedTimeUsesClock", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newEngine(t, ledger, at(t, "07:12"), nil)

		out, err := svc.ResolveScan(ctx, "SMK202601A001", time.Time{})
		require.NoError(t, err)
		assert.Equal(t, attendance.OutcomeAccepted, out.Kind)
		assert.Equal(t, "07:12:00", out.TimeIn)
	})

	t.Run("StorageFailurePropagates", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.failure = errors.New("connection refused")
		svc := newEngine(t, ledger, at(t, "07:00"), nil)

		_, err := svc.ResolveScan(ctx, "SMK202601A001", at(t, "07:00"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, attendance.ErrAlreadyRecorded)
	})

	t.Run("AcceptedScanPublishesEvent", func(t *testing.T) {
		ledger := newFakeLedger()
		pub := &fakePublisher{}
		svc := newEngine(t, ledger, at(t, "07:00"), pub)

		_, err := svc.ResolveScan(ctx, "SMK202601A001", at(t, "07:00"))
		require.NoError(t, err)
		require.Len(t, pub.events, 1)
		assert.Equal(t, "202601A001", pub.events[0].StudentID)
		assert.Equal(t, attendance.StatusPresent, pub.events[0].Status)

		// Rejections publish nothing.
		_, err = svc.ResolveScan(ctx, "SMK202601A001", at(t, "08:00"))
		require.NoError(t, err)
		assert.Len(t, pub.events, 1)
	})
}
