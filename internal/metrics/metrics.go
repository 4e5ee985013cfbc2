package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	scansAccepted    metric.Int64Counter
	scansRejected    metric.Int64Counter
	studentsEnrolled metric.Int64Counter
	reportsViewed    metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.scansAccepted, err = meter.Int64Counter(
		"attendance_service.scans.accepted",
		metric.WithDescription("Total number of scans that produced an attendance record"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, err
	}

	m.scansRejected, err = meter.Int64Counter(
		"attendance_service.scans.rejected",
		metric.WithDescription("Total number of scans rejected (unknown barcode, window, duplicate)"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsEnrolled, err = meter.Int64Counter(
		"attendance_service.students.enrolled",
		metric.WithDescription("Total number of students enrolled"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.reportsViewed, err = meter.Int64Counter(
		"attendance_service.reports.viewed",
		metric.WithDescription("Total number of times an attendance report was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordScanAccepted(ctx context.Context) {
	if m != nil && m.scansAccepted != nil {
		m.scansAccepted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordScanRejected(ctx context.Context) {
	if m != nil && m.scansRejected != nil {
		m.scansRejected.Add(ctx, 1)
	}
}

func (m *Metrics) RecordStudentEnrolled(ctx context.Context) {
	if m != nil && m.studentsEnrolled != nil {
		m.studentsEnrolled.Add(ctx, 1)
	}
}

func (m *Metrics) RecordReportViewed(ctx context.Context) {
	if m != nil && m.reportsViewed != nil {
		m.reportsViewed.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
