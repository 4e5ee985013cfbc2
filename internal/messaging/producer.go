package messaging

import (
	"encoding/json"
	"log/slog"

	"github.com/izdlan/AttendanceSMC/internal/attendance"

	"github.com/nats-io/nats.go"
)

type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewProducer(url string, subject string, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *Producer) PublishCheckIn(event attendance.CheckInEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal check-in event", "error", err)
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Error("failed to publish check-in event", "error", err)
		return err
	}

	p.logger.Info("check-in event published", "subject", p.subject, "student_id", event.StudentID)
	return nil
}

func (p *Producer) Close() error {
	p.conn.Close()
	return nil
}
