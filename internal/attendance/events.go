package attendance

// CheckInEvent is published to the message broker for every accepted scan so
// downstream consumers (dashboards, exporters) can follow the day live.
type CheckInEvent struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Form      int    `json:"form"`
	Class     string `json:"class"`
	Date      string `json:"date"`
	TimeIn    string `json:"timeIn"`
	Status    Status `json:"status"`
}

// EventPublisher is implemented by the NATS producer. A nil publisher
// disables event publishing without changing scan behavior.
type EventPublisher interface {
	PublishCheckIn(event CheckInEvent) error
}
