package events

import (
	"time"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventServiceCreated EventType = "service_created"
	EventServiceUpdated EventType = "service_updated"
	EventServiceDeleted EventType = "service_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	SubjectID string      `json:"subject_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Username  string      `json:"username,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	StoreID   string      `json:"store_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LoginPayload payload for login events. Failed logins carry only the
// attempted username; nothing about why the attempt failed is recorded.
type LoginPayload struct {
	Username string `json:"username"`
}

// ServicePayload payload for service record events.
type ServicePayload struct {
	ServiceID   string  `json:"service_id"`
	MachineCode string  `json:"machine_code"`
	Cost        float64 `json:"cost,omitempty"`
	Status      string  `json:"status,omitempty"`
}
