package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestCreated = "request.created"
	EventTypeRequestDecided = "request.decided"
)

type RequestCreatedEvent struct {
	BaseEvent
	RequestID      string `json:"request_id"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	RequestorEmail string `json:"requestor_email"`
	RequestorName  string `json:"requestor_name"`
	SuperiorEmail  string `json:"superior_email"`
}

func NewRequestCreatedEvent(requestID, title, category, requestorEmail, requestorName, superiorEmail string) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":      requestID,
				"title":           title,
				"category":        category,
				"requestor_email": requestorEmail,
				"superior_email":  superiorEmail,
			},
		},
		RequestID:      requestID,
		Title:          title,
		Category:       category,
		RequestorEmail: requestorEmail,
		RequestorName:  requestorName,
		SuperiorEmail:  superiorEmail,
	}
}

type RequestDecidedEvent struct {
	BaseEvent
	RequestID      string `json:"request_id"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	RequestorEmail string `json:"requestor_email"`
	SuperiorEmail  string `json:"superior_email"`
}

func NewRequestDecidedEvent(requestID, title, status, requestorEmail, superiorEmail string) *RequestDecidedEvent {
	return &RequestDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":      requestID,
				"title":           title,
				"status":          status,
				"requestor_email": requestorEmail,
				"superior_email":  superiorEmail,
			},
		},
		RequestID:      requestID,
		Title:          title,
		Status:         status,
		RequestorEmail: requestorEmail,
		SuperiorEmail:  superiorEmail,
	}
}
