package request

import (
	"time"
)

// Statuses form a one-way machine: pending is the only state a request
// can leave, approved and rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	CategoryLeave     = "Leave"
	CategoryEquipment = "Equipment"
	CategoryOvertime  = "Overtime"
)

// Participant identifies one side of a request by email. The requestor
// side also snapshots the display name at creation time; no join back to
// the credential store happens at read time.
type Participant struct {
	Email string `json:"email" gorm:"index"`
	Name  string `json:"name,omitempty"`
}

type Request struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description"`
	Category    string      `json:"type" gorm:"column:category;not null"`
	Urgency     string      `json:"urgency"`
	Requestor   Participant `json:"requestor" gorm:"embedded;embeddedPrefix:requestor_"`
	Superior    Participant `json:"superior" gorm:"embedded;embeddedPrefix:superior_"`
	Status      string      `json:"status" gorm:"default:pending"`
	CreatedAt   time.Time   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time   `json:"updated_at" gorm:"column:updated_at"`
}

func (Request) TableName() string {
	return "requests"
}

func (r *Request) CanBeDecided() bool {
	return r.Status == StatusPending
}

// IsParticipant reports whether the given email may see this request.
func (r *Request) IsParticipant(email string) bool {
	return r.Requestor.Email == email || r.Superior.Email == email
}

func IsValidCategory(category string) bool {
	switch category {
	case CategoryLeave, CategoryEquipment, CategoryOvertime:
		return true
	}
	return false
}

func IsDecisionStatus(status string) bool {
	return status == StatusApproved || status == StatusRejected
}
