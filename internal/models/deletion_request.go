package models

import "time"

type DeletionState string

const (
	DeletionPending  DeletionState = "Pending"
	DeletionApproved DeletionState = "Approved"
	DeletionRejected DeletionState = "Rejected"
)

// DeletionRequest is created when a staff user tries to remove a ledger row.
// The row itself stays in its source table until an admin resolves the
// request; Snapshot keeps the full row as JSON so the approval screen can
// show exactly what would be lost.
type DeletionRequest struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	RequestedByID uint          `gorm:"not null" json:"requested_by_id"`
	RequestedBy   string        `gorm:"size:100" json:"requested_by"`
	EntityType    string        `gorm:"size:50;index;not null" json:"entity_type"`
	EntityID      uint          `gorm:"index;not null" json:"entity_id"`
	Snapshot      string        `gorm:"type:jsonb" json:"snapshot"`
	State         DeletionState `gorm:"size:20;not null;default:'Pending'" json:"state"`
	ResolvedByID  *uint         `json:"resolved_by_id"`
	ResolvedBy    string        `gorm:"size:100" json:"resolved_by"`
	ResolvedAt    *time.Time    `json:"resolved_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
