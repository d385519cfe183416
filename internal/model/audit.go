package model

import (
	"time"
)

const (
	ActionSubmitRequest   = "SUBMIT_REQUEST"
	ActionApproveRequest  = "APPROVE_REQUEST"
	ActionRejectRequest   = "REJECT_REQUEST"
	ActionSignRequest     = "SIGN_REQUEST"
	ActionForwardRequest  = "FORWARD_REQUEST"
	ActionPostTransaction = "POST_LEDGER_TRANSACTION"
)

// AuditLog tracks Who, What, and When for every workflow and ledger change
type AuditLog struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(64);index" json:"userId"` // empty for system actions
	UserRole   string    `gorm:"type:varchar(30)" json:"userRole,omitempty"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entityId"`
	EntityName string    `gorm:"type:varchar(255)" json:"entityName,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}
