package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RequestType identifies the form a request was submitted through. Immutable after creation.
type RequestType string

const (
	RequestTypeLeave       RequestType = "leave"
	RequestTypeTA          RequestType = "ta" // travel allowance claim
	RequestTypeProposal    RequestType = "proposal"
	RequestTypeReport      RequestType = "report"
	RequestTypeRecruitment RequestType = "recruitment"
	RequestTypeCertificate RequestType = "certificate"
)

// Valid reports whether t is one of the known request types.
func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeLeave, RequestTypeTA, RequestTypeProposal,
		RequestTypeReport, RequestTypeRecruitment, RequestTypeCertificate:
		return true
	}
	return false
}

// Monetary request types post to the company ledger on approval instead of
// going through the signature hop.
func (t RequestType) Monetary() bool {
	return t == RequestTypeTA || t == RequestTypeProposal
}

// RequestStatus enum
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusForwarded RequestStatus = "forwarded"
	StatusSigned    RequestStatus = "signed"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusForwarded, StatusSigned:
		return true
	}
	return false
}

// Terminal statuses accept no further actions.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusSigned
}

// Target is the role currently responsible for acting on a request.
type Target string

const (
	TargetAdmin   Target = "admin"
	TargetFounder Target = "founder"
	// TargetAll is a query value only; it is never stored on a request.
	TargetAll Target = "all"
)

// SignatureStatus tracks the forwarded-signature sub-flow.
type SignatureStatus string

const (
	SignaturePending  SignatureStatus = "pending"
	SignatureSigned   SignatureStatus = "signed"
	SignatureRejected SignatureStatus = "rejected"
)

// UploadedFile is an attachment kept verbatim alongside the request. The content is never parsed.
type UploadedFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"` // base64
}

// Request is a unit of work submitted by an employee and tracked through the approval workflow.
type Request struct {
	ID                   string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Type                 RequestType     `gorm:"type:varchar(20);not null;index" json:"type"`
	Title                string          `gorm:"type:varchar(255);not null" json:"title"`
	CreatedBy            string          `gorm:"type:varchar(255);not null" json:"createdBy"`
	CreatedByID          string          `gorm:"type:varchar(64);not null;index" json:"createdById"`
	CreatedByRole        string          `gorm:"type:varchar(30);not null" json:"createdByRole"`
	CreatedByDesignation string          `gorm:"type:varchar(100)" json:"createdByDesignation"`
	Payload              Payload         `gorm:"-" json:"payload"`
	PayloadData          string          `gorm:"column:payload;type:jsonb;not null" json:"-"` // serialized Payload
	Target               Target          `gorm:"type:varchar(20);not null;index" json:"target"`
	Status               RequestStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ForwardedTo          string          `gorm:"type:varchar(50)" json:"forwardedTo,omitempty"`
	SignatureFrom        Signer          `gorm:"type:varchar(50)" json:"signatureFrom"`
	SignatureStatus      SignatureStatus `gorm:"type:varchar(20)" json:"signatureStatus,omitempty"`
	UploadedFile         *UploadedFile   `gorm:"type:jsonb;serializer:json" json:"uploadedFile,omitempty"`
	CreatedAt            time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// BeforeSave serializes the typed payload into its jsonb column.
func (r *Request) BeforeSave(tx *gorm.DB) error {
	if r.Payload == nil {
		return fmt.Errorf("request %s has no payload", r.ID)
	}
	data, err := json.Marshal(r.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	r.PayloadData = string(data)
	return nil
}

// AfterFind restores the typed payload variant selected by the request type.
func (r *Request) AfterFind(tx *gorm.DB) error {
	payload, err := DecodePayload(r.Type, []byte(r.PayloadData))
	if err != nil {
		return err
	}
	r.Payload = payload
	return nil
}

// UnmarshalJSON decodes the payload into the variant selected by the request type.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	aux := struct {
		*plain
		Payload json.RawMessage `json:"payload"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Payload) == 0 || string(aux.Payload) == "null" {
		r.Payload = nil
		return nil
	}
	payload, err := DecodePayload(r.Type, aux.Payload)
	if err != nil {
		return err
	}
	r.Payload = payload
	return nil
}

// StatusChange carries the fields merged into a request alongside a status transition.
// Nil fields are left untouched.
type StatusChange struct {
	Status          RequestStatus
	Target          *Target
	ForwardedTo     *string
	SignatureStatus *SignatureStatus
}

// Apply merges the change into r and stamps UpdatedAt.
func (c StatusChange) Apply(r *Request, now time.Time) {
	r.Status = c.Status
	if c.Target != nil {
		r.Target = *c.Target
	}
	if c.ForwardedTo != nil {
		r.ForwardedTo = *c.ForwardedTo
	}
	if c.SignatureStatus != nil {
		r.SignatureStatus = *c.SignatureStatus
	}
	r.UpdatedAt = now
}

// RequestFilter narrows request listings. Zero values mean "any".
type RequestFilter struct {
	Target      Target
	Status      RequestStatus
	Type        RequestType
	CreatedByID string
	Page        int
	Limit       int
}
