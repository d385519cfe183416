package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("amount must be a finite number greater than zero")

// Payload is the type-specific body of a request. Exactly one variant exists per RequestType.
type Payload interface {
	Kind() RequestType
}

type LeavePayload struct {
	LeaveType string `json:"leaveType" validate:"required"`
	FromDate  string `json:"fromDate" validate:"required"`
	ToDate    string `json:"toDate" validate:"required"`
	Days      int    `json:"days,omitempty" validate:"gte=0"`
	Reason    string `json:"reason" validate:"required"`
}

// TAPayload is a travel-allowance claim.
type TAPayload struct {
	Amount       Amount `json:"amount" validate:"required"`
	Description  string `json:"description,omitempty"`
	ClaimType    string `json:"claimType,omitempty"`
	BillFileName string `json:"billFileName,omitempty"`
	TravelDate   string `json:"travelDate,omitempty"`
	FromLocation string `json:"fromLocation,omitempty"`
	ToLocation   string `json:"toLocation,omitempty"`
}

type ProposalPayload struct {
	ProjectTitle  string `json:"projectTitle,omitempty"`
	ProjectAmount Amount `json:"projectAmount" validate:"required"`
	ClientName    string `json:"clientName,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Description   string `json:"description,omitempty"`
}

type ReportPayload struct {
	ReportTitle string `json:"reportTitle" validate:"required"`
	Period      string `json:"period,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

type RecruitmentPayload struct {
	Position      string `json:"position" validate:"required"`
	Department    string `json:"department,omitempty"`
	Openings      int    `json:"openings,omitempty" validate:"gte=0"`
	Justification string `json:"justification,omitempty"`
}

type CertificatePayload struct {
	CertificateType string `json:"certificateType" validate:"required"`
	Purpose         string `json:"purpose,omitempty"`
	AddressedTo     string `json:"addressedTo,omitempty"`
}

func (LeavePayload) Kind() RequestType       { return RequestTypeLeave }
func (TAPayload) Kind() RequestType          { return RequestTypeTA }
func (ProposalPayload) Kind() RequestType    { return RequestTypeProposal }
func (ReportPayload) Kind() RequestType      { return RequestTypeReport }
func (RecruitmentPayload) Kind() RequestType { return RequestTypeRecruitment }
func (CertificatePayload) Kind() RequestType { return RequestTypeCertificate }

// DecodePayload unmarshals data into the variant selected by t.
func DecodePayload(t RequestType, data []byte) (Payload, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("payload is required for %q requests", t)
	}

	var (
		p   Payload
		err error
	)
	switch t {
	case RequestTypeLeave:
		var v LeavePayload
		err = json.Unmarshal(data, &v)
		p = v
	case RequestTypeTA:
		var v TAPayload
		err = json.Unmarshal(data, &v)
		p = v
	case RequestTypeProposal:
		var v ProposalPayload
		err = json.Unmarshal(data, &v)
		p = v
	case RequestTypeReport:
		var v ReportPayload
		err = json.Unmarshal(data, &v)
		p = v
	case RequestTypeRecruitment:
		var v RecruitmentPayload
		err = json.Unmarshal(data, &v)
		p = v
	case RequestTypeCertificate:
		var v CertificatePayload
		err = json.Unmarshal(data, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown request type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", t, err)
	}
	return p, nil
}

// Amount holds a monetary value exactly as submitted. Forms send either a JSON number
// or a numeric string, so the raw text is kept and parsed when the value is needed.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	switch {
	case bytes.Equal(raw, []byte("null")):
		*a = ""
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
	case len(raw) > 0 && (raw[0] == '{' || raw[0] == '['):
		return fmt.Errorf("amount must be a number or numeric string")
	default:
		*a = Amount(raw)
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	s := string(a)
	if json.Valid([]byte(s)) && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Positive parses the amount and requires it to be greater than zero.
func (a Amount) Positive() (decimal.Decimal, error) {
	if a == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(string(a))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
