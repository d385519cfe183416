package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"portal/internal/logger"
	"portal/internal/model"
	"portal/internal/repository"

	"github.com/go-playground/validator/v10"
)

// MaxUploadedFileSize bounds the base64 content of an attachment.
const MaxUploadedFileSize = 5 << 20

// --- DTOs ---

type SubmitRequestDTO struct {
	Type         model.RequestType   `json:"type" binding:"required"`
	Title        string              `json:"title" binding:"required,max=255"`
	Target       model.Target        `json:"target"`
	Payload      json.RawMessage     `json:"payload" binding:"required"`
	UploadedFile *model.UploadedFile `json:"uploadedFile"`
}

// Creator is the authenticated submitter, taken from the token claims.
type Creator struct {
	ID          string
	Name        string
	Role        string
	Designation string
}

type RequestQuery struct {
	Target string
	Status string
	Type   string
	Page   int
	Limit  int
}

// --- Interface ---

type RequestService interface {
	Submit(ctx context.Context, creator Creator, dto SubmitRequestDTO) (*model.Request, error)
	// GetByTarget lists requests for a dashboard; target "all" or empty matches every request.
	GetByTarget(ctx context.Context, q RequestQuery) ([]model.Request, int64, error)
	ListMine(ctx context.Context, creatorID string, page, limit int) ([]model.Request, int64, error)
	GetByID(ctx context.Context, id string) (*model.Request, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    Notifier
	validate    *validator.Validate
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifierOrNop(notifier),
		validate:    newPayloadValidator(),
	}
}

// newPayloadValidator reports fields by their json names.
func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// --- Implementation ---

func (s *requestService) Submit(ctx context.Context, creator Creator, dto SubmitRequestDTO) (*model.Request, error) {
	if creator.ID == "" {
		return nil, newError(KindBadRequest, "creator identity is required")
	}
	if !dto.Type.Valid() {
		return nil, newError(KindBadRequest, "unknown request type %q", dto.Type)
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return nil, newError(KindBadRequest, "title is required")
	}

	target := dto.Target
	switch target {
	case "":
		target = model.TargetAdmin
	case model.TargetAdmin, model.TargetFounder:
	default:
		return nil, newError(KindBadRequest, "target must be admin or founder")
	}

	payload, err := model.DecodePayload(dto.Type, dto.Payload)
	if err != nil {
		return nil, &Error{Kind: KindBadRequest, Message: "invalid payload", Err: err}
	}
	if err := s.validatePayload(payload); err != nil {
		return nil, err
	}
	if err := validateUploadedFile(dto.UploadedFile); err != nil {
		return nil, err
	}

	req := &model.Request{
		ID:                   newID(),
		Type:                 dto.Type,
		Title:                title,
		CreatedBy:            creator.Name,
		CreatedByID:          creator.ID,
		CreatedByRole:        creator.Role,
		CreatedByDesignation: creator.Designation,
		Payload:              payload,
		Target:               target,
		Status:               model.StatusPending,
		SignatureFrom:        model.RequiredSigner(creator.Designation),
		UploadedFile:         dto.UploadedFile,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Add(txCtx, req); err != nil {
			return internalError("failed to store request", err)
		}
		return recordAudit(txCtx, s.auditRepo, creator.ID, creator.Role, model.ActionSubmitRequest,
			req.ID, req.Title, map[string]interface{}{
				"type":           req.Type,
				"target":         req.Target,
				"signature_from": req.SignatureFrom,
			})
	})
	if err != nil {
		return nil, err
	}

	logger.WithService("request").WithFields(map[string]interface{}{
		"request_id": req.ID,
		"type":       req.Type,
		"target":     req.Target,
		"created_by": req.CreatedByID,
	}).Info("request submitted")
	s.notifier.Publish(model.EventFor(model.EventRequestSubmitted, req))

	return req, nil
}

func (s *requestService) validatePayload(p model.Payload) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return newError(KindBadRequest, "missing or invalid payload fields: %s", strings.Join(fields, ", "))
	}
	return &Error{Kind: KindBadRequest, Message: "invalid payload", Err: err}
}

func validateUploadedFile(f *model.UploadedFile) error {
	if f == nil {
		return nil
	}
	if strings.TrimSpace(f.Name) == "" {
		return newError(KindBadRequest, "uploaded file name is required")
	}
	if len(f.Content) > MaxUploadedFileSize {
		return newError(KindBadRequest, "uploaded file exceeds %d bytes", MaxUploadedFileSize)
	}
	if _, err := base64.StdEncoding.DecodeString(f.Content); err != nil {
		return &Error{Kind: KindBadRequest, Message: "uploaded file content is not valid base64", Err: err}
	}
	return nil
}

func (s *requestService) GetByTarget(ctx context.Context, q RequestQuery) ([]model.Request, int64, error) {
	filter := model.RequestFilter{Page: q.Page, Limit: q.Limit}

	switch t := model.Target(q.Target); t {
	case "", model.TargetAll:
	case model.TargetAdmin, model.TargetFounder:
		filter.Target = t
	default:
		return nil, 0, newError(KindBadRequest, "target must be admin, founder or all")
	}
	if q.Status != "" {
		filter.Status = model.RequestStatus(q.Status)
		if !filter.Status.Valid() {
			return nil, 0, newError(KindBadRequest, "unknown status %q", q.Status)
		}
	}
	if q.Type != "" {
		filter.Type = model.RequestType(q.Type)
		if !filter.Type.Valid() {
			return nil, 0, newError(KindBadRequest, "unknown request type %q", q.Type)
		}
	}

	return s.list(ctx, filter)
}

func (s *requestService) ListMine(ctx context.Context, creatorID string, page, limit int) ([]model.Request, int64, error) {
	if creatorID == "" {
		return nil, 0, newError(KindBadRequest, "creator identity is required")
	}
	return s.list(ctx, model.RequestFilter{CreatedByID: creatorID, Page: page, Limit: limit})
}

func (s *requestService) list(ctx context.Context, filter model.RequestFilter) ([]model.Request, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	reqs, total, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, internalError("failed to list requests", err)
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	return reqs, total, nil
}

func (s *requestService) GetByID(ctx context.Context, id string) (*model.Request, error) {
	if id == "" {
		return nil, newError(KindBadRequest, "request id is required")
	}
	req, err := s.requestRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(KindNotFound, "request %s not found", id)
	}
	if err != nil {
		return nil, internalError(fmt.Sprintf("failed to load request %s", id), err)
	}
	return req, nil
}
