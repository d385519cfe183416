package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portal/internal/logger"
	"portal/internal/metrics"
	"portal/internal/model"
	"portal/internal/repository"
)

// Actions accepted by the processor.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionSign    = "sign"
)

const (
	defaultTAPurpose       = "Travel allowance claim"
	defaultProposalPurpose = "Approved project proposal"
)

// --- DTOs ---

type ActionInput struct {
	RequestID string
	Action    string
	ActorID   string
	ActorRole string
}

type ActionResult struct {
	Request     *model.Request
	ForwardedTo string
}

// --- Interface ---

// ActionService moves a request through its workflow. Each call is all-or-nothing:
// the status change, the ledger posting and the audit entry commit together.
type ActionService interface {
	Perform(ctx context.Context, in ActionInput) (ActionResult, error)
}

type actionService struct {
	requestRepo repository.RequestRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	ledger      LedgerService
	notifier    Notifier
}

func NewActionService(
	requestRepo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	ledger LedgerService,
	notifier Notifier,
) ActionService {
	return &actionService{
		requestRepo: requestRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		ledger:      ledger,
		notifier:    notifierOrNop(notifier),
	}
}

// transition is the outcome of planning an action against the current request state.
type transition struct {
	change      model.StatusChange
	posting     *PostTransactionInput
	auditAction string
	forwardedTo string
}

// --- Implementation ---

func (s *actionService) Perform(ctx context.Context, in ActionInput) (ActionResult, error) {
	id := strings.TrimSpace(in.RequestID)
	action := strings.ToLower(strings.TrimSpace(in.Action))

	result, err := s.perform(ctx, id, action, in)

	label := action
	if label != ActionApprove && label != ActionReject && label != ActionSign {
		label = "unknown"
	}
	if err != nil {
		metrics.RecordAction(label, string(KindOf(err)))
		if KindOf(err) == KindInternal {
			logger.Error("request action failed", "request_id", id, "action", action, "error", err)
		}
		return ActionResult{}, err
	}
	metrics.RecordAction(label, "success")

	logger.WithService("action").WithFields(map[string]interface{}{
		"request_id":   result.Request.ID,
		"action":       action,
		"status":       result.Request.Status,
		"target":       result.Request.Target,
		"forwarded_to": result.ForwardedTo,
		"actor_id":     in.ActorID,
	}).Info("request action applied")
	s.notifier.Publish(model.EventFor(model.EventRequestUpdated, result.Request))

	return result, nil
}

func (s *actionService) perform(ctx context.Context, id, action string, in ActionInput) (ActionResult, error) {
	if id == "" || action == "" {
		return ActionResult{}, newError(KindBadRequest, "requestId and action are required")
	}
	switch action {
	case ActionApprove, ActionReject, ActionSign:
	default:
		return ActionResult{}, newError(KindUnknownAction, "unknown action %q", in.Action)
	}

	var result ActionResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requestRepo.FindByIDForUpdate(txCtx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return newError(KindNotFound, "request %s not found", id)
		}
		if err != nil {
			return internalError("failed to load request", err)
		}

		t, err := plan(req, action)
		if err != nil {
			return err
		}

		if t.posting != nil {
			t.posting.ActorID = in.ActorID
			t.posting.ActorRole = in.ActorRole
			if _, err := s.ledger.Post(txCtx, *t.posting); err != nil {
				return err
			}
		}

		updated, err := s.requestRepo.UpdateStatus(txCtx, id, t.change)
		if err != nil {
			return internalError("failed to update request status", err)
		}

		details := map[string]interface{}{
			"from_status": req.Status,
			"to_status":   updated.Status,
			"target":      updated.Target,
		}
		if t.forwardedTo != "" {
			details["forwarded_to"] = t.forwardedTo
		}
		if err := recordAudit(txCtx, s.auditRepo, in.ActorID, in.ActorRole, t.auditAction,
			updated.ID, updated.Title, details); err != nil {
			return err
		}

		result = ActionResult{Request: updated, ForwardedTo: t.forwardedTo}
		return nil
	})
	if err != nil {
		return ActionResult{}, err
	}
	return result, nil
}

// plan decides the next state without touching storage. Every validation failure
// surfaces here, before anything is written.
func plan(req *model.Request, action string) (transition, error) {
	switch action {
	case ActionApprove:
		if req.Status != model.StatusPending {
			return transition{}, invalidTransition(req, action)
		}
		if req.Type.Monetary() {
			posting, err := postingFor(req)
			if err != nil {
				return transition{}, err
			}
			return transition{
				change:      model.StatusChange{Status: model.StatusApproved},
				posting:     posting,
				auditAction: model.ActionApproveRequest,
			}, nil
		}
		signer := model.ResolveSigner(req.CreatedByDesignation, req.SignatureFrom, model.SignerFounder)
		return forwardTo(signer, model.StatusForwarded, model.SignaturePending, model.ActionForwardRequest), nil

	case ActionReject:
		change := model.StatusChange{Status: model.StatusRejected}
		switch req.Status {
		case model.StatusPending:
		case model.StatusForwarded:
			sig := model.SignatureRejected
			change.SignatureStatus = &sig
		default:
			return transition{}, invalidTransition(req, action)
		}
		return transition{change: change, auditAction: model.ActionRejectRequest}, nil

	case ActionSign:
		if req.Status != model.StatusForwarded {
			return transition{}, invalidTransition(req, action)
		}
		signer := model.ResolveSigner(req.CreatedByDesignation, req.SignatureFrom, model.SignerAdmin)
		t := forwardTo(signer, model.StatusSigned, model.SignatureSigned, model.ActionSignRequest)
		// the second hop always lands on the admin side
		admin := model.TargetAdmin
		t.change.Target = &admin
		return t, nil
	}
	return transition{}, newError(KindUnknownAction, "unknown action %q", action)
}

func forwardTo(signer model.Signer, status model.RequestStatus, sig model.SignatureStatus, auditAction string) transition {
	target := model.TargetFor(signer)
	forwardedTo := string(signer)
	return transition{
		change: model.StatusChange{
			Status:          status,
			Target:          &target,
			ForwardedTo:     &forwardedTo,
			SignatureStatus: &sig,
		},
		auditAction: auditAction,
		forwardedTo: forwardedTo,
	}
}

// postingFor derives the ledger transaction a monetary approval posts.
func postingFor(req *model.Request) (*PostTransactionInput, error) {
	in := &PostTransactionInput{RequestID: req.ID, RequestType: req.Type}

	switch p := req.Payload.(type) {
	case model.TAPayload:
		amount, err := p.Amount.Positive()
		if err != nil {
			return nil, &Error{Kind: KindInvalidAmount, Message: "invalid amount", Err: err}
		}
		in.Amount = amount
		in.Type = model.TxDebited
		in.Purpose = firstNonEmpty(p.Description, defaultTAPurpose)
		in.Remarks = firstNonEmpty(p.ClaimType, p.BillFileName)
	case model.ProposalPayload:
		amount, err := p.ProjectAmount.Positive()
		if err != nil {
			return nil, &Error{Kind: KindInvalidAmount, Message: "invalid project amount", Err: err}
		}
		in.Amount = amount
		in.Type = model.TxCredited
		in.Purpose = firstNonEmpty(p.ProjectTitle, defaultProposalPurpose)
	default:
		return nil, internalError("payload does not match request type",
			fmt.Errorf("request %s of type %s carries %T", req.ID, req.Type, req.Payload))
	}

	// amounts that round to zero cannot move the balance
	if !in.Amount.Round(2).IsPositive() {
		return nil, &Error{Kind: KindInvalidAmount, Message: "invalid amount", Err: model.ErrInvalidAmount}
	}
	return in, nil
}

func invalidTransition(req *model.Request, action string) *Error {
	return newError(KindInvalidTransition, "cannot %s request %s in status %s", action, req.ID, req.Status)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
