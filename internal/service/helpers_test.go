package service

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"portal/internal/logger"
	"portal/internal/model"
	"portal/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.Event
}

func (n *recordingNotifier) Publish(e model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) all() []model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Event(nil), n.events...)
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	requests RequestService
	actions  ActionService
	ledger   LedgerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.SetOutput(io.Discard)

	store := memory.New()
	notifier := &recordingNotifier{}
	ledger := NewLedgerService(store, store.AuditLogs(), store)
	return &fixture{
		store:    store,
		notifier: notifier,
		requests: NewRequestService(store, store.AuditLogs(), store, notifier),
		actions:  NewActionService(store, store.AuditLogs(), store, ledger, notifier),
		ledger:   ledger,
	}
}

var (
	employee = Creator{ID: "u-emp", Name: "Asha", Role: "employee", Designation: "Software Employee"}
	intern   = Creator{ID: "u-int", Name: "Ravi", Role: "intern", Designation: "Intern"}
	manager  = Creator{ID: "u-mgr", Name: "Meera", Role: "employee", Designation: "Manager"}
	approver = ActionInput{ActorID: "u-admin", ActorRole: "admin"}
)

func (f *fixture) submit(t *testing.T, who Creator, typ model.RequestType, payload any) *model.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := f.requests.Submit(context.Background(), who, SubmitRequestDTO{
		Type:    typ,
		Title:   string(typ) + " request",
		Payload: raw,
	})
	require.NoError(t, err)
	return req
}

func (f *fixture) act(id, action string) (ActionResult, error) {
	in := approver
	in.RequestID = id
	in.Action = action
	return f.actions.Perform(context.Background(), in)
}

func leavePayload() map[string]any {
	return map[string]any{
		"leaveType": "casual",
		"fromDate":  "2026-03-02",
		"toDate":    "2026-03-04",
		"days":      3,
		"reason":    "family function",
	}
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
