package service

import (
	"context"
	"encoding/json"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// recordAudit writes one audit row through the repository, inside the caller's transaction.
func recordAudit(ctx context.Context, repo repository.AuditRepository, userID, role, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		ID:         newID(),
		UserID:     userID,
		UserRole:   role,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := repo.Log(ctx, &entry); err != nil {
		return internalError("failed to write audit log", err)
	}
	return nil
}
