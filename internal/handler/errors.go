package handler

import (
	"errors"
	"net/http"

	"portal/internal/logger"
	"portal/internal/service"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "internal server error"

// statusFor maps a service error to a status and a message safe to show the caller.
func statusFor(c *gin.Context, err error) (int, string) {
	var se *service.Error
	if errors.As(err, &se) && se.Kind != service.KindInternal {
		return se.HTTPStatus(), se.Error()
	}
	logger.Error("unhandled error", "path", c.FullPath(), "error", err)
	return http.StatusInternalServerError, internalErrorMessage
}

func writeError(c *gin.Context, err error) {
	status, msg := statusFor(c, err)
	c.JSON(status, response.Error(status, msg))
}

// Roles known to the portal.
const (
	RoleAdmin      = "admin"
	RoleFounder    = "founder"
	RoleEmployee   = "employee"
	RoleIntern     = "intern"
	RoleFreelancer = "freelancer"
)

var (
	approverRoles  = []string{RoleAdmin, RoleFounder}
	submitterRoles = []string{RoleEmployee, RoleIntern, RoleFreelancer, RoleAdmin, RoleFounder}
)

func isApprover(role string) bool {
	return role == RoleAdmin || role == RoleFounder
}
