package handler

import (
	"net/http"

	"portal/internal/middleware"
	"portal/internal/service"
	"portal/pkg/pagination"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/ledger")
	group.Use(middleware.RequireRole(approverRoles...))
	{
		group.GET("", h.GetLedger)
		group.GET("/reconcile", h.Reconcile)
	}
}

// GetLedger returns the company balance and a page of transactions, newest first
// @Summary      Get company ledger
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=service.LedgerResponse}
// @Router       /api/ledger [get]
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	p := pagination.Parse(c)
	ledger, err := h.ledgerService.GetLedger(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ledger))
}

// Reconcile checks the stored balance against the transaction log
// @Summary      Reconcile ledger
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.ReconcileReport}
// @Router       /api/ledger/reconcile [get]
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	report, err := h.ledgerService.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
