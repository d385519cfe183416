package handler

import (
	"net/http"

	"portal/internal/middleware"
	"portal/internal/service"
	"portal/pkg/pagination"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ActionRequest is the body of POST /api/requests/action.
type ActionRequest struct {
	RequestID string `json:"requestId"`
	Action    string `json:"action"`
}

type RequestHandler struct {
	requestService service.RequestService
	actionService  service.ActionService
	limiter        gin.HandlerFunc
}

// NewRequestHandler wires the request endpoints. limiter guards the write routes and may be nil.
func NewRequestHandler(requestService service.RequestService, actionService service.ActionService, limiter gin.HandlerFunc) *RequestHandler {
	if limiter == nil {
		limiter = func(c *gin.Context) { c.Next() }
	}
	return &RequestHandler{requestService: requestService, actionService: actionService, limiter: limiter}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", middleware.RequireRole(submitterRoles...), h.limiter, h.SubmitRequest)
		requests.GET("", middleware.RequireRole(approverRoles...), h.ListRequests)
		requests.GET("/mine", middleware.RequireRole(submitterRoles...), h.ListMyRequests)
		requests.GET("/:id", middleware.RequireRole(submitterRoles...), h.GetRequest)
		requests.POST("/action", middleware.RequireRole(approverRoles...), h.limiter, h.PerformAction)
	}
}

// SubmitRequest creates a new pending request for the caller
// @Summary      Submit a request
// @Description  Creates a leave, ta, proposal, report, recruitment or certificate request. The creator is taken from the token.
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.SubmitRequestDTO  true  "Request"
// @Success      201   {object}  response.Response{data=model.Request}
// @Failure      400   {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	var dto service.SubmitRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	user := middleware.CurrentUser(c)
	req, err := h.requestService.Submit(c.Request.Context(), service.Creator{
		ID:          user.ID,
		Name:        user.Name,
		Role:        user.Role,
		Designation: user.Designation,
	}, dto)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

// ListRequests returns the requests a dashboard must act on
// @Summary      List requests by target
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        target  query     string  false  "admin, founder or all (default all)"
// @Param        status  query     string  false  "pending, approved, rejected, forwarded or signed"
// @Param        type    query     string  false  "request type"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	p := pagination.Parse(c)
	reqs, total, err := h.requestService.GetByTarget(c.Request.Context(), service.RequestQuery{
		Target: c.Query("target"),
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, reqs, total, p.Page, p.Limit))
}

// ListMyRequests returns the caller's own submissions
// @Summary      List my requests
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/requests/mine [get]
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	p := pagination.Parse(c)
	reqs, total, err := h.requestService.ListMine(c.Request.Context(), middleware.CurrentUser(c).ID, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, reqs, total, p.Page, p.Limit))
}

// GetRequest returns one request. Submitters only see their own.
// @Summary      Get a request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.Request}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	user := middleware.CurrentUser(c)
	req, err := h.requestService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !isApprover(user.Role) && req.CreatedByID != user.ID {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "request "+req.ID+" not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// PerformAction approves, rejects or signs a request
// @Summary      Act on a request
// @Description  approve: monetary requests post to the ledger, others forward for signature. sign: completes a forwarded request.
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      ActionRequest  true  "Action"
// @Success      200   {object}  response.ActionResponse
// @Failure      400   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Failure      409   {object}  response.ErrorBody
// @Router       /api/requests/action [post]
func (h *RequestHandler) PerformAction(c *gin.Context) {
	var body ActionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorBody{Error: "Invalid request body: " + err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	result, err := h.actionService.Perform(c.Request.Context(), service.ActionInput{
		RequestID: body.RequestID,
		Action:    body.Action,
		ActorID:   user.ID,
		ActorRole: user.Role,
	})
	if err != nil {
		status, msg := statusFor(c, err)
		c.JSON(status, response.ErrorBody{Error: msg})
		return
	}

	c.JSON(http.StatusOK, response.ActionResponse{
		Success:     true,
		Request:     result.Request,
		ForwardedTo: result.ForwardedTo,
	})
}
