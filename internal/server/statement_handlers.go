package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostfolio/payout/internal/delivery"
	obscontext "github.com/hostfolio/payout/internal/observability/context"
	statementdomain "github.com/hostfolio/payout/internal/statement/domain"
)

type statementHandlers struct {
	statements statementdomain.Service
	guard      *delivery.Guard
}

func (h *statementHandlers) register(r gin.IRoutes) {
	r.POST("/v1/statements", h.calculate)
	r.GET("/v1/statements/:id", h.getByID)
	r.POST("/v1/statements/:id/send", h.send)
}

func (h *statementHandlers) calculate(c *gin.Context) {
	var req statementdomain.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestError(c, err)
		return
	}
	if req.OwnerID == 0 {
		newValidationError(c, "owner_id", "missing_owner_id", "owner_id is required")
		return
	}
	if strings.TrimSpace(req.StartDate) == "" || strings.TrimSpace(req.EndDate) == "" {
		newValidationError(c, "start_date", "missing_period", "start_date and end_date are required")
		return
	}
	c.Request = c.Request.WithContext(obscontext.WithOwnerID(c.Request.Context(), strconv.FormatInt(req.OwnerID, 10)))

	stmt, err := h.statements.Calculate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stmt)
}

func (h *statementHandlers) getByID(c *gin.Context) {
	stmt, err := h.statements.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stmt)
}

type sendRequest struct {
	Recipient string `json:"recipient"`
}

func (h *statementHandlers) send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestError(c, err)
		return
	}

	stmt, err := h.statements.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.guard.Deliver(c.Request.Context(), stmt, req.Recipient); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivered": true, "statement_id": stmt.ID.String()})
}
