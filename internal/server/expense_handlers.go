package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	expenseservice "github.com/hostfolio/payout/internal/expense/service"
	obscontext "github.com/hostfolio/payout/internal/observability/context"
)

type expenseHandlers struct {
	expenses expenseservice.Service
}

func (h *expenseHandlers) register(r gin.IRoutes) {
	r.POST("/v1/expenses", h.ingest)
}

func (h *expenseHandlers) ingest(c *gin.Context) {
	var req expenseservice.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestError(c, err)
		return
	}
	if req.OwnerID != 0 {
		c.Request = c.Request.WithContext(obscontext.WithOwnerID(c.Request.Context(), strconv.FormatInt(req.OwnerID, 10)))
	}

	result, err := h.expenses.Ingest(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
