package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostfolio/payout/internal/period"
)

type periodHandlers struct {
	resolver *period.Resolver
}

func (h *periodHandlers) register(r gin.IRoutes) {
	r.GET("/v1/payout-weeks/current", h.current)
	r.GET("/v1/payout-weeks/previous", h.previous)
	r.GET("/v1/payout-weeks/resolve", h.resolve)
}

func weekResponse(week period.Week) gin.H {
	return gin.H{
		"start": week.Start.Format("2006-01-02"),
		"end":   week.End.Format("2006-01-02"),
	}
}

func (h *periodHandlers) current(c *gin.Context) {
	c.JSON(http.StatusOK, weekResponse(h.resolver.Current()))
}

func (h *periodHandlers) previous(c *gin.Context) {
	c.JSON(http.StatusOK, weekResponse(h.resolver.Previous()))
}

func (h *periodHandlers) resolve(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		newValidationError(c, "date", "missing_date", "date query parameter is required")
		return
	}
	date, err := period.ParseDate(raw)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, weekResponse(period.ResolvePayoutWeek(date)))
}
