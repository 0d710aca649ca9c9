package attendance

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/apierr"
	"eventdesk/internal/export"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the staff-facing ledger endpoints. The reset route
// is destructive and is expected to sit behind the admin role.
func RegisterRoutes(staff, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	staff.GET("/attendance/today", h.Today)
	staff.GET("/attendance/stats", h.Stats)
	staff.GET("/exports/attendance", h.Export)
	admin.DELETE("/attendance/today", h.ResetToday)
}

func (h *Handler) Today(c *gin.Context) {
	recs, err := h.svc.ListToday(c.Request.Context())
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": h.svc.Today(), "records": recs})
}

func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

// ResetToday wipes today's ledger. Irreversible, so the caller must pass
// confirm=true explicitly.
func (h *Handler) ResetToday(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, apierr.Invalid("reset is irreversible; pass confirm=true to proceed"))
		return
	}
	n, err := h.svc.ResetToday(c.Request.Context())
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h *Handler) Export(c *gin.Context) {
	recs, err := h.svc.ListToday(c.Request.Context())
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	filename := fmt.Sprintf("attendance-%s.csv", h.svc.Today())
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.CSV(c.Writer, CSVHeader, CSVRows(recs)); err != nil {
		// Headers are gone already; nothing left to do but log via gin.
		_ = c.Error(err)
	}
}
