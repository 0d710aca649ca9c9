package guest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/apierr"
	"eventdesk/internal/export"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts guest endpoints; bulk creation is admin-only.
func RegisterRoutes(staff, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	staff.GET("/guests", h.List)
	staff.POST("/guests/:id/checkin", h.CheckIn)
	staff.POST("/guests/:id/checkout", h.CheckOut)
	staff.GET("/exports/guests", h.Export)
	admin.POST("/guests", h.Bulk)
}

// List returns today's guests; with ?q= it becomes the on-site search box.
func (h *Handler) List(c *gin.Context) {
	term := c.Query("q")
	var gs []Guest
	var err error
	if term == "" {
		gs, err = h.svc.ListToday(c.Request.Context())
	} else {
		gs, err = h.svc.Search(c.Request.Context(), term)
	}
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"guests": gs})
}

func (h *Handler) CheckIn(c *gin.Context) {
	var req struct {
		AttendedBy string `json:"attended_by" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Invalid("attended_by is required"))
		return
	}
	g, err := h.svc.CheckIn(c.Request.Context(), c.Param("id"), req.AttendedBy)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) CheckOut(c *gin.Context) {
	g, err := h.svc.CheckOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) Bulk(c *gin.Context) {
	var req struct {
		Guests []BulkInput `json:"guests" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Invalid("guests list is required"))
		return
	}
	gs, err := h.svc.BulkCreate(c.Request.Context(), req.Guests)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(gs), "guests": gs})
}

func (h *Handler) Export(c *gin.Context) {
	gs, err := h.svc.ListToday(c.Request.Context())
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="guests.csv"`)
	if err := export.CSV(c.Writer, CSVHeader, CSVRows(gs)); err != nil {
		_ = c.Error(err)
	}
}
