package registration

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/apierr"
	"eventdesk/internal/export"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the public form endpoint and the admin dashboard
// operations.
func RegisterRoutes(public, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	public.POST("/registrations", h.Create)
	admin.GET("/registrations", h.List)
	admin.PATCH("/registrations/:id/payment", h.SetPayment)
	admin.POST("/waitlist/promote", h.Promote)
	admin.GET("/exports/registrations", h.Export)
}

func (h *Handler) Create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Invalid("invalid registration payload"))
		return
	}
	reg, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, reg)
}

func (h *Handler) List(c *gin.Context) {
	regs, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": regs})
}

func (h *Handler) SetPayment(c *gin.Context) {
	var req struct {
		Payment string `json:"payment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Invalid("payment is required"))
		return
	}
	if err := h.svc.SetPayment(c.Request.Context(), c.Param("id"), Payment(req.Payment)); err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Promote(c *gin.Context) {
	reg, err := h.svc.Promote(c.Request.Context())
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, reg)
}

func (h *Handler) Export(c *gin.Context) {
	regs, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="registrations.csv"`)
	if err := export.CSV(c.Writer, CSVHeader, CSVRows(regs)); err != nil {
		_ = c.Error(err)
	}
}
