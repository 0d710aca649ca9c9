package checkin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/apierr"
	"eventdesk/internal/auth"
)

type Handler struct{ mgr *Manager }

// RegisterRoutes mounts the check-in session endpoints on an authenticated
// group.
func RegisterRoutes(r gin.IRoutes, mgr *Manager) {
	h := &Handler{mgr: mgr}

	r.POST("/sessions", h.OpenSession)
	r.DELETE("/sessions/:id", h.CloseSession)
	r.POST("/sessions/:id/scan", h.Scan)
	r.POST("/sessions/:id/workflow/next", h.Next)
	r.POST("/sessions/:id/workflow/back", h.Back)
	r.POST("/sessions/:id/workflow/cancel", h.Cancel)
	r.POST("/sessions/:id/workflow/confirm", h.Confirm)
}

func (h *Handler) OpenSession(c *gin.Context) {
	sess, err := h.mgr.Open(c.Request.Context(), auth.Subject(c))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.mgr.Close(c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Scan(c *gin.Context) {
	var req struct {
		Input string `json:"input" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Invalid("input is required"))
		return
	}
	wf, err := h.mgr.Scan(c.Request.Context(), c.Param("id"), req.Input)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *Handler) Next(c *gin.Context) {
	wf, err := h.mgr.Next(c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *Handler) Back(c *gin.Context) {
	wf, err := h.mgr.Back(c.Param("id"))
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *Handler) Cancel(c *gin.Context) {
	if err := h.mgr.Cancel(c.Param("id")); err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Confirm(c *gin.Context) {
	var req struct {
		Category      string `json:"category" binding:"required"`
		OtherText     string `json:"other_text"`
		Participating bool   `json:"participating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Invalid("category is required"))
		return
	}
	res, err := h.mgr.Confirm(c.Request.Context(), c.Param("id"), req.Category, req.OtherText, req.Participating)
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}
