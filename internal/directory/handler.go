package directory

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the read-only directory listing used by staff tools
// that need the full roster, such as manual lookup fallbacks.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/students", h.List)
}

func (h *Handler) List(c *gin.Context) {
	students, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(apierr.HTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}
