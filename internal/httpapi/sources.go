package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobmate/jobboard-service/internal/ingestion"
)

type registerSourceRequest struct {
	Name     string `json:"name"`
	FeedKind string `json:"feedKind"`
	Provider string `json:"provider"`
	BaseURL  string `json:"baseUrl"`
}

func (h *handler) listSources(c *gin.Context) {
	sources, err := h.Sources.ListSources(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources, "count": len(sources)})
}

func (h *handler) registerSource(c *gin.Context) {
	var req registerSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	src, err := h.Sources.Register(c.Request.Context(), ingestion.RegisterSourceInput{
		Name:     req.Name,
		FeedKind: req.FeedKind,
		Provider: req.Provider,
		BaseURL:  req.BaseURL,
		AdminID:  caller(c).UserID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, src)
}

func (h *handler) setSourceEnabled(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		src, err := h.Sources.SetEnabled(c.Request.Context(), c.Param("id"), enabled)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, src)
	}
}

func (h *handler) ingestSource(c *gin.Context) {
	summary, err := h.Sources.IngestSource(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
