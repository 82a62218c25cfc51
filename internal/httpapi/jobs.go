package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobmate/jobboard-service/internal/catalog"
	"jobmate/jobboard-service/internal/preferences"
)

func (h *handler) findJobs(c *gin.Context) {
	var filter catalog.JobFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "invalid query")
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	result, err := h.Jobs.FindJobs(c.Request.Context(), filter, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ── Preferences ───────────────────────────────────────────────────────────

func (h *handler) getPreferences(c *gin.Context) {
	p, err := h.Profiles.Get(c.Request.Context(), caller(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) createPreferences(c *gin.Context) {
	var in preferences.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Profiles.Create(c.Request.Context(), caller(c).UserID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) updatePreferences(c *gin.Context) {
	var in preferences.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Profiles.Update(c.Request.Context(), caller(c).UserID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) toggleAlerts(c *gin.Context) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Enabled == nil {
		badRequest(c, "body must contain enabled")
		return
	}
	p, err := h.Profiles.ToggleAlerts(c.Request.Context(), caller(c).UserID, *body.Enabled)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
