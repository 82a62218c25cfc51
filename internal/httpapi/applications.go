package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) listApplications(c *gin.Context) {
	apps, err := h.Applications.List(c.Request.Context(), caller(c).UserID, c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *handler) trackApplication(c *gin.Context) {
	var body struct {
		JobID string `json:"jobId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body must contain jobId")
		return
	}
	app, created, err := h.Applications.Track(c.Request.Context(), caller(c).UserID, body.JobID)
	if err != nil {
		fail(c, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, app)
}

func (h *handler) getApplication(c *gin.Context) {
	app, err := h.Applications.Get(c.Request.Context(), caller(c).UserID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *handler) moveApplication(c *gin.Context) {
	var body struct {
		NewStatus string `json:"newStatus"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.NewStatus == "" {
		badRequest(c, "body must contain newStatus")
		return
	}
	app, err := h.Applications.MoveStatus(c.Request.Context(), caller(c).UserID, c.Param("id"), body.NewStatus)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *handler) addNote(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body must contain content")
		return
	}
	app, err := h.Applications.AddNote(c.Request.Context(), caller(c).UserID, c.Param("id"), body.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}
