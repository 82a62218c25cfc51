package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) generate(c *gin.Context) {
	results, err := h.Recommender.Generate(c.Request.Context(), caller(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results)})
}

func (h *handler) recompute(c *gin.Context) {
	summary, err := h.Recommender.RecomputeAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processedUsers": summary.ProcessedUsers,
		"succeeded":      summary.Succeeded,
		"failed":         summary.Failed,
		"tookMs":         summary.Took.Milliseconds(),
	})
}

func (h *handler) listRecommendations(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	result, err := h.Recommender.GetUserRecommendations(c.Request.Context(), caller(c).UserID, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) recommendationReason(c *gin.Context) {
	reason, err := h.Recommender.GetRecommendationReason(c.Request.Context(), caller(c).UserID, c.Param("jobId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reason)
}
