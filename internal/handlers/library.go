package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"audioscribe/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      List saved summaries
// @Description  Newest first. Tags round-trip as the comma-joined string supplied on save.
// @Tags         summaries
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, summaries"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/summaries [get]
// @Security     BearerAuth
func (h *Handler) listSummaries(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}

	summaries, err := h.services.Library.List(c.Request.Context(), p.Username)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("summaries_list_failed", "err", err, "username", p.Username)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summaries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(summaries),
		"summaries": summaries,
	})
}

// @Summary      Delete a saved summary
// @Tags         summaries
// @Produce      json
// @Param        id  path  int  true  "Summary id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/summaries/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteSummary(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid summary id"})
		return
	}

	if err := h.services.Library.Delete(c.Request.Context(), p, id); err != nil {
		if errors.Is(err, service.ErrSummaryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if h.log != nil {
			h.log.Errorw("summary_delete_failed", "err", err, "id", id)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
