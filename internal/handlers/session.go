package handlers

import (
	"errors"
	"io"
	"net/http"

	"audioscribe/internal/models"
	"audioscribe/internal/service"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 100 << 20 // 100 MB

// httpStatusFor maps service errors to HTTP status codes. Everything in the
// taxonomy is recoverable; nothing here is fatal to the process.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidAudio),
		errors.Is(err, service.ErrNoAudio),
		errors.Is(err, service.ErrNoTranscript),
		errors.Is(err, service.ErrNoSummary),
		errors.Is(err, service.ErrLengthOutOfRange),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSummaryNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrServiceTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, service.ErrTranscriptionFailed),
		errors.Is(err, service.ErrSummarizationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondSession writes the session snapshot, or a mapped error with the
// snapshot included so clients can still render the page they landed on.
func (h *Handler) respondSession(c *gin.Context, state models.Session, err error, logKey string) {
	if err != nil {
		if h.log != nil {
			h.log.Errorw(logKey, "err", err, "page", state.Page, "phase", state.Phase)
		}
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error(), "state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// Request DTO for requesting a summary.
type summarizeRequest struct {
	Sentences int `json:"sentences" binding:"required"`
}

// Request DTO for saving the current summary.
type saveSummaryRequest struct {
	Title string `json:"title"`
	Tags  string `json:"tags"` // comma-joined, e.g. "tag1,tag2"
}

// @Summary      Current session state
// @Description  Snapshot only; never triggers transcription or summarization.
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "state"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session/state [get]
// @Security     BearerAuth
func (h *Handler) getSessionState(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.services.Session.Snapshot(p)})
}

// @Summary      Upload an audio file
// @Description  Accepts mp3, wav, ogg or flac as multipart field "file".
// @Tags         session
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Audio file"
// @Success      200  {object}  map[string]interface{}  "state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session/upload [post]
// @Security     BearerAuth
func (h *Handler) uploadAudio(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field 'file'"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	state, err := h.services.Session.Upload(c.Request.Context(), p, fileHeader.Filename, data)
	h.respondSession(c, state, err, "session_upload_failed")
}

// @Summary      Transcribe the staged audio
// @Description  Idempotent per artifact: a cached transcript is returned without re-running the model.
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/session/transcribe [post]
// @Security     BearerAuth
func (h *Handler) transcribeAudio(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}
	state, err := h.services.Session.Transcribe(c.Request.Context(), p)
	h.respondSession(c, state, err, "session_transcribe_failed")
}

// @Summary      Summarize the transcript
// @Description  Sentences must be in [1, sentence_count]; the full count yields ratio 1.0.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  summarizeRequest  true  "Requested summary length"
// @Success      200  {object}  map[string]interface{}  "state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/session/summarize [post]
// @Security     BearerAuth
func (h *Handler) summarizeTranscript(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}
	var req summarizeRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	state, err := h.services.Session.Summarize(c.Request.Context(), p, req.Sentences)
	h.respondSession(c, state, err, "session_summarize_failed")
}

// @Summary      Save the current summary
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  saveSummaryRequest  true  "Title and comma-joined tags"
// @Success      200  {object}  map[string]interface{}  "state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/session/save [post]
// @Security     BearerAuth
func (h *Handler) saveSummary(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}
	var req saveSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	state, err := h.services.Session.SaveSummary(c.Request.Context(), p, req.Title, req.Tags)
	h.respondSession(c, state, err, "session_save_failed")
}

// @Summary      Back to main page
// @Description  Leaving the transcribe page releases the temp audio and clears transcript/summary.
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "state"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session/back [post]
// @Security     BearerAuth
func (h *Handler) backToMain(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}
	state, err := h.services.Session.Back(c.Request.Context(), p)
	h.respondSession(c, state, err, "session_back_failed")
}

// @Summary      Open the review page
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session/review [post]
// @Security     BearerAuth
func (h *Handler) gotoReview(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}
	state, err := h.services.Session.Review(c.Request.Context(), p)
	h.respondSession(c, state, err, "session_review_failed")
}

// @Summary      Log out
// @Description  Destroys the session and releases any staged audio.
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/session/logout [post]
// @Security     BearerAuth
func (h *Handler) logout(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no principal"})
		return
	}
	if err := h.services.Session.End(c.Request.Context(), p); err != nil {
		if h.log != nil {
			h.log.Errorw("session_logout_failed", "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
