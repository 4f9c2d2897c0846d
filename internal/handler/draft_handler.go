package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizgenai/quizgen-backend/internal/middleware"
	"github.com/quizgenai/quizgen-backend/internal/model"
	"github.com/quizgenai/quizgen-backend/internal/quiz"
	"github.com/quizgenai/quizgen-backend/internal/response"
	"github.com/quizgenai/quizgen-backend/internal/service"
	"github.com/quizgenai/quizgen-backend/internal/validator"
)

// DraftHandler exposes the authoring wizard: intake uploads, generation,
// editing, publishing and reset. Every mutation returns the full draft
// snapshot so the client never has to reassemble state.
type DraftHandler struct {
	draftService *service.DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Create godoc
// POST /api/v1/drafts
// Starts a new authoring session at the intake step.
func (h *DraftHandler) Create(c *gin.Context) {
	response.Success(c, http.StatusCreated, h.draftService.Create())
}

// Get godoc
// GET /api/v1/drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	snap, err := h.draftService.Get(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// Discard godoc
// DELETE /api/v1/drafts/:id
func (h *DraftHandler) Discard(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	if err := h.draftService.Discard(id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// UploadFiles godoc
// POST /api/v1/drafts/:id/files  (multipart, field "files")
// Admits uploads against the intake limits. All-or-nothing: a rejected
// batch changes nothing.
func (h *DraftHandler) UploadFiles(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	snap, err := h.draftService.AdmitFiles(id, files)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// RemoveFile godoc
// DELETE /api/v1/drafts/:id/files/:name
// Removing a name that is not tracked succeeds and changes nothing.
func (h *DraftHandler) RemoveFile(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	snap, err := h.draftService.RemoveFile(id, c.Param("name"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// Generate godoc
// POST /api/v1/drafts/:id/generate
// Runs the AI call and moves the draft to the editing step.
func (h *DraftHandler) Generate(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	snap, err := h.draftService.Generate(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// SetTitle godoc
// PATCH /api/v1/drafts/:id/title
// The title is stored verbatim, blanks and all; publishing falls back to
// the default when it is blank.
func (h *DraftHandler) SetTitle(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	var req model.SetTitleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	snap, err := h.draftService.SetTitle(id, req.Title)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// SetQuestionText godoc
// PATCH /api/v1/drafts/:id/questions/:qi
func (h *DraftHandler) SetQuestionText(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	qi, ok := h.index(c, "qi")
	if !ok {
		return
	}
	var req model.SetQuestionTextRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	snap, err := h.draftService.SetQuestionText(id, qi, req.Question)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// SetOptionText godoc
// PATCH /api/v1/drafts/:id/questions/:qi/options/:oi
// Renaming the option currently marked correct moves the marker with it.
func (h *DraftHandler) SetOptionText(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	qi, ok := h.index(c, "qi")
	if !ok {
		return
	}
	oi, ok := h.index(c, "oi")
	if !ok {
		return
	}
	var req model.SetOptionTextRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	snap, err := h.draftService.SetOptionText(id, qi, oi, req.Option)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// MarkCorrect godoc
// POST /api/v1/drafts/:id/questions/:qi/correct
func (h *DraftHandler) MarkCorrect(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	qi, ok := h.index(c, "qi")
	if !ok {
		return
	}
	var req model.MarkCorrectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	snap, err := h.draftService.MarkCorrect(id, qi, req.Option)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// AddQuestion godoc
// POST /api/v1/drafts/:id/questions
// Appends a scaffold question for the user to fill in.
func (h *DraftHandler) AddQuestion(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	snap, err := h.draftService.AddQuestion(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// RemoveQuestion godoc
// DELETE /api/v1/drafts/:id/questions/:qi
func (h *DraftHandler) RemoveQuestion(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	qi, ok := h.index(c, "qi")
	if !ok {
		return
	}
	snap, err := h.draftService.RemoveQuestion(id, qi)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// ClearQuestions godoc
// DELETE /api/v1/drafts/:id/questions
// An emptied draft stays at the editing step.
func (h *DraftHandler) ClearQuestions(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	snap, err := h.draftService.ClearQuestions(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// Reorder godoc
// POST /api/v1/drafts/:id/reorder
// Commits a completed drag: the question at "from" is spliced out and
// reinserted at "to".
func (h *DraftHandler) Reorder(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	var req model.ReorderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	snap, err := h.draftService.Reorder(id, *req.From, *req.To)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// Publish godoc
// POST /api/v1/drafts/:id/publish
// Creates the Google Form. Anonymous callers must send
// {"confirm_anonymous": true} to acknowledge service-account ownership.
func (h *DraftHandler) Publish(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}

	var req model.PublishRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	snap, err := h.draftService.Publish(c.Request.Context(), id, middleware.GetIdentity(c), req.ConfirmAnonymous)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// Reset godoc
// POST /api/v1/drafts/:id/reset
// Starts the wizard over from any step.
func (h *DraftHandler) Reset(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	snap, err := h.draftService.Reset(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (h *DraftHandler) draftID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *DraftHandler) index(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return 0, false
	}
	return n, true
}

// writeServiceError maps draft-service errors onto the response taxonomy.
// Generation and publish failures carry the upstream reason verbatim.
func (h *DraftHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDraftNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrDraftNotFound)
	case errors.Is(err, quiz.ErrCallInFlight):
		response.Fail(c, http.StatusConflict, response.ErrOperationInFlight)
	case errors.Is(err, quiz.ErrInvalidTransition):
		response.Fail(c, http.StatusConflict, response.ErrInvalidState)
	case errors.Is(err, quiz.ErrIndexOutOfRange):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrIndexOutOfRange)
	case errors.Is(err, quiz.ErrTooManyDocuments):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrTooManyDocuments)
	case errors.Is(err, quiz.ErrTooManyImages):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrTooManyImages)
	case errors.Is(err, service.ErrNoSourceFiles):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoSourceFiles)
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
	case errors.Is(err, service.ErrAnonymousUnconfirmed):
		response.Fail(c, http.StatusPreconditionRequired, response.ErrAnonymousConfirmationRequired)
	case errors.Is(err, service.ErrGenerationFailed):
		response.FailWithDetail(c, http.StatusBadGateway, response.ErrGenerationFailed, service.Detail(err, service.ErrGenerationFailed))
	case errors.Is(err, service.ErrPublishFailed):
		response.FailWithDetail(c, http.StatusBadGateway, response.ErrPublishFailed, service.Detail(err, service.ErrPublishFailed))
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
