package v1

import (
	"net/http"

	"go-hiring-workflow/internal/delivery/http/middleware"
	"go-hiring-workflow/internal/delivery/http/response"
	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssessmentHandler struct {
	assessmentUC domain.AssessmentUsecase
}

func NewAssessmentHandler(protected *gin.RouterGroup, assessmentUC domain.AssessmentUsecase) {
	handler := &AssessmentHandler{assessmentUC: assessmentUC}

	applications := protected.Group("/applications")
	{
		applications.POST("", handler.Apply)
		applications.GET("", handler.MyApplications)
		applications.GET("/:id", handler.MyApplication)
		applications.GET("/:id/session", handler.MySession)
		applications.GET("/:id/report", handler.Report)
	}

	// Stage start/submit are single-shot; the tighter limit stops retry storms.
	attempts := applications.Group("", middleware.SubmissionRateLimitMiddleware())
	{
		attempts.POST("/:id/stages/:stage/start", handler.StartStage)
		attempts.POST("/:id/stages/:stage/submit", handler.SubmitStage)
	}
}

type ApplyRequest struct {
	JobID int64 `json:"job_id" binding:"required,gt=0"`
}

type SubmitStageRequest struct {
	// Answers map question IDs to the selected option index.
	Answers map[string]int `json:"answers" binding:"required"`
}

// Apply godoc
// @Summary      Apply to a posting
// @Description  Register an application against an active published posting and open the assessment session
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Param        application  body      ApplyRequest  true  "Application JSON"
// @Success      201          {object}  response.Response
// @Failure      400          {object}  response.Response
// @Router       /applications [post]
// @Security     BearerAuth
func (h *AssessmentHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	candidateID := c.GetString(string(domain.KeyUserID))

	session, err := h.assessmentUC.ApplyToPosting(c, candidateID, req.JobID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application created", session)
}

// MyApplications godoc
// @Summary      List my applications
// @Description  List the authenticated candidate's applications
// @Tags         assessments
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /applications [get]
// @Security     BearerAuth
func (h *AssessmentHandler) MyApplications(c *gin.Context) {
	candidateID := c.GetString(string(domain.KeyUserID))

	apps, err := h.assessmentUC.GetMyApplications(c, candidateID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications", apps)
}

// MyApplication godoc
// @Summary      Get one of my applications
// @Description  Get a single application with its posting title
// @Tags         assessments
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *AssessmentHandler) MyApplication(c *gin.Context) {
	applicationID, err := parseApplicationID(c)
	if err != nil {
		c.Error(err)
		return
	}

	candidateID := c.GetString(string(domain.KeyUserID))

	app, err := h.assessmentUC.GetMyApplication(c, candidateID, applicationID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application details", app)
}

// MySession godoc
// @Summary      Get my assessment session
// @Description  Get the assessment session for one of the candidate's applications
// @Tags         assessments
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id}/session [get]
// @Security     BearerAuth
func (h *AssessmentHandler) MySession(c *gin.Context) {
	applicationID, err := parseApplicationID(c)
	if err != nil {
		c.Error(err)
		return
	}

	candidateID := c.GetString(string(domain.KeyUserID))

	session, err := h.assessmentUC.GetMySession(c, candidateID, applicationID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Assessment session", session)
}

// StartAssessmentStage godoc
// @Summary      Start an assessment stage
// @Description  Open the clock on the technical or HR stage and return the quiz without answers
// @Tags         assessments
// @Produce      json
// @Param        id     path      string  true  "Application ID"
// @Param        stage  path      string  true  "Stage (technical or hr)"
// @Success      200    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /applications/{id}/stages/{stage}/start [post]
// @Security     BearerAuth
func (h *AssessmentHandler) StartStage(c *gin.Context) {
	applicationID, err := parseApplicationID(c)
	if err != nil {
		c.Error(err)
		return
	}

	candidateID := c.GetString(string(domain.KeyUserID))
	stage := domain.QuizStage(c.Param("stage"))

	session, quiz, err := h.assessmentUC.StartStage(c, candidateID, applicationID, stage)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Stage started", gin.H{
		"session": session,
		"quiz":    quiz,
	})
}

// SubmitAssessmentStage godoc
// @Summary      Submit an assessment stage
// @Description  Score the submitted answers for a started stage and advance the session
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Application ID"
// @Param        stage    path      string              true  "Stage (technical or hr)"
// @Param        answers  body      SubmitStageRequest  true  "Answers JSON"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /applications/{id}/stages/{stage}/submit [post]
// @Security     BearerAuth
func (h *AssessmentHandler) SubmitStage(c *gin.Context) {
	applicationID, err := parseApplicationID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req SubmitStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	candidateID := c.GetString(string(domain.KeyUserID))
	stage := domain.QuizStage(c.Param("stage"))

	result, err := h.assessmentUC.SubmitStage(c, candidateID, applicationID, stage, req.Answers)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Stage submitted", result)
}

// AssessmentReport godoc
// @Summary      Get the combined assessment report
// @Description  Get the aggregated two-stage result for an application (HR and Executive only)
// @Tags         assessments
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /applications/{id}/report [get]
// @Security     BearerAuth
func (h *AssessmentHandler) Report(c *gin.Context) {
	applicationID, err := parseApplicationID(c)
	if err != nil {
		c.Error(err)
		return
	}

	role := domain.Role(c.GetString(string(domain.KeyUserRole)))

	report, err := h.assessmentUC.AggregateResult(c, role, applicationID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Assessment report", report)
}

func parseApplicationID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid application ID")
	}
	return id, nil
}
