package v1

import (
	"net/http"
	"strconv"
	"time"

	"go-hiring-workflow/internal/delivery/http/response"
	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type PostingHandler struct {
	postingUC  domain.PostingUsecase
	approvalUC domain.ApprovalUsecase
}

func NewPostingHandler(protected *gin.RouterGroup, postingUC domain.PostingUsecase, approvalUC domain.ApprovalUsecase) {
	handler := &PostingHandler{postingUC: postingUC, approvalUC: approvalUC}

	postings := protected.Group("/postings")
	{
		postings.POST("", handler.Create)
		postings.GET("/:id", handler.Get)
		postings.POST("/:id/submit", handler.SubmitForReview)
		postings.POST("/:id/enhancement", handler.CompleteEnhancement)
		postings.POST("/:id/decision", handler.Decide)
		postings.POST("/:id/publication", handler.SetPublicationState)
		postings.POST("/expire-due", handler.ExpireDue)
	}
}

type QuestionRequest struct {
	ID                 string   `json:"id" binding:"required"`
	Prompt             string   `json:"prompt" binding:"required"`
	Options            []string `json:"options" binding:"required,len=4"`
	CorrectOptionIndex int      `json:"correct_option_index" binding:"min=0,max=3"`
	Points             int      `json:"points" binding:"required,gt=0"`
	Category           string   `json:"category"`
}

type QuizRequest struct {
	Questions           []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
	TimeLimitMinutes    int               `json:"time_limit_minutes" binding:"required,gt=0"`
	PassingScorePercent int               `json:"passing_score_percent" binding:"min=0,max=100"`
}

func (r QuizRequest) toQuiz(stage domain.QuizStage, createdBy string) (*domain.Quiz, error) {
	questions := make([]domain.Question, len(r.Questions))
	for i, q := range r.Questions {
		questions[i] = domain.Question{
			ID:                 q.ID,
			Prompt:             q.Prompt,
			Options:            q.Options,
			CorrectOptionIndex: q.CorrectOptionIndex,
			Points:             q.Points,
			Category:           domain.QuestionCategory(q.Category),
		}
	}
	quiz, err := domain.NewQuiz(stage, questions, r.TimeLimitMinutes, r.PassingScorePercent)
	if err != nil {
		return nil, err
	}
	quiz.CreatedBy = createdBy
	return quiz, nil
}

type CreatePostingRequest struct {
	Title               string      `json:"title" binding:"required"`
	Department          string      `json:"department" binding:"required"`
	TechnicalAssessment QuizRequest `json:"technical_assessment" binding:"required"`
	ExpiresAt           *time.Time  `json:"expires_at"`
}

type DecisionRequest struct {
	Outcome    string   `json:"outcome" binding:"required,outcome"`
	Comments   string   `json:"comments"`
	Conditions []string `json:"conditions"`
}

type PublicationRequest struct {
	Event string `json:"event" binding:"required,oneof=hide flag reactivate"`
}

// CreatePosting godoc
// @Summary      Create a job posting
// @Description  Create a draft job posting with its technical assessment (Project Leader only)
// @Tags         postings
// @Accept       json
// @Produce      json
// @Param        posting  body      CreatePostingRequest  true  "Posting JSON"
// @Success      201      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /postings [post]
// @Security     BearerAuth
func (h *PostingHandler) Create(c *gin.Context) {
	var req CreatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	role := domain.Role(c.GetString(string(domain.KeyUserRole)))

	technical, err := req.TechnicalAssessment.toQuiz(domain.StageTechnical, userID)
	if err != nil {
		c.Error(err)
		return
	}

	posting, err := h.postingUC.CreatePosting(c, userID, role, req.Title, req.Department, technical, req.ExpiresAt)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Posting created", posting)
}

// GetPosting godoc
// @Summary      Get a job posting
// @Description  Get a posting with its assessments and approval history
// @Tags         postings
// @Produce      json
// @Param        id   path      int  true  "Posting ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /postings/{id} [get]
// @Security     BearerAuth
func (h *PostingHandler) Get(c *gin.Context) {
	id, err := parsePostingID(c)
	if err != nil {
		c.Error(err)
		return
	}

	posting, err := h.postingUC.GetPosting(c, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Posting details", posting)
}

// SubmitForReview godoc
// @Summary      Submit a posting for HR review
// @Description  Move a draft posting into HR review (Project Leader, own postings only)
// @Tags         postings
// @Produce      json
// @Param        id   path      int  true  "Posting ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /postings/{id}/submit [post]
// @Security     BearerAuth
func (h *PostingHandler) SubmitForReview(c *gin.Context) {
	id, err := parsePostingID(c)
	if err != nil {
		c.Error(err)
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	role := domain.Role(c.GetString(string(domain.KeyUserRole)))

	posting, err := h.postingUC.SubmitForReview(c, userID, role, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Posting submitted for review", posting)
}

// CompleteEnhancement godoc
// @Summary      Complete HR enhancement
// @Description  Attach the HR assessment and forward the posting to executive approval (HR only)
// @Tags         postings
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "Posting ID"
// @Param        quiz  body      QuizRequest  true  "HR assessment JSON"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /postings/{id}/enhancement [post]
// @Security     BearerAuth
func (h *PostingHandler) CompleteEnhancement(c *gin.Context) {
	id, err := parsePostingID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	role := domain.Role(c.GetString(string(domain.KeyUserRole)))

	hrQuiz, err := req.toQuiz(domain.StageHR, userID)
	if err != nil {
		c.Error(err)
		return
	}

	posting, err := h.postingUC.CompleteEnhancement(c, role, id, hrQuiz)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Enhancement completed", posting)
}

// DecidePosting godoc
// @Summary      Record an executive decision
// @Description  Approve, reject, or request changes on a posting awaiting executive approval
// @Tags         postings
// @Accept       json
// @Produce      json
// @Param        id        path      int              true  "Posting ID"
// @Param        decision  body      DecisionRequest  true  "Decision JSON"
// @Success      200       {object}  response.Response
// @Failure      400       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Failure      409       {object}  response.Response
// @Router       /postings/{id}/decision [post]
// @Security     BearerAuth
func (h *PostingHandler) Decide(c *gin.Context) {
	id, err := parsePostingID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	role := domain.Role(c.GetString(string(domain.KeyUserRole)))

	posting, err := h.approvalUC.ApplyDecision(c, userID, role, id,
		domain.DecisionOutcome(req.Outcome), req.Comments, req.Conditions)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Decision recorded", posting)
}

// SetPublicationState godoc
// @Summary      Toggle publication state
// @Description  Hide, flag, or reactivate a published posting (Executive only)
// @Tags         postings
// @Accept       json
// @Produce      json
// @Param        id     path      int                 true  "Posting ID"
// @Param        event  body      PublicationRequest  true  "Publication event JSON"
// @Success      200    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /postings/{id}/publication [post]
// @Security     BearerAuth
func (h *PostingHandler) SetPublicationState(c *gin.Context) {
	id, err := parsePostingID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req PublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	role := domain.Role(c.GetString(string(domain.KeyUserRole)))

	posting, err := h.postingUC.SetPublicationState(c, role, id, domain.PostingEvent(req.Event))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Publication state updated", posting)
}

// ExpireDuePostings godoc
// @Summary      Archive postings past expiry
// @Description  Sweep published postings whose expiry has passed and archive them
// @Tags         postings
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /postings/expire-due [post]
// @Security     BearerAuth
func (h *PostingHandler) ExpireDue(c *gin.Context) {
	role := domain.Role(c.GetString(string(domain.KeyUserRole)))
	if role != domain.RoleHR && role != domain.RoleExecutive {
		c.Error(apperror.Forbidden("Only HR or executives can run the expiry sweep"))
		return
	}

	expired, err := h.postingUC.ExpireDuePostings(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Expiry sweep completed", gin.H{"expired": expired})
}

func parsePostingID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid posting ID")
	}
	return id, nil
}
