package v1

import (
	"net/http"
	"strconv"

	"go-hiring-workflow/internal/delivery/http/response"
	"go-hiring-workflow/internal/domain"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardUC domain.DashboardUsecase
}

func NewDashboardHandler(public *gin.RouterGroup, protected *gin.RouterGroup, dashboardUC domain.DashboardUsecase) {
	handler := &DashboardHandler{dashboardUC: dashboardUC}

	// PUBLIC route - candidates browse without authentication.
	// Only published+active postings are served (server-side enforced).
	public.GET("/board", handler.PublicBoard)

	dashboards := protected.Group("/dashboards")
	{
		dashboards.GET("/creator", handler.Creator)
		dashboards.GET("/hr-queue", handler.HRQueue)
		dashboards.GET("/executive-queue", handler.ExecutiveQueue)
	}

	protected.GET("/postings/:id/sessions", handler.JobSessions)
}

// PublicBoard godoc
// @Summary      List the public job board
// @Description  Get active published postings without assessments or approval history (no auth required)
// @Tags         dashboards
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /board [get]
func (h *DashboardHandler) PublicBoard(c *gin.Context) {
	page, pageSize := paginationParams(c)

	board, err := h.dashboardUC.PublicBoard(c, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Public job board", board)
}

// CreatorDashboard godoc
// @Summary      Creator dashboard
// @Description  List postings authored by the authenticated project leader
// @Tags         dashboards
// @Produce      json
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Param        status     query     string  false  "Filter by status"
// @Param        search     query     string  false  "Match against title"
// @Success      200        {object}  response.Response
// @Router       /dashboards/creator [get]
// @Security     BearerAuth
func (h *DashboardHandler) Creator(c *gin.Context) {
	page, pageSize := paginationParams(c)
	userID := c.GetString(string(domain.KeyUserID))

	board, err := h.dashboardUC.CreatorDashboard(c, userID, postingFilterParams(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Creator dashboard", board)
}

// HRQueue godoc
// @Summary      HR enhancement queue
// @Description  List postings awaiting HR enhancement
// @Tags         dashboards
// @Produce      json
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Param        search     query     string  false  "Match against title"
// @Success      200        {object}  response.Response
// @Router       /dashboards/hr-queue [get]
// @Security     BearerAuth
func (h *DashboardHandler) HRQueue(c *gin.Context) {
	page, pageSize := paginationParams(c)

	board, err := h.dashboardUC.HRQueue(c, postingFilterParams(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "HR queue", board)
}

// ExecutiveQueue godoc
// @Summary      Executive approval queue
// @Description  List postings awaiting an executive decision
// @Tags         dashboards
// @Produce      json
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Param        search     query     string  false  "Match against title"
// @Success      200        {object}  response.Response
// @Router       /dashboards/executive-queue [get]
// @Security     BearerAuth
func (h *DashboardHandler) ExecutiveQueue(c *gin.Context) {
	page, pageSize := paginationParams(c)

	board, err := h.dashboardUC.ExecutiveQueue(c, postingFilterParams(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Executive queue", board)
}

// JobSessions godoc
// @Summary      List assessment sessions for a posting
// @Description  List candidate assessment sessions on a posting (HR and Executive only)
// @Tags         dashboards
// @Produce      json
// @Param        id         path      int  true   "Posting ID"
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /postings/{id}/sessions [get]
// @Security     BearerAuth
func (h *DashboardHandler) JobSessions(c *gin.Context) {
	id, err := parsePostingID(c)
	if err != nil {
		c.Error(err)
		return
	}

	page, pageSize := paginationParams(c)
	role := domain.Role(c.GetString(string(domain.KeyUserRole)))

	sessions, err := h.dashboardUC.JobSessions(c, role, id, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Posting sessions", sessions)
}

func paginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return page, pageSize
}

func postingFilterParams(c *gin.Context) domain.PostingFilter {
	filter := domain.PostingFilter{
		Department: c.Query("department"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if s := c.Query("status"); s != "" {
		status := domain.PostingStatus(s)
		filter.Status = &status
	}
	return filter
}
