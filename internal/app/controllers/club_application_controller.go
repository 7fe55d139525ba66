package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// ClubApplicationController handles club founding applications
type ClubApplicationController struct {
	applicationService services.ClubApplicationService
}

// NewClubApplicationController creates a new ClubApplicationController
func NewClubApplicationController(applicationService services.ClubApplicationService) *ClubApplicationController {
	return &ClubApplicationController{applicationService: applicationService}
}

// Submit files a new club application
// @Summary Submit club application
// @Tags club-applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitClubApplicationRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=dto.ClubApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Caller already presides over a club"
// @Failure 409 {object} dto.ErrorResponse "Club name already in use"
// @Router /club-applications [post]
func (c *ClubApplicationController) Submit(ctx *gin.Context) {
	var req dto.SubmitClubApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.applicationService.Submit(ctx.Request.Context(), middleware.CurrentActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Application submitted"))
}

// List returns applications; non-admins only see their own
// @Summary List club applications
// @Tags club-applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(PENDING, APPROVED, REJECTED)
// @Param search query string false "Club name filter"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ClubApplicationListResponse}
// @Router /club-applications [get]
func (c *ClubApplicationController) List(ctx *gin.Context) {
	var filter dto.ClubApplicationFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	resp, err := c.applicationService.List(ctx.Request.Context(), middleware.CurrentActor(ctx), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Get returns a single application
// @Summary Get club application
// @Tags club-applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.ClubApplicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the applicant"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /club-applications/{id} [get]
func (c *ClubApplicationController) Get(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.applicationService.Get(ctx.Request.Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Approve founds the club described by the application
// @Summary Approve club application
// @Tags club-applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID" Format(uuid)
// @Param request body dto.ReviewRequest false "Coordinator note"
// @Success 200 {object} dto.APIResponse{data=dto.ClubApplicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Application already reviewed or name taken"
// @Router /club-applications/{id}/approve [post]
func (c *ClubApplicationController) Approve(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.applicationService.Approve(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Application approved"))
}

// Reject declines the application
// @Summary Reject club application
// @Tags club-applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID" Format(uuid)
// @Param request body dto.ReviewRequest false "Coordinator note"
// @Success 200 {object} dto.APIResponse{data=dto.ClubApplicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Application already reviewed"
// @Router /club-applications/{id}/reject [post]
func (c *ClubApplicationController) Reject(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.applicationService.Reject(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Application rejected"))
}
