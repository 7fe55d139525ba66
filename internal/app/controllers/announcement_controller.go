package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// AnnouncementController handles announcements and their review
type AnnouncementController struct {
	announcementService services.AnnouncementService
}

// NewAnnouncementController creates a new AnnouncementController
func NewAnnouncementController(announcementService services.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{announcementService: announcementService}
}

// Create publishes or submits an announcement
// @Summary Create announcement
// @Description Admin posts are published immediately; President posts wait for review
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} dto.APIResponse{data=dto.AnnouncementDetailResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Audience not allowed; details list allowedAudiences"
// @Router /announcements [post]
func (c *AnnouncementController) Create(ctx *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.announcementService.Create(ctx.Request.Context(), middleware.CurrentActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Announcement created"))
}

// Update edits a pending announcement
// @Summary Update announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID" Format(uuid)
// @Param request body dto.UpdateAnnouncementRequest true "Announcement"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 409 {object} dto.ErrorResponse "Announcement already reviewed"
// @Router /announcements/{id} [put]
func (c *AnnouncementController) Update(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateAnnouncementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.announcementService.Update(ctx.Request.Context(), middleware.CurrentActor(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Announcement updated"))
}

// List returns the approved announcements visible to the caller
// @Summary List announcements
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param audience query string false "Audience filter" Enums(ALL_STUDENTS, PRESIDENTS, CLUB_MEMBERS, SPECIFIC_CLUB_MEMBERS)
// @Param clubId query string false "Club filter" Format(uuid)
// @Param pinned query bool false "Pinned filter"
// @Param unread query bool false "Only unread"
// @Param search query string false "Title filter"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementListResponse}
// @Router /announcements [get]
func (c *AnnouncementController) List(ctx *gin.Context) {
	var filter dto.AnnouncementFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	clubID, ok := middleware.OptionalUUIDQuery(ctx, "clubId")
	if !ok {
		return
	}
	filter.ClubID = clubID

	resp, err := c.announcementService.List(ctx.Request.Context(), middleware.CurrentActor(ctx), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// ListPending returns announcements waiting for review
// @Summary Pending announcements
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementListResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /announcements/pending [get]
func (c *AnnouncementController) ListPending(ctx *gin.Context) {
	var page dto.PageRequest
	if !middleware.BindQuery(ctx, &page) {
		return
	}

	resp, err := c.announcementService.ListPending(ctx.Request.Context(), middleware.CurrentActor(ctx), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Audiences lists the audiences the caller may target
// @Summary Allowed audiences
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AllowedAudiencesResponse}
// @Router /announcements/audiences [get]
func (c *AnnouncementController) Audiences(ctx *gin.Context) {
	resp, err := c.announcementService.AllowedAudiences(middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Get returns a visible announcement
// @Summary Get announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id} [get]
func (c *AnnouncementController) Get(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.announcementService.Get(ctx.Request.Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// MarkRead records that the caller has read the announcement
// @Summary Mark announcement read
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id}/read [post]
func (c *AnnouncementController) MarkRead(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.announcementService.MarkRead(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Marked as read"}, ""))
}

// Approve publishes a pending announcement
// @Summary Approve announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID" Format(uuid)
// @Param request body dto.ReviewRequest false "Reviewer note"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Announcement already reviewed"
// @Router /announcements/{id}/approve [post]
func (c *AnnouncementController) Approve(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.announcementService.Approve(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Announcement approved"))
}

// Reject declines a pending announcement
// @Summary Reject announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID" Format(uuid)
// @Param request body dto.ReviewRequest false "Reviewer note"
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Announcement already reviewed"
// @Router /announcements/{id}/reject [post]
func (c *AnnouncementController) Reject(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.announcementService.Reject(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Announcement rejected"))
}

// Delete removes an announcement from every listing
// @Summary Delete announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path string true "Announcement ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "Announcement deleted"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse "Announcement not found"
// @Router /announcements/{id} [delete]
func (c *AnnouncementController) Delete(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.announcementService.Delete(ctx.Request.Context(), middleware.CurrentActor(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Announcement deleted"))
}
