package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// ClubController handles club directory and membership requests
type ClubController struct {
	clubService       services.ClubService
	membershipService services.MembershipService
}

// NewClubController creates a new ClubController
func NewClubController(clubService services.ClubService, membershipService services.MembershipService) *ClubController {
	return &ClubController{
		clubService:       clubService,
		membershipService: membershipService,
	}
}

// ListClubs lists active clubs
// @Summary List clubs
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name filter"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ClubListResponse}
// @Router /clubs [get]
func (c *ClubController) ListClubs(ctx *gin.Context) {
	var filter dto.ClubFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	resp, err := c.clubService.List(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetClub returns a single club
// @Summary Get club
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Club ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.ClubResponse}
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Router /clubs/{id} [get]
func (c *ClubController) GetClub(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.clubService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// ListMyClubs lists the clubs the caller presides over
// @Summary Presided clubs
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ClubResponse}
// @Failure 403 {object} dto.ErrorResponse "Caller is not a president"
// @Router /clubs/mine [get]
func (c *ClubController) ListMyClubs(ctx *gin.Context) {
	resp, err := c.clubService.ListPresided(ctx.Request.Context(), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// RequestMembership asks to join a club
// @Summary Request membership
// @Tags memberships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Club ID" Format(uuid)
// @Success 201 {object} dto.APIResponse{data=dto.MembershipResponse}
// @Failure 404 {object} dto.ErrorResponse "Club not found"
// @Failure 409 {object} dto.ErrorResponse "Open membership already exists or club inactive"
// @Router /clubs/{id}/memberships [post]
func (c *ClubController) RequestMembership(ctx *gin.Context) {
	clubID, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.membershipService.Request(ctx.Request.Context(), middleware.CurrentActor(ctx), clubID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Membership requested"))
}

// CancelMembership withdraws the caller's pending request
// @Summary Cancel membership request
// @Tags memberships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Club ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse}
// @Failure 400 {object} dto.ErrorResponse "No pending request"
// @Router /clubs/{id}/memberships [delete]
func (c *ClubController) CancelMembership(ctx *gin.Context) {
	clubID, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.membershipService.Cancel(ctx.Request.Context(), middleware.CurrentActor(ctx), clubID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Membership request cancelled"))
}
