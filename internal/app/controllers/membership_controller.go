package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// MembershipController handles the membership review queue
type MembershipController struct {
	membershipService services.MembershipService
}

// NewMembershipController creates a new MembershipController
func NewMembershipController(membershipService services.MembershipService) *MembershipController {
	return &MembershipController{membershipService: membershipService}
}

// ListMine returns the caller's memberships
// @Summary My memberships
// @Tags memberships
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipListResponse}
// @Router /memberships/mine [get]
func (c *MembershipController) ListMine(ctx *gin.Context) {
	var page dto.PageRequest
	if !middleware.BindQuery(ctx, &page) {
		return
	}

	resp, err := c.membershipService.ListMine(ctx.Request.Context(), middleware.CurrentActor(ctx), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// ListPending returns the pending requests the caller may review
// @Summary Pending memberships
// @Tags memberships
// @Produce json
// @Security BearerAuth
// @Param clubId query string false "Club filter" Format(uuid)
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipListResponse}
// @Failure 403 {object} dto.ErrorResponse "Club outside the caller's scope"
// @Router /memberships/pending [get]
func (c *MembershipController) ListPending(ctx *gin.Context) {
	var filter dto.PendingMembershipFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	clubID, ok := middleware.OptionalUUIDQuery(ctx, "clubId")
	if !ok {
		return
	}
	filter.ClubID = clubID

	resp, err := c.membershipService.ListPending(ctx.Request.Context(), middleware.CurrentActor(ctx), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Approve accepts a pending membership request
// @Summary Approve membership
// @Tags memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID" Format(uuid)
// @Param request body dto.ReviewRequest false "Reviewer note"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse}
// @Failure 403 {object} dto.ErrorResponse "Club outside the caller's scope"
// @Failure 409 {object} dto.ErrorResponse "Membership already reviewed"
// @Router /memberships/{id}/approve [post]
func (c *MembershipController) Approve(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.membershipService.Approve(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Membership approved"))
}

// Reject declines a pending membership request
// @Summary Reject membership
// @Tags memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID" Format(uuid)
// @Param request body dto.ReviewRequest false "Reason"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse}
// @Failure 403 {object} dto.ErrorResponse "Club outside the caller's scope"
// @Failure 409 {object} dto.ErrorResponse "Membership already reviewed"
// @Router /memberships/{id}/reject [post]
func (c *MembershipController) Reject(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.membershipService.Reject(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Membership rejected"))
}

// AssignRole changes the club role of an approved member
// @Summary Assign club role
// @Tags memberships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID" Format(uuid)
// @Param request body dto.AssignRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid role or privileged role held elsewhere"
// @Failure 403 {object} dto.ErrorResponse "Club outside the caller's scope"
// @Router /memberships/{id}/role [put]
func (c *MembershipController) AssignRole(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.membershipService.AssignRole(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Role updated"))
}

// Remove takes an approved member out of the club
// @Summary Remove member
// @Tags memberships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Membership ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.MembershipResponse}
// @Failure 400 {object} dto.ErrorResponse "Not an approved member or the club president"
// @Failure 403 {object} dto.ErrorResponse "Club outside the caller's scope"
// @Router /memberships/{id} [delete]
func (c *MembershipController) Remove(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.membershipService.Remove(ctx.Request.Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Member removed"))
}
