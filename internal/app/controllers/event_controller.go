package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// EventController handles club event proposals
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// Propose submits an event for review
// @Summary Propose event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProposeEventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or inactive club"
// @Failure 403 {object} dto.ErrorResponse "Club outside the caller's scope"
// @Router /events [post]
func (c *EventController) Propose(ctx *gin.Context) {
	var req dto.ProposeEventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.eventService.Propose(ctx.Request.Context(), middleware.CurrentActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Event proposed"))
}

// List returns the events visible to the caller
// @Summary List events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(PENDING, APPROVED, REJECTED)
// @Param clubId query string false "Club filter" Format(uuid)
// @Param upcoming query bool false "Only future events"
// @Param search query string false "Title filter"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.EventListResponse}
// @Router /events [get]
func (c *EventController) List(ctx *gin.Context) {
	var filter dto.EventFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	clubID, ok := middleware.OptionalUUIDQuery(ctx, "clubId")
	if !ok {
		return
	}
	filter.ClubID = clubID

	resp, err := c.eventService.List(ctx.Request.Context(), middleware.CurrentActor(ctx), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Get returns an event with its review history
// @Summary Get event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.EventDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) Get(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.eventService.Get(ctx.Request.Context(), middleware.CurrentActor(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Approve publishes a pending event
// @Summary Approve event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Param request body dto.ReviewRequest false "Reviewer comment"
// @Success 200 {object} dto.APIResponse{data=dto.EventDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Club outside the caller's scope"
// @Failure 409 {object} dto.ErrorResponse "Event already reviewed"
// @Router /events/{id}/approve [post]
func (c *EventController) Approve(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.eventService.Approve(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Event approved"))
}

// Reject declines a pending event
// @Summary Reject event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID" Format(uuid)
// @Param request body dto.ReviewRequest false "Reviewer comment"
// @Success 200 {object} dto.APIResponse{data=dto.EventDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Club outside the caller's scope"
// @Failure 409 {object} dto.ErrorResponse "Event already reviewed"
// @Router /events/{id}/reject [post]
func (c *EventController) Reject(ctx *gin.Context) {
	id, ok := middleware.UUIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	resp, err := c.eventService.Reject(ctx.Request.Context(), middleware.CurrentActor(ctx), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Event rejected"))
}
