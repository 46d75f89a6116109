package controllers

import (
	"net/http"

	"eventhub-be/internal/apperror"
	"eventhub-be/internal/models"
	"eventhub-be/internal/service"

	"github.com/gin-gonic/gin"
)

type EventController struct {
	eventService service.EventService
}

func NewEventController(eventService service.EventService) *EventController {
	return &EventController{
		eventService: eventService,
	}
}

// List handles GET /api/events
func (ec *EventController) List(c *gin.Context) {
	var filter models.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, apperror.NewBadRequest("Invalid query parameters"))
		return
	}

	events, err := ec.eventService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// Create handles POST /api/events
func (ec *EventController) Create(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.CreateEventRequest
	if !bindJSON(c, &req, "Please include all required fields") {
		return
	}

	event, err := ec.eventService.Create(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// Get handles GET /api/events/:id
func (ec *EventController) Get(c *gin.Context) {
	event, err := ec.eventService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Update handles PUT /api/events/:id
func (ec *EventController) Update(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.UpdateEventRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	event, err := ec.eventService.Update(c.Request.Context(), id, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Delete handles DELETE /api/events/:id
func (ec *EventController) Delete(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	if err := ec.eventService.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Event deleted"})
}

// Join handles PUT /api/events/join/:id
func (ec *EventController) Join(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	event, err := ec.eventService.Join(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.JoinResponse{Message: "Successfully joined event", Event: *event})
}

// MyEvents handles GET /api/events/my-events
func (ec *EventController) MyEvents(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	events, err := ec.eventService.MyEvents(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
