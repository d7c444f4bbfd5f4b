package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/models"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
	"github.com/harborview/calendar-api/pkg/response"
)

type calendarService interface {
	Create(ctx context.Context, req dto.CreateCalendarRequest) (models.Calendar, error)
	Get(ctx context.Context, name string) (models.Calendar, error)
	List(ctx context.Context) []models.Calendar
	Update(ctx context.Context, name string, req dto.UpdateCalendarRequest) (models.Calendar, error)
	Delete(ctx context.Context, name string) error
}

// CalendarHandler exposes calendar management endpoints.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// Create godoc
// @Summary Create a calendar
// @Tags Calendars
// @Accept json
// @Produce json
// @Param request body dto.CreateCalendarRequest true "Calendar"
// @Success 201 {object} response.Envelope
// @Router /calendars [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req dto.CreateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar payload"))
		return
	}

	cal, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cal)
}

// List godoc
// @Summary List calendars
// @Tags Calendars
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendars [get]
func (h *CalendarHandler) List(c *gin.Context) {
	calendars := h.service.List(c.Request.Context())
	pagination := &models.Pagination{Page: 1, PageSize: len(calendars), TotalCount: len(calendars)}
	response.JSON(c, http.StatusOK, calendars, pagination)
}

// Get godoc
// @Summary Get a calendar
// @Tags Calendars
// @Produce json
// @Param name path string true "Calendar name"
// @Success 200 {object} response.Envelope
// @Router /calendars/{name} [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	cal, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cal, nil)
}

// Update godoc
// @Summary Rename a calendar or change its timezone
// @Tags Calendars
// @Accept json
// @Produce json
// @Param name path string true "Calendar name"
// @Param request body dto.UpdateCalendarRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /calendars/{name} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	var req dto.UpdateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar payload"))
		return
	}

	cal, err := h.service.Update(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cal, nil)
}

// Delete godoc
// @Summary Delete a calendar and its events
// @Tags Calendars
// @Param name path string true "Calendar name"
// @Success 204
// @Router /calendars/{name} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
