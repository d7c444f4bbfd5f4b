package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/models"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
	"github.com/harborview/calendar-api/pkg/response"
)

type eventService interface {
	Create(ctx context.Context, calendar string, draft dto.EventDraft, autoDecline bool) (int, error)
	EditByKey(ctx context.Context, calendar, subject string, start, end time.Time, patch dto.EventPatch) (int, error)
	EditBySubject(ctx context.Context, calendar, subject string, from *time.Time, patch dto.EventPatch) (int, error)
	EventsOnDate(ctx context.Context, calendar string, day time.Time) ([]models.Event, error)
	EventsInRange(ctx context.Context, calendar string, from, to time.Time) ([]models.Event, error)
	AllEvents(ctx context.Context, calendar string) ([]models.Event, error)
	IsBusy(ctx context.Context, calendar string, at time.Time) (bool, error)
}

// EventHandler exposes the event endpoints of one calendar.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs the handler.
func NewEventHandler(service eventService) *EventHandler {
	return &EventHandler{service: service}
}

// Create godoc
// @Summary Create a single or recurring event
// @Tags Events
// @Accept json
// @Produce json
// @Param name path string true "Calendar name"
// @Param auto_decline query bool false "Reject the create on any conflict"
// @Param draft body dto.EventDraft true "Event draft"
// @Success 201 {object} response.Envelope
// @Router /calendars/{name}/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var draft dto.EventDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload"))
		return
	}

	autoDecline := false
	if raw := pickQuery(c, "auto_decline", "autoDecline"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "auto_decline must be a boolean"))
			return
		}
		autoDecline = parsed
	}

	created, err := h.service.Create(c.Request.Context(), c.Param("name"), draft, autoDecline)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.MutationResult{Occurrences: created})
}

// EditByKey godoc
// @Summary Edit the occurrence identified exactly by subject, start and end
// @Tags Events
// @Accept json
// @Produce json
// @Param name path string true "Calendar name"
// @Param request body dto.EditEventRequest true "Edit request"
// @Success 200 {object} response.Envelope
// @Router /calendars/{name}/events [put]
func (h *EventHandler) EditByKey(c *gin.Context) {
	var req dto.EditEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit payload"))
		return
	}
	if req.Subject == "" || req.Start == nil || req.End == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrIllegalArgument, "subject, start and end identify the event and are required"))
		return
	}

	edited, err := h.service.EditByKey(c.Request.Context(), c.Param("name"), req.Subject, req.Start.Time, req.End.Time, req.Patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MutationResult{Occurrences: edited}, nil)
}

// EditBySubject godoc
// @Summary Edit every occurrence sharing a subject, optionally from a start threshold
// @Tags Events
// @Accept json
// @Produce json
// @Param name path string true "Calendar name"
// @Param request body dto.EditSeriesRequest true "Edit request"
// @Success 200 {object} response.Envelope
// @Router /calendars/{name}/events [patch]
func (h *EventHandler) EditBySubject(c *gin.Context) {
	var req dto.EditSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit payload"))
		return
	}
	if req.Subject == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrIllegalArgument, "subject is required"))
		return
	}

	edited, err := h.service.EditBySubject(c.Request.Context(), c.Param("name"), req.Subject, req.From.TimePtr(), req.Patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MutationResult{Occurrences: edited}, nil)
}

// List godoc
// @Summary List events on a date, in a range, or all
// @Tags Events
// @Produce json
// @Param name path string true "Calendar name"
// @Param date query string false "Calendar day (YYYY-MM-DD)"
// @Param from query string false "Range start"
// @Param to query string false "Range end"
// @Success 200 {object} response.Envelope
// @Router /calendars/{name}/events [get]
func (h *EventHandler) List(c *gin.Context) {
	calendar := c.Param("name")
	ctx := c.Request.Context()

	if raw := c.Query("date"); raw != "" {
		day, err := parseQueryTime(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		events, err := h.service.EventsOnDate(ctx, calendar, day)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, events, nil)
		return
	}

	rawFrom, rawTo := c.Query("from"), c.Query("to")
	if rawFrom != "" || rawTo != "" {
		if rawFrom == "" || rawTo == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from and to must be supplied together"))
			return
		}
		from, err := parseQueryTime(rawFrom)
		if err != nil {
			response.Error(c, err)
			return
		}
		to, err := parseQueryTime(rawTo)
		if err != nil {
			response.Error(c, err)
			return
		}
		events, err := h.service.EventsInRange(ctx, calendar, from, to)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, events, nil)
		return
	}

	events, err := h.service.AllEvents(ctx, calendar)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Busy godoc
// @Summary Report whether an instant is busy
// @Tags Events
// @Produce json
// @Param name path string true "Calendar name"
// @Param at query string true "Instant (YYYY-MM-DDTHH:MM:SS)"
// @Success 200 {object} response.Envelope
// @Router /calendars/{name}/busy [get]
func (h *EventHandler) Busy(c *gin.Context) {
	raw := c.Query("at")
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "at is required"))
		return
	}
	at, err := parseQueryTime(raw)
	if err != nil {
		response.Error(c, err)
		return
	}

	busy, err := h.service.IsBusy(c.Request.Context(), c.Param("name"), at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"busy": busy}, nil)
}

func parseQueryTime(raw string) (time.Time, error) {
	parsed, err := dto.ParseLocalDateTime(raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return parsed.Time, nil
}

func pickQuery(c *gin.Context, preferred string, fallback string) string {
	if value := c.Query(preferred); value != "" {
		return value
	}
	return c.Query(fallback)
}
