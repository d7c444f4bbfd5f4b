package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harborview/calendar-api/internal/dto"
	"github.com/harborview/calendar-api/internal/models"
	appErrors "github.com/harborview/calendar-api/pkg/errors"
)

type calendarRegistry interface {
	Create(cal models.Calendar) error
	Get(name string) (models.Calendar, error)
	List() []models.Calendar
	Update(name string, cal models.Calendar) error
	Delete(name string) error
}

// CalendarService manages calendar metadata. Timezones are IANA ids kept as
// metadata; they never shift event times.
type CalendarService struct {
	calendars calendarRegistry
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(calendars calendarRegistry, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{calendars: calendars, validate: validate, logger: logger}
}

// Create registers a calendar with a unique name and a valid IANA timezone.
func (s *CalendarService) Create(ctx context.Context, req dto.CreateCalendarRequest) (models.Calendar, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.Calendar{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := checkTimezone(req.Timezone); err != nil {
		return models.Calendar{}, err
	}

	cal := models.Calendar{Name: req.Name, Timezone: req.Timezone}
	if err := s.calendars.Create(cal); err != nil {
		return models.Calendar{}, err
	}
	s.logger.Info("calendar created", zap.String("name", req.Name), zap.String("timezone", req.Timezone))
	return s.calendars.Get(req.Name)
}

// Get returns one calendar.
func (s *CalendarService) Get(ctx context.Context, name string) (models.Calendar, error) {
	return s.calendars.Get(name)
}

// List returns all calendars.
func (s *CalendarService) List(ctx context.Context) []models.Calendar {
	return s.calendars.List()
}

// Update renames a calendar and/or changes its timezone. A rename keeps the
// event store intact but, like a series rename, detaches the old name from
// future lookups.
func (s *CalendarService) Update(ctx context.Context, name string, req dto.UpdateCalendarRequest) (models.Calendar, error) {
	cal, err := s.calendars.Get(name)
	if err != nil {
		return models.Calendar{}, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return models.Calendar{}, appErrors.Clone(appErrors.ErrValidation, "calendar name must not be empty")
		}
		cal.Name = *req.Name
	}
	if req.Timezone != nil {
		if err := checkTimezone(*req.Timezone); err != nil {
			return models.Calendar{}, err
		}
		cal.Timezone = *req.Timezone
	}
	if err := s.calendars.Update(name, cal); err != nil {
		return models.Calendar{}, err
	}
	return s.calendars.Get(cal.Name)
}

// Delete removes a calendar and all of its events.
func (s *CalendarService) Delete(ctx context.Context, name string) error {
	if err := s.calendars.Delete(name); err != nil {
		return err
	}
	s.logger.Info("calendar deleted", zap.String("name", name))
	return nil
}

func checkTimezone(tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "unknown IANA timezone: "+tz)
	}
	return nil
}
