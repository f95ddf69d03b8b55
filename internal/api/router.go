// Package api exposes the directory, bookings and records over HTTP with echo.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/swasthya/internal/auth"
	"github.com/UnknownOlympus/swasthya/internal/geocoding"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/repository"
	"github.com/UnknownOlympus/swasthya/internal/service"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handler serves the public API.
type Handler struct {
	log       *slog.Logger
	directory *service.DirectoryService
	bookings  *service.BookingService
	records   *service.RecordService
	geocoder  geocoding.Provider
}

func NewHandler(
	log *slog.Logger,
	directory *service.DirectoryService,
	bookings *service.BookingService,
	records *service.RecordService,
	geocoder geocoding.Provider,
) *Handler {
	return &Handler{
		log:       log,
		directory: directory,
		bookings:  bookings,
		records:   records,
		geocoder:  geocoder,
	}
}

// RegisterRoutes mounts every endpoint on api. The group must run auth.Middleware.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/session", h.Session)
	api.GET("/geocode", h.Geocode)

	api.GET("/hospitals", h.ListHospitals)
	api.GET("/hospitals/search", h.SearchHospitals)
	api.GET("/hospitals/ambulance", h.ListAmbulances)
	api.GET("/hospitals/:id", h.GetHospital)
	api.GET("/hospitals/:id/links", h.GetHospitalLinks)

	users := api.Group("", auth.RequireRole(models.RoleUser))
	users.POST("/hospitals", h.CreateHospital)
	users.POST("/hospitals/:id/claim", h.ClaimHospital)
	users.POST("/bookings", h.CreateBooking)
	users.GET("/bookings", h.ListBookings)
	users.PATCH("/bookings/:id", h.UpdateBookingStatus)
	users.POST("/records", h.CreateRecord)
	users.GET("/records", h.ListRecords)
	users.DELETE("/records/:id", h.DeleteRecord)

	admins := api.Group("", auth.RequireRole(models.RoleAdmin))
	admins.PUT("/hospitals/:id", h.UpdateHospital)
	admins.PUT("/hospitals/:id/override", h.SetOverride)
	admins.DELETE("/hospitals/:id/override", h.ClearOverride)
	admins.GET("/hospitals/:id/bookings", h.ListHospitalBookings)
}

// NewRouter builds the echo instance serving the API under /api/v1.
func NewRouter(log *slog.Logger, resolver *auth.Resolver, handler *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))

	handler.RegisterRoutes(e.Group("/api/v1", auth.Middleware(resolver)))

	return e
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ctx := c.Request().Context()
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			switch {
			case v.Error != nil && v.Status >= http.StatusInternalServerError:
				log.ErrorContext(ctx, "Request failed", append(attrs, "error", v.Error)...)
				return nil
			case v.Error != nil:
				log.InfoContext(ctx, "Request rejected", append(attrs, "error", v.Error)...)
				return nil
			}
			log.DebugContext(ctx, "Request served", attrs...)
			return nil
		},
	})
}

// fail maps domain errors to HTTP errors. Unknown errors surface as 500.
func fail(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, models.ErrInvalidCoordinates):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrAlreadyClaimed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
