package httpapi

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/theme"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, ctrl *dashboard.Controller) {
	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.State())
	})

	v1.Post("/select", func(c *fiber.Ctx) error {
		var req selectRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		if err := ctrl.SelectCity(c.UserContext(), req.Selector); err != nil {
			return actionError(err)
		}
		return c.JSON(ctrl.State())
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		var req favoriteRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		if err := ctrl.AddFavorite(c.UserContext(), req.Name); err != nil {
			return actionError(err)
		}
		return c.JSON(ctrl.State())
	})

	v1.Delete("/favorites/:name", func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil || name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city name")
		}
		if err := ctrl.RemoveFavorite(c.UserContext(), utils.CopyString(name)); err != nil {
			return actionError(err)
		}
		return c.JSON(ctrl.State())
	})

	v1.Post("/dashboard/toggle", func(c *fiber.Ctx) error {
		ctrl.ToggleDashboard(c.UserContext())
		return c.JSON(ctrl.State())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		if err := ctrl.Refresh(c.UserContext()); err != nil {
			return actionError(err)
		}
		return c.JSON(ctrl.State())
	})

	v1.Get("/suggest", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"query":       c.Query("q"),
			"suggestions": ctrl.Suggest(c.Query("q")),
		})
	})

	v1.Post("/location", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		coords := weather.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
		if err := ctrl.UseCoordinates(c.UserContext(), coords); err != nil {
			return actionError(err)
		}
		return c.JSON(ctrl.State())
	})

	v1.Post("/location/detect", func(c *fiber.Ctx) error {
		if err := ctrl.LocateDevice(c.UserContext()); err != nil {
			return actionError(err)
		}
		return c.JSON(ctrl.State())
	})

	v1.Get("/notifications", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"notifications": ctrl.Notifications(),
		})
	})

	v1.Get("/theme/:code", func(c *fiber.Ctx) error {
		code, err := strconv.Atoi(c.Params("code"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "weather code must be an integer")
		}
		cond := weather.Describe(code)
		return c.JSON(fiber.Map{
			"code":      code,
			"condition": cond,
			"theme":     theme.Derive(cond.BaseColor, cond.Description),
		})
	})
}

// selectRequest selects a favorite, a catalog city or the current location.
type selectRequest struct {
	Selector string `json:"selector" validate:"required"`
}

type favoriteRequest struct {
	Name string `json:"name" validate:"required"`
}

// locationRequest carries coordinates reported by the browser.
type locationRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

func bindBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(err error) int {
	switch weather.KindOf(err) {
	case weather.KindInvalidInput:
		return fiber.StatusBadRequest
	case weather.KindNotFound:
		return fiber.StatusNotFound
	case weather.KindUpstreamUnavailable:
		return fiber.StatusBadGateway
	case weather.KindGeolocationDenied, weather.KindGeolocationTimeout:
		return fiber.StatusFailedDependency
	default:
		return fiber.StatusInternalServerError
	}
}

// kindError carries the error kind next to the HTTP status.
type kindError struct {
	fe   *fiber.Error
	kind weather.Kind
}

func (e *kindError) Error() string { return e.fe.Message }
func (e *kindError) Unwrap() error { return e.fe }

func actionError(err error) error {
	return &kindError{
		fe:   fiber.NewError(StatusFor(err), err.Error()),
		kind: weather.KindOf(err),
	}
}

// ErrorHandler renders every error as {"error", "kind", "message"} JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := weather.KindInternal

	var ke *kindError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ke):
		code = ke.fe.Code
		kind = ke.kind
	case errors.As(err, &fe):
		code = fe.Code
		if code == fiber.StatusBadRequest {
			kind = weather.KindInvalidInput
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"kind":    kind,
		"message": err.Error(),
	})
}
