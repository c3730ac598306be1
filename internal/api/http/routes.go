package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/meteo-station/internal/scheduler"
	"github.com/i474232898/meteo-station/internal/station"
	"github.com/i474232898/meteo-station/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *station.Service, sched *scheduler.Scheduler) {
	v1 := app.Group("/api/v1")

	v1.Post("/readings", func(c *fiber.Ctx) error {
		reading := service.Collect(c.UserContext(), "")
		return c.Status(fiber.StatusCreated).JSON(reading)
	})

	v1.Post("/readings/custom", func(c *fiber.Ctx) error {
		var req customFetchRequest
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading := service.Collect(c.UserContext(), req.URL)
		return c.Status(fiber.StatusCreated).JSON(reading)
	})

	v1.Get("/readings/latest", func(c *fiber.Ctx) error {
		reading, err := service.Latest(c.UserContext())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no readings stored yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load latest reading")
		}
		return c.JSON(reading)
	})

	v1.Get("/schedule", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"running":  sched.Running(),
			"interval": sched.Interval().String(),
		})
	})

	v1.Post("/schedule/start", func(c *fiber.Ctx) error {
		return c.JSON(scheduleResponse(sched, sched.Start()))
	})

	v1.Post("/schedule/stop", func(c *fiber.Ctx) error {
		return c.JSON(scheduleResponse(sched, sched.Stop()))
	})
}

func scheduleResponse(sched *scheduler.Scheduler, status scheduler.Status) fiber.Map {
	return fiber.Map{
		"running":  sched.Running(),
		"status":   status,
		"interval": sched.Interval().String(),
	}
}

// customFetchRequest is the body of a fetch from a caller-supplied URL.
type customFetchRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (r *customFetchRequest) bind(c *fiber.Ctx) error {
	if err := c.BodyParser(r); err != nil {
		return errors.New("body must be a JSON object with a url field")
	}
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" {
		return errors.New("url must not be blank")
	}
	return validate.Struct(r)
}
