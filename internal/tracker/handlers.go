package tracker

import (
	"errors"

	"backend-trailmeter/internal/locate"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, t *Tracker) {
	r.Post("/start", func(c *fiber.Ctx) error {
		snap, err := t.Start(c.Context(), c.Get("User-Agent"))
		if err != nil {
			if errors.Is(err, ErrNotIdle) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			var cerr *locate.Error
			if errors.As(err, &cerr) {
				return c.Status(statusForKind(cerr.Kind)).JSON(snap)
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	})

	r.Post("/stop", func(c *fiber.Ctx) error {
		return c.JSON(t.Stop())
	})

	r.Post("/reset", func(c *fiber.Ctx) error {
		snap, err := t.Reset()
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.JSON(snap)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(t.Snapshot())
	})
}

func statusForKind(k locate.Kind) int {
	switch k {
	case locate.KindPermissionDenied:
		return fiber.StatusForbidden
	case locate.KindTimeout:
		return fiber.StatusGatewayTimeout
	case locate.KindUnsupported:
		return fiber.StatusNotImplemented
	case locate.KindPositionUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadGateway
	}
}
