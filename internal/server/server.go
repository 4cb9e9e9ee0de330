package server

import (
	"time"

	"backend-trailmeter/internal/config"
	"backend-trailmeter/internal/locate"
	"backend-trailmeter/internal/stream"
	"backend-trailmeter/internal/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	Redis   *redis.Client
	Stream  *stream.Hub
	Tracker *tracker.Tracker
}

func NewServer(cfg config.Config, provider locate.Provider, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	opts := locate.Options{
		HighAccuracy: true,
		Timeout:      time.Duration(cfg.ProbeTimeoutMS) * time.Millisecond,
	}

	s := &Server{
		App:     app,
		Cfg:     cfg,
		Redis:   redisClient,
		Stream:  hub,
		Tracker: tracker.New(provider, hub, opts),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	tracker.RegisterRoutes(s.App.Group("/session"), s.Tracker)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
