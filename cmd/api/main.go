package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	config "github.com/classmatch/api/configs"
	"github.com/classmatch/api/handlers"
	"github.com/classmatch/api/jobs"
	"github.com/classmatch/api/notifications"
	"github.com/classmatch/api/routes"
	"github.com/classmatch/api/services"
	"github.com/classmatch/api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Failed to load configuration: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connected successfully")

	notifier := notifications.NewNotifier(cfg)

	roster := services.NewRoster(st, notifier, cfg)
	matcher := services.NewMatcher(st, notifier, roster, cfg)
	users := services.NewUsers(st, notifier)
	classTypes := services.NewClassTypes(st)

	c := cron.New()
	archiver := jobs.NewAvailabilityArchiver(matcher, cfg.AvailabilityMaxAgeDays)
	c.AddFunc("@hourly", archiver.Run)
	go c.Start()
	log.Println("✅ Cron job for availability archival scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "ClassMatch",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": "internal server error",
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to ClassMatch API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	h := handlers.New(users, matcher, roster, classTypes)
	routes.ActionRoutes(app, h)

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
