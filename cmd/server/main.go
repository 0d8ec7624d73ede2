package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/example/campsbay/internal/config"
	"github.com/example/campsbay/internal/database"
	"github.com/example/campsbay/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if cfg.SeedOnStart {
		if err := database.Seed(db); err != nil {
			log.Printf("Seeding failed: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "Camps Bay Gallery",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	sessions := session.New(session.Config{
		CookieHTTPOnly: true,
	})

	routes.Register(app, db, cfg, sessions)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
