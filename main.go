package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/agendafacil/agenda-api/auth"
	"github.com/agendafacil/agenda-api/config"
	"github.com/agendafacil/agenda-api/controllers"
	"github.com/agendafacil/agenda-api/cron"
	"github.com/agendafacil/agenda-api/db"
	"github.com/agendafacil/agenda-api/middleware"
	"github.com/agendafacil/agenda-api/redis"
	"github.com/agendafacil/agenda-api/routes"
	"github.com/agendafacil/agenda-api/scheduling"
	"github.com/agendafacil/agenda-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Println("Database connection established")

	redisClient, err := redis.NewClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	denylist := redis.NewDenylist(redisClient)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	mailer := utils.NewMailer(cfg)
	svc := scheduling.NewService(gdb, cfg.StrictClaim, cfg.UniqueSlotTimes)

	authController := controllers.NewAuthController(gdb, tokens, mailer, denylist, cfg)
	professionalController := controllers.NewProfessionalController(gdb)
	appointmentController := controllers.NewAppointmentController(gdb, svc)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())

	protected := middleware.Protected(tokens, denylist)
	routes.SetupAuthRoutes(app, authController, protected)
	routes.SetupProfessionalRoutes(app, professionalController, protected)
	routes.SetupAppointmentRoutes(app, appointmentController, protected)

	jobs := cron.NewJobs(gdb, mailer)
	if err := jobs.Start(); err != nil {
		log.Fatal("Failed to start cron jobs: ", err)
	}

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped: ", err)
	}
}
