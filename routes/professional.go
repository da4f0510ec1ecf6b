package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agendafacil/agenda-api/controllers"
	"github.com/agendafacil/agenda-api/middleware"
	"github.com/agendafacil/agenda-api/models"
)

// SetupProfessionalRoutes configures professional management routes.
func SetupProfessionalRoutes(app *fiber.App, pc *controllers.ProfessionalController, protected fiber.Handler) {
	professionals := app.Group("/professionals", protected)

	professionals.Post("/", middleware.RequireRoles(models.RoleAdmin), pc.Create)
	professionals.Get("/", middleware.RequireRoles(models.RoleAdmin, models.RoleProfessional, models.RolePatient), pc.List)
}
