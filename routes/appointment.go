package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agendafacil/agenda-api/controllers"
	"github.com/agendafacil/agenda-api/middleware"
	"github.com/agendafacil/agenda-api/models"
)

// SetupAppointmentRoutes configures the slot lifecycle routes.
func SetupAppointmentRoutes(app *fiber.App, apc *controllers.AppointmentController, protected fiber.Handler) {
	appointments := app.Group("/appointments", protected)

	// Slot creation and professional-side listings
	appointments.Post("/professionals", middleware.RequireRoles(models.RoleAdmin, models.RoleProfessional), apc.CreateForSelf)
	appointments.Get("/professionals", middleware.RequireRoles(models.RoleAdmin, models.RoleProfessional), apc.ListOwn)
	appointments.Post("/professionals/:professionalId", middleware.RequireRoles(models.RoleAdmin, models.RoleProfessional), apc.CreateForProfessional)
	appointments.Get("/professionals/:professionalId", middleware.RequireRoles(models.RoleAdmin), apc.ListByProfessional)

	// Patient-side listing and lifecycle transitions
	appointments.Get("/only-available", middleware.RequireRoles(models.RoleAdmin, models.RolePatient), apc.ListAvailable)
	appointments.Put("/users/:appointmentId", middleware.RequireRoles(models.RoleAdmin, models.RolePatient), apc.Release)
	appointments.Put("/:appointmentId", middleware.RequireRoles(models.RoleAdmin, models.RolePatient), apc.Claim)
	appointments.Delete("/:appointmentId", middleware.RequireRoles(models.RoleAdmin, models.RolePatient), apc.Delete)

	patient := app.Group("/patient", protected)
	patient.Get("/my-appointments", middleware.RequireRoles(models.RoleAdmin, models.RolePatient), apc.MyAppointments)
}
