package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agendafacil/agenda-api/controllers"
)

// SetupAuthRoutes configures signup, login, logout and password recovery.
func SetupAuthRoutes(app *fiber.App, ac *controllers.AuthController, protected fiber.Handler) {
	users := app.Group("/users")

	// Public routes
	users.Post("/signup", ac.Signup)
	users.Post("/login", ac.Login)
	users.Post("/forgot-password", ac.ForgotPassword)
	users.Post("/change-password", ac.ChangePassword)

	// Protected routes
	users.Post("/logout", protected, ac.Logout)
}
