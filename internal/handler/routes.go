package handler

import (
	"go-catalog-ws/internal/middleware"
	"go-catalog-ws/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Routes groups the handlers mounted under /api.
type Routes struct {
	Products    *ProductHandler
	Auth        *AuthHandler
	Users       *UserHandler
	Dashboard   *DashboardHandler
	RequireAuth fiber.Handler
}

func (r Routes) Mount(app *fiber.App) {
	api := app.Group("/api")

	// ============ PUBLIC ROUTES ============
	sessions := api.Group("/sessions")
	sessions.Post("/register", r.Auth.Register)
	sessions.Post("/login", r.Auth.Login)
	sessions.Post("/logout", r.Auth.Logout)
	sessions.Get("/github", r.Auth.GitHubRedirect)
	sessions.Get("/github/callback", r.Auth.GitHubCallback)
	sessions.Get("/current", r.RequireAuth, r.Auth.Current)

	api.Get("/products", r.Products.GetProducts)
	api.Get("/products/:pid", r.Products.GetProduct)

	// ============ ADMIN ROUTES ============
	admin := []fiber.Handler{r.RequireAuth, middleware.RequireRole(model.RoleAdmin)}
	api.Post("/products", append(admin, r.Products.CreateProduct)...)
	api.Put("/products/:pid", append(admin, r.Products.UpdateProduct)...)
	api.Delete("/products/:pid", append(admin, r.Products.DeleteProduct)...)

	if r.Dashboard != nil {
		api.Get("/dashboard/stats", append(admin, r.Dashboard.GetStats)...)
	}
	if r.Users != nil {
		users := api.Group("/users", admin...)
		users.Get("/", r.Users.GetUsers)
		users.Get("/:uid", r.Users.GetUser)
		users.Put("/:uid/role", r.Users.UpdateUserRole)
		users.Delete("/:uid", r.Users.DeleteUser)
	}
}
