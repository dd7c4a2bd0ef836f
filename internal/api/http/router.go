package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/api/http/handlers"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Sessions          *handlers.SessionHandler
	Access            *handlers.AccessHandler
	Hierarchy         *handlers.HierarchyHandler
	Directory         *handlers.DirectoryHandler
	Notes             *handlers.NoteHandler
	Teams             *handlers.TeamHandler
	Permissions       *handlers.PermissionHandler
	Tasks             *handlers.TaskHandler
	Registrations     *handlers.RegistrationHandler
	Activity          *handlers.ActivityHandler
	SessionMiddleware *auth.SessionMiddleware
	Metrics           *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api", cfg.SessionMiddleware.Handle)

	authGroup := api.Group("/auth")
	authGroup.Post("/admin/login", cfg.Sessions.LoginAdmin)
	authGroup.Post("/team/login", cfg.Sessions.LoginTeamMember)
	authGroup.Post("/member/login", cfg.Sessions.LoginMember)
	authGroup.Post("/guest/login", cfg.Sessions.LoginGuest)
	authGroup.Post("/register", cfg.Sessions.Register)
	authGroup.Post("/logout", auth.RequireAuthenticated(), cfg.Sessions.Logout)

	api.Get("/me", cfg.Access.Me)

	hierarchy := api.Group("/hierarchy", auth.RequireCapability(access.CapHierarchyView))
	hierarchy.Get("/", cfg.Hierarchy.Summary)
	hierarchy.Get("/superior-options", cfg.Hierarchy.SuperiorOptions)

	api.Get("/panchayaths", auth.RequireAuthenticated(), cfg.Directory.ListPanchayaths)
	api.Post("/panchayaths", auth.RequireCapability(access.CapSettings), cfg.Directory.CreatePanchayath)
	api.Get("/agents", auth.RequireCapability(access.CapHierarchyView), cfg.Directory.ListAgents)
	api.Get("/agents/:id", auth.RequireCapability(access.CapHierarchyView), cfg.Directory.GetAgent)
	api.Post("/agents", auth.RequireCapability(access.CapSettings), cfg.Directory.CreateAgent)

	notes := api.Group("/notes", auth.RequireCapability(access.CapPanchayathNotes))
	notes.Get("/", cfg.Notes.List)
	notes.Post("/", cfg.Notes.Create)
	notes.Put("/:id", cfg.Notes.Update)
	notes.Delete("/:id", cfg.Notes.Delete)

	// gated per route: /teams/:id/permissions needs permission_management only
	teamGate := auth.RequireCapability(access.CapTeamManagement)
	api.Get("/teams", teamGate, cfg.Teams.List)
	api.Post("/teams", teamGate, cfg.Teams.Create)
	api.Get("/teams/:id", teamGate, cfg.Teams.Get)
	api.Put("/teams/:id", teamGate, cfg.Teams.Update)
	api.Delete("/teams/:id", teamGate, cfg.Teams.Delete)
	api.Post("/teams/:id/members", teamGate, cfg.Teams.AddMember)
	api.Delete("/teams/:id/members/:agentId", teamGate, cfg.Teams.RemoveMember)

	grantGate := auth.RequireCapability(access.CapPermissionManagement)
	api.Get("/teams/:id/permissions", grantGate, cfg.Permissions.ListTeamGrants)
	api.Post("/teams/:id/permissions", grantGate, cfg.Permissions.GrantTeam)
	api.Delete("/teams/:id/permissions/:permissionId", grantGate, cfg.Permissions.RevokeTeam)

	permissions := api.Group("/permissions", auth.RequireCapability(access.CapPermissionManagement))
	permissions.Get("/", cfg.Permissions.List)
	permissions.Post("/", cfg.Permissions.Create)
	permissions.Put("/:id", cfg.Permissions.Update)
	permissions.Delete("/:id", cfg.Permissions.Delete)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.Post("/users", cfg.Sessions.CreateAdminUser)
	admin.Get("/users/:id/permissions", cfg.Permissions.ListUserGrants)
	admin.Post("/users/:id/permissions", cfg.Permissions.GrantUser)
	admin.Delete("/users/:id/permissions/:permissionId", cfg.Permissions.RevokeUser)

	tasks := api.Group("/tasks", auth.RequireCapability(access.CapTaskManagement))
	tasks.Get("/", cfg.Tasks.List)
	tasks.Post("/", cfg.Tasks.Create)
	tasks.Patch("/:id/status", cfg.Tasks.UpdateStatus)

	registrations := api.Group("/registrations", auth.RequireCapability(access.CapMemberManagement))
	registrations.Get("/", cfg.Registrations.List)
	registrations.Post("/:id/review", cfg.Registrations.Review)

	api.Get("/activity", auth.RequireCapability(access.CapChat), cfg.Activity.List)
}
