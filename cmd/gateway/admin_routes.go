package main

import (
	"github.com/go-chi/chi/v5"

	api "github.com/mind-engage/learnportal/internal/api/http"
	rbac "github.com/mind-engage/learnportal/internal/rbac"
)

// mountAdminRoutes wires user management and the audit feed.
func mountAdminRoutes(r chi.Router, a *app) {
	r.With(rbac.Require("users:list")).Get("/users", api.ListUsersHandler(a.store))
	r.With(rbac.Require("users:create")).Post("/users", api.CreateUserHandler(a.store))
	r.With(rbac.Require("users:bulk_upsert")).Post("/users/bulk", api.BulkUpsertUsersHandler(a.store))
	r.With(rbac.Require("users:update")).Put("/users/{userID}/role", api.AdminUpdateUserRoleHandler(a.store))
	r.With(rbac.Require("users:delete")).Delete("/users/{userID}", api.DeleteUserHandler(a.store))
	r.With(rbac.Require("users:export")).Get("/users/{userID}/export", api.HandleAdminUserExport(a.store))

	r.With(rbac.Require("audit:view")).Get("/events", api.HandleAdminEvents(a.events))
}
