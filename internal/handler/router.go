// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nd-labs/eduspace/internal/ai"
	"github.com/nd-labs/eduspace/internal/grader"
	"github.com/nd-labs/eduspace/internal/imaging"
	"github.com/nd-labs/eduspace/internal/middleware"
	"github.com/nd-labs/eduspace/internal/model"
	"github.com/nd-labs/eduspace/internal/service"
)

// Deps carries everything the router needs.
type Deps struct {
	DB          *sql.DB
	Sessions    *scs.SessionManager
	Auth        *service.AuthService
	Users       *service.UserService
	Courses     *service.CourseService
	Suggestions *service.SuggestionService
	Settings    *service.SettingsService
	Chat        *service.ChatService
	Events      *service.EventService
	Assistant   ai.Assistant
	Protection  *middleware.LoginProtection

	// CSRF wraps the state-changing routes. Nil disables it (tests).
	CSRF func(http.Handler) http.Handler
}

// Routes builds the API router.
func Routes(d Deps) *chi.Mux {
	authH := NewAuthHandler(d.Auth, d.Sessions, d.Protection)
	courseH := NewCourseHandler(d.Courses, grader.New(d.Assistant))
	studioH := NewStudioHandler(d.Courses, d.Assistant, imaging.NewProcessor())
	adminH := NewAdminHandler(d.Users, d.Events, d.Sessions)
	profileH := NewProfileHandler(d.Users)
	suggestH := NewSuggestionHandler(d.Suggestions)
	chatH := NewChatHandler(d.Chat, d.Sessions)
	settingsH := NewSettingsHandler(d.Settings)
	healthH := NewHealthHandler(d.DB)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/health", healthH.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(d.Sessions.LoadAndSave)
		if d.CSRF != nil {
			r.Use(d.CSRF)
		}
		r.Use(middleware.LoadUser(d.Sessions, d.Auth))

		// Public surface.
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/logout", authH.Logout)
		r.Get("/auth/me", authH.Me)

		r.Get("/settings", settingsH.Get)
		r.Get("/courses", courseH.List)
		r.Get("/courses/{courseID}", courseH.Get)

		// The assistant is open to guests as well.
		r.Get("/chat/sessions", chatH.Sessions)
		r.Post("/chat/send", chatH.Send)
		r.Delete("/chat/sessions", chatH.Clear)
		r.Delete("/chat/sessions/{sessionID}", chatH.DeleteSession)

		// Any signed-in account.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/courses/{courseID}/grade", courseH.Grade)
			r.Put("/profile", profileH.Update)
			r.Put("/profile/password", profileH.ChangePassword)
		})

		// Authoring: admins and approved developers.
		r.Route("/studio", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleAdmin, model.RoleDeveloper))
			r.Post("/courses", studioH.Save)
			r.Delete("/courses/{courseID}", studioH.Delete)
			r.Put("/courses/{courseID}/status", studioH.SetStatus)
			r.Post("/thumbnail", studioH.GenerateThumbnail)
		})

		// Suggestion box: role checks live in the service, since
		// admins and developers see different slices.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/suggestions", suggestH.Create)
			r.Get("/suggestions", suggestH.List)
			r.Put("/suggestions/{suggestionID}/status", suggestH.SetStatus)
		})

		// Admin panel.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleAdmin))
			r.Get("/users", adminH.ListUsers)
			r.Post("/verify", adminH.Verify)
			r.Put("/users/{userID}/role", adminH.SetRole)
			r.Put("/users/{userID}/approval", adminH.SetApproval)
			r.Post("/users/{userID}/vip", adminH.GrantVIP)
			r.Get("/events", adminH.Events)
			r.Put("/settings", settingsH.Update)

			// Destructive: demands the management password check.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdminVerified(d.Sessions))
				r.Delete("/users/{userID}", adminH.DeleteUser)
			})
		})
	})

	return r
}
