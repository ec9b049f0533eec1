package handler

import (
	"github.com/gofiber/fiber/v2"

	"doctrack/internal/http/middleware"
	"doctrack/internal/service"
	"doctrack/internal/session"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Authentication is attached per route so unknown paths still answer 404.
func RegisterRoutes(app *fiber.App, db Pinger, authSvc service.AuthService, sessions *session.Manager) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/signup", SignUp(authSvc))
	app.Post("/auth/signin", SignIn(authSvc))

	auth := middleware.Auth(authSvc)

	app.Post("/auth/signout", auth, SignOut(authSvc, sessions))
	app.Get("/me", auth, Me(sessions))
	app.Get("/dashboard", auth, Dashboard(sessions))

	app.Get("/documents", auth, ListDocuments(sessions))
	app.Post("/documents", auth, UploadDocument(sessions))
	app.Get("/documents/options", auth, DocumentOptions())
	app.Get("/documents/:id", auth, GetDocument(sessions))
	app.Delete("/documents/:id", auth, DeleteDocument(sessions))
	app.Get("/documents/:id/history", auth, DocumentHistory(sessions))
	app.Get("/documents/:id/download", auth, DownloadDocument(sessions))
	app.Get("/documents/:id/file", auth, DocumentFile(sessions))
	app.Patch("/documents/:id/status", auth, UpdateDocumentStatus(sessions))
	app.Post("/documents/:id/comments", auth, AddDocumentComment(sessions))
	app.Put("/documents/:id/team", auth, UpdateDocumentTeam(sessions))
	app.Put("/documents/:id/assignment", auth, UpdateDocumentAssignment(sessions))

	app.Get("/teams", auth, ListTeams(sessions))
	app.Post("/teams", auth, CreateTeam(sessions))
	app.Delete("/teams/:id", auth, DeleteTeam(sessions))
	app.Get("/teams/:id/members", auth, ListMembers(sessions))
	app.Post("/teams/:id/members", auth, AddMember(sessions))
	app.Delete("/teams/:id/members/:userId", auth, RemoveMember(sessions))
	app.Post("/teams/:id/leave", auth, LeaveTeam(sessions))
	app.Post("/teams/:id/transfer", auth, TransferOwnership(sessions))

	app.Get("/notifications", auth, ListNotifications(sessions))
	app.Post("/notifications/read-all", auth, MarkAllNotificationsRead(sessions))
	app.Post("/notifications/:id/read", auth, MarkNotificationRead(sessions))
}
