package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/canine-care-service/internal/api/http/handlers"
	"github.com/spec-kit/canine-care-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Account        *handlers.AccountHandler
	Dogs           *handlers.DogsHandler
	Billing        *handlers.BillingHandler
	Chat           *handlers.ChatHandler
	Admin          *handlers.AdminHandler
	Content        *handlers.ContentHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Staff.ChangePassword)

	// Provider callbacks and feedback are reachable without a session.
	app.Post("/stripe/webhook", cfg.Billing.Webhook)
	app.Post("/feedback", cfg.Content.SubmitFeedback)

	user := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireUser())

	// The session fetch accepts both verbs; older clients POST it.
	user.Get("/me", cfg.Account.Me)
	user.Post("/me", cfg.Account.Me)
	user.Put("/me", cfg.Account.UpdateProfile)
	user.Put("/me/preferences", cfg.Account.UpdatePreferences)
	user.Put("/me/payment-method", cfg.Account.UpdatePaymentMethod)

	user.Post("/dogs", cfg.Dogs.CreateDog)
	user.Get("/dogs", cfg.Dogs.ListDogs)
	user.Get("/dogs/selected", cfg.Dogs.SelectedDog)
	user.Post("/dogs/reevaluation", cfg.Dogs.SubmitReevaluation)
	user.Put("/dogs/:id/select", cfg.Dogs.SelectDog)
	user.Patch("/dogs/:id", cfg.Dogs.UpdateDog)
	user.Delete("/dogs/:id", cfg.Dogs.DeleteDog)
	user.Get("/dogs/:id/protocols", cfg.Dogs.ProtocolHistory)
	user.Get("/dogs/:id/last-submission", cfg.Dogs.LastSubmission)

	user.Get("/stripe/subscription", cfg.Billing.Subscription)
	user.Get("/stripe/plans", cfg.Billing.Plans)
	user.Get("/stripe/downgrade-preview", cfg.Billing.DowngradePreview)
	user.Post("/stripe/create-checkout-session", cfg.Billing.CreateCheckoutSession)
	user.Post("/stripe/create-portal-session", cfg.Billing.CreatePortalSession)
	user.Post("/stripe/cancel-subscription", cfg.Billing.CancelSubscription)

	user.Post("/conversations", cfg.Chat.StartConversation)
	user.Get("/conversations", cfg.Chat.ListConversations)
	user.Get("/conversations/:id", cfg.Chat.GetConversation)
	user.Post("/conversations/:id/messages", cfg.Chat.SendMessage)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())

	admin.Get("/submissions", cfg.Admin.ListSubmissions)
	admin.Post("/submissions/bulk-approve", cfg.Admin.BulkApprove)
	admin.Get("/submissions/:id", cfg.Admin.GetSubmission)
	admin.Put("/submissions/:id/status", cfg.Admin.UpdateSubmissionStatus)
	admin.Put("/submissions/:id/assign", cfg.Admin.AssignSubmission)

	admin.Get("/audit-log", cfg.Admin.AuditLog)

	// Staff management is admin-only; the service enforces the role.
	admin.Post("/staff", cfg.Admin.CreateStaff)
	admin.Get("/staff", cfg.Admin.ListStaff)
	admin.Put("/staff/:id", cfg.Admin.UpdateStaff)

	admin.Get("/notifications", cfg.Admin.ListNotifications)
	admin.Put("/notifications/:id/read", cfg.Admin.MarkNotificationRead)

	admin.Get("/conversations", cfg.Chat.StaffListConversations)
	admin.Get("/conversations/:id", cfg.Chat.StaffGetConversation)
	admin.Post("/conversations/:id/messages", cfg.Chat.StaffSendMessage)

	admin.Get("/articles", cfg.Content.ListArticles)
	admin.Get("/articles/:id", cfg.Content.GetArticle)
	admin.Get("/feedback", cfg.Content.ListFeedback)
}
