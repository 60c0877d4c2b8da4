package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/canine-care-service/internal/api/http"
	"github.com/spec-kit/canine-care-service/internal/api/http/handlers"
	"github.com/spec-kit/canine-care-service/internal/auth"
	"github.com/spec-kit/canine-care-service/internal/billing"
	"github.com/spec-kit/canine-care-service/internal/cache"
	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/events"
	"github.com/spec-kit/canine-care-service/internal/observability"
	"github.com/spec-kit/canine-care-service/internal/persistence"
	"github.com/spec-kit/canine-care-service/internal/repository"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
	"github.com/spec-kit/canine-care-service/internal/service"
	"github.com/spec-kit/canine-care-service/internal/worker"
)

const snapshotTTL = 24 * time.Hour

type repositories struct {
	users         repository.UserRepository
	staff         repository.StaffRepository
	dogs          repository.DogRepository
	protocols     repository.ProtocolRepository
	submissions   repository.SubmissionRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	audit         repository.AuditLogRepository
	notifications repository.NotificationRepository
	articles      repository.ArticleRepository
	feedback      repository.FeedbackRepository
	payments      repository.PaymentEventRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.PoolHandle() != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	snapshots := cache.NewSnapshotCache(redis.Client, snapshotTTL)

	repos := buildRepositories(pg, logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:  repos.users,
		StaffRepo: repos.staff,
	})
	petService := service.NewPetService(service.PetDependencies{
		DogRepo:        repos.dogs,
		ProtocolRepo:   repos.protocols,
		SubmissionRepo: repos.submissions,
		Snapshots:      snapshots,
		Dispatcher:     dispatcher,
	})
	adminService := service.NewAdminService(*cfg, service.AdminDependencies{
		SubmissionRepo: repos.submissions,
		ProtocolRepo:   repos.protocols,
		StaffRepo:      repos.staff,
		AuditRepo:      repos.audit,
		Dispatcher:     dispatcher,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		ConversationRepo: repos.conversations,
		MessageRepo:      repos.messages,
		Dispatcher:       dispatcher,
	})
	billingService := service.NewBillingService(cfg.Billing, service.BillingDependencies{
		UserRepo:         repos.users,
		PaymentEventRepo: repos.payments,
		Gateway:          billing.NewStripeClient(cfg.Billing),
		Resolver:         billing.NewPlanResolver(cfg.Billing.PlanPriceIDs, cfg.Billing.PlanAmountCents),
		Snapshots:        snapshots,
		Dispatcher:       dispatcher,
	})
	accountService := service.NewAccountService(repos.users)
	articleService := service.NewArticleService(repos.articles)
	feedbackService := service.NewFeedbackService(repos.feedback)
	notificationService := service.NewNotificationService(repos.notifications, dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users, repos.staff)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService),
		Account:        handlers.NewAccountHandler(accountService),
		Dogs:           handlers.NewDogsHandler(petService),
		Billing:        handlers.NewBillingHandler(billingService),
		Chat:           handlers.NewChatHandler(chatService),
		Admin:          handlers.NewAdminHandler(adminService, notificationService),
		Content:        handlers.NewContentHandler(articleService, feedbackService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// buildRepositories picks the pgx-backed repositories when a database pool
// is available and falls back to in-memory stores otherwise.
func buildRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("running with in-memory repositories; data is not persisted")
		return repositories{
			users:         memory.NewUserRepository(),
			staff:         memory.NewStaffRepository(),
			dogs:          memory.NewDogRepository(),
			protocols:     memory.NewProtocolRepository(),
			submissions:   memory.NewSubmissionRepository(),
			conversations: memory.NewConversationRepository(),
			messages:      memory.NewMessageRepository(),
			audit:         memory.NewAuditLogRepository(),
			notifications: memory.NewNotificationRepository(),
			articles:      memory.NewArticleRepository(),
			feedback:      memory.NewFeedbackRepository(),
			payments:      memory.NewPaymentEventRepository(),
		}
	}
	return repositories{
		users:         repository.NewUserRepository(pool),
		staff:         repository.NewStaffRepository(pool),
		dogs:          repository.NewDogRepository(pool),
		protocols:     repository.NewProtocolRepository(pool),
		submissions:   repository.NewSubmissionRepository(pool),
		conversations: repository.NewConversationRepository(pool),
		messages:      repository.NewMessageRepository(pool),
		audit:         repository.NewAuditLogRepository(pool),
		notifications: repository.NewNotificationRepository(pool),
		articles:      repository.NewArticleRepository(pool),
		feedback:      repository.NewFeedbackRepository(pool),
		payments:      repository.NewPaymentEventRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
