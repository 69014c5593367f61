package app

import (
	"context"

	"ecommerce/internal/config"
	"ecommerce/internal/db"
	"ecommerce/internal/handlers"
	"ecommerce/internal/logger"
	"ecommerce/internal/repository"
	"ecommerce/internal/routes"
	"ecommerce/internal/services"
	"ecommerce/internal/utils"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const mailQueueSize = 100

type App struct {
	Router *mux.Router

	pool      *pgxpool.Pool
	mailQueue *services.MailQueue
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	// Repositories
	userRepo := repository.NewUserRepository(conn)
	resetRepo := repository.NewPasswordResetRepository(conn)

	// Services
	tokens := utils.NewTokenCodec(utils.JWTConfig{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	resetStore := services.NewResetTokenStore(resetRepo, cfg.PasswordResetTTL)

	mailQueue := services.NewMailQueue(services.NewEmailService(cfg), mailQueueSize)
	mailQueue.Start(cfg.MailWorkers)
	resetMailer := services.NewResetMailer(mailQueue, cfg.FrontendURL, cfg.PasswordResetTTL)

	authService := services.NewAuthService(userRepo, tokens, resetStore, resetMailer, services.AuthOptions{
		RevealUnknownEmail: cfg.ResetRevealUnknownEmail,
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	logsHandler := handlers.NewAdminLogsHandler(cfg.LogDir)

	router := mux.NewRouter()
	routes.InitRoutes(router, authService, authHandler, logsHandler)

	logger.Log.Info("Application initialized",
		zap.String("db", cfg.GetDSNSafe()),
		zap.Int("mail_workers", cfg.MailWorkers),
		zap.Duration("reset_ttl", cfg.PasswordResetTTL),
	)

	return &App{Router: router, pool: conn, mailQueue: mailQueue}, nil
}

// Close drains pending mail and closes the pool.
func (a *App) Close() {
	a.mailQueue.Close()
	a.pool.Close()
}
