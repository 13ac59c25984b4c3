package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"iaction/internal/config"
	"iaction/internal/fulfillment"
	"iaction/internal/handler"
	"iaction/internal/infra/cms"
	"iaction/internal/infra/db"
	"iaction/internal/infra/email"
	infraRepo "iaction/internal/infra/repository"
	"iaction/internal/logger"
	"iaction/internal/refcode"
	"iaction/internal/sepay"
	"iaction/internal/server"
	"iaction/internal/usecase"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "run schema migration before serving")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, autoMigrate bool) error {
	log := logger.New(cfg.GoEnv, cfg.LogLevel)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if autoMigrate {
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス
	content := cms.NewCachedReader(cms.NewClient(cfg.Sanity), cfg.Sanity.CacheTTL, cfg.Sanity.CacheSize)
	var mailer fulfillment.Mailer = email.DisabledMailer{}
	if cfg.Resend.APIKey != "" {
		mailer = email.NewResendMailer(cfg.Resend.APIKey)
	} else {
		log.Warn("RESEND_API_KEY not set; emails will not be sent")
	}
	dispatcher := fulfillment.NewDispatcher(mailer, content, log, cfg.Resend.SenderEmail, cfg.SiteURL)

	bank := sepay.FromConfig(cfg.Sepay)
	if !bank.Configured() {
		log.Warn("sepay bank account not configured; payment creation will fail")
	}
	if !bank.AuthEnforced() {
		log.Warn("SEPAY_WEBHOOK_API_KEY not set; webhook authentication disabled")
	}

	clock := &realClock{}
	codes := refcode.NewGenerator(clock, cfg.Location())

	//Usecase生成
	sessionUC := usecase.NewPaymentSessionUsecase(orderRepo, paymentRepo, codes, bank, clock, log)
	webhookUC := usecase.NewWebhookUsecase(txm, orderRepo, paymentRepo, bank, dispatcher, log)
	enrollUC := usecase.NewEnrollmentUsecase(dispatcher, log)
	contentUC := usecase.NewContentUsecase(content, log)
	adminUC := usecase.NewAdminOrderUsecase(txm, orderRepo, paymentRepo, auditRepo, dispatcher, log)

	//Handler生成
	e := server.New(log, cfg.FEURL)
	server.RegisterRoutes(e, server.Handlers{
		Payment: handler.NewPaymentHandler(sessionUC),
		Webhook: handler.NewWebhookHandler(webhookUC),
		Enroll:  handler.NewEnrollHandler(enrollUC),
		Content: handler.NewContentHandler(contentUC),
		Admin:   handler.NewAdminOrderHandler(adminUC, content),
	}, server.RateLimit{PerSecond: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}, cfg.AdminJWTSecret)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, e, server.Addr(cfg.Port), dispatcher, log)
}
