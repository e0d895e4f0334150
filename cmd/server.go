package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"forex-signals/internal/delivery/http"
	"forex-signals/internal/delivery/telegram"
	"forex-signals/internal/repository"
	"forex-signals/internal/service"
	"forex-signals/pkg/utils"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the signal bot, dashboard API and scheduler",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo, err := repository.NewRepository(appDep.cfg, appDep.cache, appDep.db.DB, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.NewService(
		appDep.cfg,
		appDep.log,
		repo,
		appDep.cache,
		appDep.sender,
	)

	httpHandler := http.NewHttpAPIHandler(ctx, appDep.cfg, appDep.echo, appDep.validator, services)

	telegramHandler := telegram.NewTelegramBotHandler(
		ctx,
		appDep.cfg,
		appDep.log,
		appDep.telegramBot,
		appDep.sender,
		appDep.echo,
		services,
		appDep.cache,
	)

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	utils.GoSafe(func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	})

	telegramHandler.Start()
	appDep.sender.StartCleanupExpired(ctx)

	if err := services.SchedulerService.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Long-poll only when no webhook is configured; with a webhook, updates
	// arrive through the echo endpoint.
	if appDep.cfg.Telegram.WebhookURL == "" {
		utils.GoSafe(func() {
			appDep.telegramBot.Start()
		})
	}

	<-ctx.Done()
	appDep.log.Info("Shutting down gracefully...")

	services.SchedulerService.Stop()
	telegramHandler.Stop()
	appDep.sender.StopCleanupExpired()

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
