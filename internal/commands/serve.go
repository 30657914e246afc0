package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dailybriefing/internal/config"
	"dailybriefing/internal/handlers"
	"dailybriefing/internal/jobs"
	"dailybriefing/internal/middleware"
	"dailybriefing/internal/models"
	"dailybriefing/internal/preflight"
	"dailybriefing/internal/services"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var runOnStart bool

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the briefing on a cron schedule with an HTTP API",
	Long: `Start a long-running process that runs the briefing on SCHEDULE_CRON
(evaluated in SCHEDULE_TIMEZONE) and serves:

  GET  /health                 liveness
  GET  /api/briefing/schedule  next run and last result
  POST /api/briefing/run       run now
  GET  /metrics                Prometheus metrics`,
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run one briefing immediately after startup")
}

// newServer builds the fiber app with middleware and routes
func newServer(briefing *handlers.BriefingHandler, triggerAPIKey string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Daily Briefing " + AppVersion,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 20 * time.Minute, // POST /api/briefing/run blocks for the whole run
		IdleTimeout:  2 * time.Minute,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("daily_briefing")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/health", handlers.NewHealthHandler(AppVersion).Handle)

	api := app.Group("/api/briefing")
	api.Get("/schedule", briefing.Schedule)
	api.Post("/run", middleware.APIKeyMiddleware(triggerAPIKey), briefing.Run)

	return app
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Println("🚀 Starting Daily Briefing server...")
	if results := preflight.NewChecker(cfg).RunAll(); preflight.HasFailures(results) {
		return fmt.Errorf("pre-flight checks failed")
	}

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)
	job := jobs.NewDailyBriefingJob(func(ctx context.Context, trigger string) models.RunResult {
		return services.RunOnce(ctx, cfg, metrics, trigger)
	}, cfg.RunTimeout)

	scheduler, err := newBriefingScheduler(cfg, job)
	if err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}

	app := newServer(handlers.NewBriefingHandler(job, scheduler), cfg.TriggerAPIKey)

	if runOnStart {
		go func() {
			if err := scheduler.RunNow(jobs.DailyBriefingJobName); err != nil {
				log.Printf("⚠️  Startup run failed: %v", err)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("🛑 Shutting down server...")

		// drains an in-flight scheduled run, up to RUN_TIMEOUT plus its notification
		scheduler.Stop()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if cfg.TriggerAPIKey == "" {
		log.Println("⚠️  TRIGGER_API_KEY not set, POST /api/briefing/run is unauthenticated")
	}
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📊 Prometheus metrics endpoint enabled at /metrics")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func newBriefingScheduler(cfg *config.Config, job jobs.Job) (*jobs.JobScheduler, error) {
	scheduler, err := jobs.NewJobScheduler(cfg.RunTimeout + services.NotificationTimeout)
	if err != nil {
		return nil, err
	}

	schedule := jobs.Schedule{Cron: cfg.ScheduleCron, Timezone: cfg.ScheduleTimezone}
	if err := scheduler.Register(jobs.DailyBriefingJobName, job, schedule); err != nil {
		return nil, err
	}
	return scheduler, nil
}
