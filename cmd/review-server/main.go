package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/akireview/akireview/internal/config"
	"github.com/akireview/akireview/internal/domain/admission"
	"github.com/akireview/akireview/internal/domain/labs"
	"github.com/akireview/akireview/internal/domain/review"
	"github.com/akireview/akireview/internal/domain/reviewer"
	"github.com/akireview/akireview/internal/platform/auth"
	"github.com/akireview/akireview/internal/platform/db"
	"github.com/akireview/akireview/internal/platform/middleware"
	"github.com/akireview/akireview/internal/platform/retry"
)

// devSessionSecret signs tokens when no SESSION_SECRET is configured.
// config.Validate refuses this outside development.
const devSessionSecret = "dev-session-secret-not-for-production"

func main() {
	rootCmd := &cobra.Command{
		Use:   "review-server",
		Short: "AKI chart review server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the review API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadConfigAndPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(context.Background())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadConfigAndPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

// seedCase is one entry in the seed file: an admission plus its charted
// lab events.
type seedCase struct {
	CaseID       string     `json:"case_id"`
	Title        string     `json:"title"`
	HadmID       *string    `json:"hadm_id"`
	SummaryStep1 string     `json:"summary_step1"`
	SummaryStep2 string     `json:"summary_step2"`
	WeightKg     *float64   `json:"weight_kg"`
	AdmitTime    *time.Time `json:"admit_time"`
	Labs         []struct {
		Timestamp time.Time `json:"timestamp"`
		Kind      string    `json:"kind"`
		Value     float64   `json:"value"`
		Unit      string    `json:"unit"`
	} `json:"labs"`
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load cases and lab events from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			var seed struct {
				Cases []seedCase `json:"cases"`
			}
			if err := json.Unmarshal(raw, &seed); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			_, pool, err := loadConfigAndPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			admRepo := admission.NewAdmissionRepoPG(pool)
			labRepo := labs.NewLabRepoPG(pool)

			ctx := context.Background()
			err = db.WithTx(ctx, pool, func(ctx context.Context) error {
				for i, sc := range seed.Cases {
					adm := &admission.Admission{
						CaseID:       sc.CaseID,
						Title:        sc.Title,
						HadmID:       sc.HadmID,
						SummaryStep1: sc.SummaryStep1,
						SummaryStep2: sc.SummaryStep2,
						WeightKg:     sc.WeightKg,
						AdmitTime:    sc.AdmitTime,
						Position:     i,
					}
					if adm.Title == "" {
						adm.Title = adm.CaseID
					}
					if err := admRepo.Create(ctx, adm); err != nil {
						return fmt.Errorf("seed case %s: %w", sc.CaseID, err)
					}
					events := make([]*labs.LabEvent, 0, len(sc.Labs))
					for _, l := range sc.Labs {
						events = append(events, &labs.LabEvent{
							CaseID:    sc.CaseID,
							Timestamp: l.Timestamp,
							Kind:      l.Kind,
							Value:     l.Value,
							Unit:      l.Unit,
						})
					}
					if err := labRepo.BulkCreate(ctx, events); err != nil {
						return fmt.Errorf("seed labs for %s: %w", sc.CaseID, err)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d case(s).\n", len(seed.Cases))
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to the seed JSON file")
	return cmd
}

func loadConfigAndPool() (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		logger.Warn().Msg("SESSION_SECRET not set; using the development signing secret")
		secret = []byte(devSessionSecret)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Public routes: sign-in and health checks carry no token.
	public := e.Group("/api/v1")

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware(secret))
	} else {
		apiV1.Use(auth.JWTMiddleware(secret))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	public.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RequestTimeout(30 * time.Second))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// -- Domain wiring --

	admRepo := admission.NewAdmissionRepoPG(pool)
	admSvc := admission.NewService(admRepo)
	admission.NewHandler(admSvc).RegisterRoutes(apiV1)

	labRepo := labs.NewLabRepoPG(pool)
	labSvc := labs.NewService(labRepo, admRepo)
	labs.NewHandler(labSvc).RegisterRoutes(apiV1)

	// Response writes ride a retry policy so a flaky database connection
	// does not lose a reviewer's answers.
	respRepo := review.NewRetryingRepo(review.NewResponseRepoPG(pool), retry.DefaultPolicy())
	reviewSvc := review.NewService(respRepo, admRepo)
	review.NewHandler(reviewSvc).RegisterRoutes(apiV1)

	revRepo := reviewer.NewReviewerRepoPG(pool)
	revSvc := reviewer.NewService(revRepo, secret, time.Duration(cfg.SessionTTL)*time.Hour)
	revHandler := reviewer.NewHandler(revSvc)
	revHandler.RegisterPublicRoutes(public)
	revHandler.RegisterRoutes(apiV1)

	// Single-page UI
	e.Static("/", cfg.StaticDir)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
