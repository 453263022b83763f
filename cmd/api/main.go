package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	redisRepo "github.com/cmlabs-hris/hris-attendance-go/internal/repository/redis"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	restrictionService "github.com/cmlabs-hris/hris-attendance-go/internal/service/restriction"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	loc := cfg.Location()

	transactor := postgresql.NewTransactor(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	restrictionRepo := postgresql.NewRestrictionRepository(db)

	var settingsRepo attendance.SettingsRepository = postgresql.NewSettingsRepository(db)
	if cfg.Redis.Addr != "" {
		client, err := redisRepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Redis unavailable, settings cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer client.Close()
			settingsRepo = redisRepo.NewSettingsCache(settingsRepo, client, cfg.Redis.CacheTTL)
			slog.Info("Settings cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL.String())
		}
	}

	if cfg.Attendance.IPBypassEnabled {
		slog.Warn("IP restriction bypass is enabled; IP mismatches will be recorded but not enforced")
	}
	evaluator := restrictionService.NewEvaluator(restrictionRepo, restrictionService.IPBypassPolicy{
		Enabled: cfg.Attendance.IPBypassEnabled,
	})

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		attendanceRepo,
		settingsRepo,
		employeeRepo,
		evaluator,
		loc,
	)
	settingsSvc := attendanceService.NewSettingsService(settingsRepo)
	restrictionSvc := restrictionService.NewRestrictionService(transactor, restrictionRepo, employeeRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	settingsHandler := appHTTP.NewSettingsHandler(settingsSvc)
	securityHandler := appHTTP.NewSecurityHandler(restrictionSvc)

	router := appHTTP.NewRouter(
		JWTService,
		attendanceHandler,
		settingsHandler,
		securityHandler,
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			Logger:         logger,
		},
	)

	scheduler := cron.NewScheduler(loc)
	jobs := cron.NewAttendanceJobs(attendanceSvc, loc)
	if err := jobs.RegisterJobs(scheduler, cfg.Cron.FinalizeSpec); err != nil {
		slog.Error("Error registering cron jobs", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}
