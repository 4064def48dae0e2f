package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "github.com/w4xxwrld/aiga-connect-sub000/docs"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/booking"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/class"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/config"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/db"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/email"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/family"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/logger"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/schedule"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/server"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/training"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/user"
)

// @title AIGA Connect API
// @version 1.0
// @description Class booking and individual training scheduling for a grappling academy.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting AIGA Connect")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	policy, err := schedule.ParseSameDayPolicy(cfg.SameDayPolicy)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	calc := schedule.NewCalculator(policy, cfg.Location())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Connecting to database...")
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()
	go emailService.Start(ctx)
	logger.Info("Email service initialized")

	userRepo := user.NewRepository(database)
	classRepo := class.NewRepository(database)
	familyRepo := family.NewRepository(database)
	bookingRepo := booking.NewRepository(database)
	trainingRepo := training.NewRepository(database)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	familyService := family.NewService(familyRepo, userRepo)
	classService := class.NewService(classRepo, bookingRepo, calc)
	bookingService := booking.NewService(bookingRepo, classRepo, familyService, userRepo, emailService, calc)
	trainingService := training.NewService(trainingRepo, familyService, userRepo, emailService, calc)

	sweeper := booking.NewSweeper(bookingRepo, bookingService, calc, cfg.SweepInterval)
	go sweeper.Start(ctx)

	srv := server.New(cfg, database, server.Handlers{
		User:     user.NewHandler(userService),
		Class:    class.NewHandler(classService),
		Booking:  booking.NewHandler(bookingService),
		Training: training.NewHandler(trainingService),
		Family:   family.NewHandler(familyService),
	}, emailService)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
