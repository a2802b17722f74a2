package main

import (
	"context"
	"errors"
	"glog/workout-server/internal/api"
	"glog/workout-server/internal/config"
	"glog/workout-server/internal/logging"
	"glog/workout-server/internal/repository"
	"glog/workout-server/internal/repository/memory"
	"glog/workout-server/internal/repository/mongo"
	"glog/workout-server/internal/service"
	"glog/workout-server/internal/session"
	"glog/workout-server/internal/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// @title glog Workout API
// @version 1.0
// @description Weekly workout plans, live workout sessions and workout history.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logging.New(os.Stderr, "info").Fatal("could not load config", "err", err)
	}

	logger := logging.New(os.Stderr, cfg.Log.Level)
	logger.Info("starting glog workout server")

	repos := openRepositories(cfg.Database, logger)
	defer repos.close()

	// --- Active workout store ---
	var stores service.StoreFactory
	sessionLogger := logging.With(logger, "session")
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		logger.Warn("active workouts are kept in memory and lost on restart")
		stores = service.MemoryStores(sessionLogger)
	default:
		dbPath, err := cfg.Session.DBPath()
		if err != nil {
			logger.Fatal("could not resolve session database path", "err", err)
		}
		boltDB, err := session.OpenBolt(dbPath)
		if err != nil {
			logger.Fatal("could not open session database", "path", dbPath, "err", err)
		}
		defer boltDB.Close()
		stores = service.BoltStores(boltDB, sessionLogger)
	}

	// --- Export storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, logging.With(logger, "storage"))
		if err != nil {
			logger.Fatal("failed to initialize S3 storage", "err", err)
		}
	} else {
		logger.Info("history export disabled: no s3 bucket configured")
	}

	// --- Services ---
	authService := service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanService(repos.plans, repos.exercises)
	historyService := service.NewHistoryService(repos.history, repos.plans)
	exportService := service.NewExportService(repos.history, fileStorage, cfg.S3.URLExpiry, logging.With(logger, "export"))
	workoutService := service.NewWorkoutService(planService, historyService, stores, session.SystemClock(), cfg.Session.TickInterval, sessionLogger)

	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware

	api.SetupRoutes(router, api.Services{
		Auth:    authService,
		Plans:   planService,
		History: historyService,
		Export:  exportService,
		Workout: workoutService,
	})

	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No write timeout: timer streams stay open for the whole workout.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", "err", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	logger.Info("server exiting")
}

type repositories struct {
	users     repository.UserRepository
	plans     repository.WorkoutPlanRepository
	exercises repository.ExerciseRepository
	history   repository.HistoryRepository
	close     func()
}

// openRepositories connects the configured database and starts index
// creation in the background.
func openRepositories(cfg config.DatabaseConfig, logger *log.Logger) repositories {
	if cfg.Driver == config.DatabaseMemory {
		logger.Warn("using the in-memory database; all data is lost on exit")
		db := memory.New()
		return repositories{
			users:     memory.NewUserRepository(db),
			plans:     memory.NewWorkoutPlanRepository(db),
			exercises: memory.NewExerciseRepository(db),
			history:   memory.NewHistoryRepository(db),
			close:     func() {},
		}
	}

	dbClient, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", "err", err)
	}
	appDB := dbClient.Database(cfg.Name)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			logger.Error("failed to ensure indexes", "err", err)
			return
		}
		logger.Info("database indexes ensured")
	}()

	return repositories{
		users:     mongo.NewMongoUserRepository(appDB),
		plans:     mongo.NewMongoWorkoutPlanRepository(appDB),
		exercises: mongo.NewMongoExerciseRepository(appDB),
		history:   mongo.NewMongoHistoryRepository(appDB),
		close: func() {
			logger.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				logger.Error("failed to disconnect MongoDB", "err", err)
			}
		},
	}
}
