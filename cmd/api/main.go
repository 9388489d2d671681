package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learnhub-api/internal/config"
	"github.com/noah-isme/learnhub-api/internal/database"
	"github.com/noah-isme/learnhub-api/internal/events"
	"github.com/noah-isme/learnhub-api/internal/handler"
	"github.com/noah-isme/learnhub-api/internal/middleware"
	"github.com/noah-isme/learnhub-api/internal/repository"
	"github.com/noah-isme/learnhub-api/internal/router"
	"github.com/noah-isme/learnhub-api/internal/service"
	cloud "github.com/noah-isme/learnhub-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	probes := map[string]handler.Probe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()

		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		logger.Warn().Msg("redis not configured; dashboard cache and logout revocation disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()

		probes["nats"] = func(ctx context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}

	var storage service.FileStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		imageStore, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		storage = imageStore
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(redisClient, cfg.EventChannel, natsConn, logger)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	lectureRepo := repository.NewLectureRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	var revoker service.TokenRevoker
	var revocations middleware.RevocationChecker
	if redisClient != nil {
		revoker = service.NewRedisTokenRevoker(redisClient)
		revocations = revoker
	}

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, lectureRepo, revoker, service.AuthConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}, validate, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, bus, validate, logger)
	gradingService := service.NewGradingService(gradeRepo, submissionRepo, activityService, bus, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, activityService, bus, validate, logger)
	lectureService := service.NewLectureService(lectureRepo, userRepo, storage, validate, logger)
	studentService := service.NewStudentService(service.StudentRepositories{
		Users:       userRepo,
		Enrollments: enrollmentRepo,
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
		Grades:      gradeRepo,
	}, redisClient, cfg.DashboardCacheTTL, logger)

	bus.Subscribe(studentService.HandleEvent)
	bus.Start(ctx)

	loginLimiter := middleware.RateLimit("login", cfg.LoginRateLimit, cfg.LoginRateWindow)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    6 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authService, validate, loginLimiter, logger),
		CourseHandler:        handler.NewCourseHandler(courseService, validate, logger),
		AssignmentHandler:    handler.NewAssignmentHandler(assignmentService, validate, logger),
		SubmissionHandler:    handler.NewSubmissionHandler(submissionService, validate, logger),
		GradeHandler:         handler.NewGradeHandler(gradingService, logger),
		EnrollmentHandler:    handler.NewEnrollmentHandler(enrollmentService, logger),
		StudentHandler:       handler.NewStudentHandler(studentService, validate, logger),
		LectureHandler:       handler.NewLectureHandler(lectureService, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activityService, validate, logger),
		HealthProbes:         probes,
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret, revocations),
		ExposeMetrics:        true,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(ctx, app, logger)
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
