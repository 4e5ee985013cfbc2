package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/izdlan/AttendanceSMC/internal/attendance"
	"github.com/izdlan/AttendanceSMC/internal/catalog"
	"github.com/izdlan/AttendanceSMC/internal/config"
	"github.com/izdlan/AttendanceSMC/internal/db"
	"github.com/izdlan/AttendanceSMC/internal/health"
	"github.com/izdlan/AttendanceSMC/internal/logger"
	"github.com/izdlan/AttendanceSMC/internal/metrics"
	"github.com/izdlan/AttendanceSMC/internal/messaging"
	"github.com/izdlan/AttendanceSMC/internal/middleware"
	"github.com/izdlan/AttendanceSMC/internal/student"
	"github.com/izdlan/AttendanceSMC/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        *gin.Engine
	server        *http.Server
	db            *bun.DB
	producer      *messaging.Producer
	meterProvider *sdkmetric.MeterProvider
	logger        *slog.Logger
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	window, err := attendance.NewWindow(cfg.CheckIn.Earliest, cfg.CheckIn.LateAfter, cfg.CheckIn.Latest)
	if err != nil {
		log.Fatalf("invalid check-in window config: %v", err)
	}
	loc, err := time.LoadLocation(cfg.CheckIn.Timezone)
	if err != nil {
		log.Fatalf("invalid school timezone: %v", err)
	}

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		config: cfg,
		router: gin.New(),
		logger: slogLogger,
	}
	app.router.Use(gin.Recovery())
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	app.db = db.New(cfg.Database)

	ctx := context.Background()
	if err := db.RunMigrations(ctx, app.db,
		(*catalog.Form)(nil),
		(*student.Student)(nil),
		(*attendance.Record)(nil),
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	// Metrics setup (degrades to no-op when the collector is unavailable)
	var m *metrics.Metrics
	meterProvider, err := telemetry.InitMeterProvider(ctx, ServiceName, Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize OTel metrics", "error", err)
		m = metrics.NewMock()
	} else {
		app.meterProvider = meterProvider
		m, err = metrics.New(otel.Meter(ServiceName))
		if err != nil {
			slogLogger.Warn("failed to create metrics", "error", err)
			m = metrics.NewMock()
		}
	}

	// Catalog must be seeded and loaded before anything serves: student
	// validation and ID generation depend on a complete catalog.
	catalogRepo := catalog.NewRepository(app.db)
	catalogService, err := catalog.Load(ctx, catalogRepo)
	if err != nil {
		log.Fatal("failed to load form catalog:", err)
	}
	catalogHandler := catalog.NewHandler(catalogService)

	// NATS producer setup
	natsProducer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize NATS producer", "error", err)
		natsProducer = nil
	} else {
		slogLogger.Info("NATS producer initialized successfully")
		app.producer = natsProducer
	}

	attendanceRepo := attendance.NewRepository(app.db)
	studentRepo := student.NewRepository(app.db)
	studentService := student.NewService(studentRepo, catalogService, attendanceRepo, cfg.School.BarcodePrefix, time.Now)
	studentHandler := student.NewHandler(studentService, slogLogger, m)

	var events attendance.EventPublisher
	if natsProducer != nil {
		events = natsProducer
	}
	attendanceService := attendance.NewService(attendanceRepo, studentRepo, window, loc, time.Now, events, slogLogger)
	attendanceHandler := attendance.NewHandler(attendanceService, slogLogger, m)

	// Health endpoints
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	api := app.router.Group("/api")
	catalogHandler.RegisterRoutes(api)
	studentHandler.RegisterRoutes(api)
	attendanceHandler.RegisterRoutes(api)

	slogLogger.Info("application initialized successfully",
		"window_earliest", cfg.CheckIn.Earliest,
		"window_late_after", cfg.CheckIn.LateAfter,
		"window_latest", cfg.CheckIn.Latest,
		"timezone", cfg.CheckIn.Timezone,
	)

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("NATS producer close error", "error", err)
		}
	}
	if a.meterProvider != nil {
		if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
			a.logger.Error("telemetry shutdown error", "error", err)
		}
	}

	err := a.server.Shutdown(ctx)
	db.Close(a.db)
	return err
}
