package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/clubhub/internal/app/auth"
	appControllers "github.com/yigit/clubhub/internal/app/controllers"
	appMigrations "github.com/yigit/clubhub/internal/app/migrations"
	appRepos "github.com/yigit/clubhub/internal/app/repositories"
	appRoutes "github.com/yigit/clubhub/internal/app/routes"
	appServices "github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/config"
	"github.com/yigit/clubhub/internal/db"
	appMiddleware "github.com/yigit/clubhub/internal/middleware"
	pkgAuth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/pkg/cache"
	"github.com/yigit/clubhub/internal/pkg/email"
	"github.com/yigit/clubhub/internal/pkg/events"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
	"github.com/yigit/clubhub/internal/pkg/logger"
	"github.com/yigit/clubhub/internal/pkg/validation"
	"github.com/yigit/clubhub/internal/pkg/websocket"
	"github.com/yigit/clubhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	TxManager   *db.TxManager
	JWTService  *pkgAuth.JWTService
	Gate        *appAuth.Gate
	FileStorage *filestorage.LocalStorage
	Publisher   events.Publisher
	Redis       *redis.Client // nil when REDIS_ADDR is unset
	Hub         *websocket.Hub
	Logger      zerolog.Logger

	stopHub context.CancelFunc

	LifecycleService    appServices.LifecycleService
	NotificationService appServices.NotificationService
	RequestService      appServices.RequestService
	ClubService         appServices.ClubService
	EventService        appServices.EventService
	MessageService      appServices.MessageService
	AuthService         appServices.AuthService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, applies migrations and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	dbPool, err := db.Connect(ctx, cfg, logger.Component("db"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(dbPool, logger.Component("migrations")).Up(migrateCtx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	users := appRepos.NewUserRepository(dbPool)
	admin := seed.Admin{Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword}
	if err := seed.CreateDefaultData(ctx, appRepos.NewVenueRepository(dbPool), users, admin, logger.Component("seed")); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// setupRedis connects the optional thread cache backend and warms it from the database
func setupRedis(ctx context.Context, cfg *config.Config, messages *appRepos.MessageRepository, lgr zerolog.Logger) (*redis.Client, cache.ThreadCache) {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("REDIS_ADDR not set, message thread lookups go to the database")
		return nil, nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, continuing without thread cache")
		return nil, nil
	}

	threads := cache.NewRedisThreadCache(client, "")
	n, err := cache.Warm(ctx, threads, messages.ParticipantIDs)
	if err != nil {
		lgr.Warn().Err(err).Msg("Failed to warm thread cache")
	} else {
		lgr.Info().Int("threads", n).Msg("Thread cache warmed")
	}
	return client, threads
}

// setupPublisher returns a Kafka publisher, or a no-op one when no brokers are configured
func setupPublisher(cfg *config.Config, lgr zerolog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		lgr.Info().Msg("KAFKA_BROKERS not set, domain events are not published")
		return events.NopPublisher{}
	}
	p, err := events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	if err != nil {
		lgr.Warn().Err(err).Msg("Invalid Kafka configuration, domain events are not published")
		return events.NopPublisher{}
	}
	lgr.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher configured")
	return p
}

// redisPinger adapts the Redis client to the health check interface
type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.client.Ping(ctx).Err() }

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.TxManager = db.NewTxManager(dbPool)
	deps.Gate = appAuth.NewGate()

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.PublicBaseURL()+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Publisher = setupPublisher(cfg, lgr)

	deps.Hub = websocket.NewHub(logger.Component("live"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	deps.stopHub = stopHub
	go deps.Hub.Run(hubCtx)

	var threads cache.ThreadCache
	deps.Redis, threads = setupRedis(ctx, cfg, deps.Repos.MessageRepository, lgr)

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, logger.Component("email"))

	r := deps.Repos
	deps.LifecycleService = appServices.NewLifecycleService(
		deps.TxManager,
		r.UserRepository,
		r.ClubRepository,
		r.ExecutiveRepository,
		r.EventRepository,
		r.VenueRepository,
		r.ReservationRepository,
		r.NotificationRepository,
		logger.Component("lifecycle"),
	)
	deps.NotificationService = appServices.NewNotificationService(
		deps.TxManager,
		r.NotificationRepository,
		deps.Gate,
		deps.Publisher,
		deps.Hub,
		logger.Component("notifications"),
	)
	deps.RequestService = appServices.NewRequestService(
		deps.TxManager,
		r.RequestRepository,
		r.UserRepository,
		r.ClubRepository,
		deps.LifecycleService,
		deps.NotificationService,
		deps.Gate,
		deps.Publisher,
		mailer,
		logger.Component("requests"),
	)
	deps.ClubService = appServices.NewClubService(
		deps.TxManager,
		r.ClubRepository,
		r.ExecutiveRepository,
		deps.LifecycleService,
		deps.FileStorage,
		deps.Gate,
		deps.Publisher,
		logger.Component("clubs"),
	)
	deps.EventService = appServices.NewEventService(
		r.EventRepository,
		r.ClubRepository,
		deps.LifecycleService,
		deps.Gate,
		deps.Publisher,
		logger.Component("events"),
	)
	deps.MessageService = appServices.NewMessageService(
		deps.TxManager,
		r.MessageRepository,
		r.UserRepository,
		deps.NotificationService,
		threads,
		deps.Gate,
		logger.Component("messages"),
	)
	deps.AuthService = appServices.NewAuthService(r.UserRepository, deps.JWTService, logger.Component("auth"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(
		deps.JWTService,
		appAuth.NewActorResolver(r.ExecutiveRepository),
		logger.Component("auth"),
	)

	checks := map[string]appControllers.Pinger{}
	if deps.Redis != nil {
		checks["redis"] = redisPinger{client: deps.Redis}
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		Health:       appControllers.NewHealthController(dbPool, checks),
		Request:      appControllers.NewRequestController(deps.RequestService),
		Club:         appControllers.NewClubController(deps.ClubService, lgr),
		Event:        appControllers.NewEventController(deps.EventService),
		Notification: appControllers.NewNotificationController(deps.NotificationService),
		Message:      appControllers.NewMessageController(deps.MessageService),
		Venue:        appControllers.NewVenueController(r.VenueRepository),
		Live:         appControllers.NewLiveController(deps.Hub, logger.Component("live")),
	}

	return deps, nil
}

// Close releases the connections owned by the dependencies
func (d *Dependencies) Close() {
	if d.stopHub != nil {
		d.stopHub()
	}
	if err := d.Publisher.Close(); err != nil {
		d.Logger.Error().Err(err).Msg("Failed to close event publisher")
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
