package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/svpddu/studentrecords/internal/app/controllers"
	"github.com/svpddu/studentrecords/internal/app/documents"
	appMigrations "github.com/svpddu/studentrecords/internal/app/migrations"
	appRepos "github.com/svpddu/studentrecords/internal/app/repositories"
	"github.com/svpddu/studentrecords/internal/app/repositories/mongorepo"
	"github.com/svpddu/studentrecords/internal/app/repositories/pgrepo"
	appRoutes "github.com/svpddu/studentrecords/internal/app/routes"
	appServices "github.com/svpddu/studentrecords/internal/app/services"
	"github.com/svpddu/studentrecords/internal/config"
	"github.com/svpddu/studentrecords/internal/db"
	appMiddleware "github.com/svpddu/studentrecords/internal/middleware"
	pkgAuth "github.com/svpddu/studentrecords/internal/pkg/auth"
	"github.com/svpddu/studentrecords/internal/pkg/cache"
	"github.com/svpddu/studentrecords/internal/pkg/filestorage"
	"github.com/svpddu/studentrecords/internal/pkg/helpers"
	"github.com/svpddu/studentrecords/internal/pkg/logger"
	"github.com/svpddu/studentrecords/internal/pkg/pdf"
	"github.com/svpddu/studentrecords/internal/seed"
)

// DefaultConfigPath is where the API and the CLI look for the YAML config
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Container owns every long-lived handle of the application. Close releases them.
type Container struct {
	Config *config.Config
	Logger zerolog.Logger

	Mongo    *db.MongoDB
	Postgres *db.PostgresDB
	Redis    *redis.Client
	Renderer *pdf.ChromeRenderer

	Repos      *appRepos.Repositories
	Media      filestorage.MediaStore
	Cache      cache.Store
	JWTService *pkgAuth.JWTService

	StudentService  appServices.StudentService
	AdminService    appServices.AdminService
	AuthService     *appServices.AuthService
	DocumentService appServices.DocumentService
	ExportService   appServices.ExportService

	StudentController *appControllers.StudentController
	AdminController   *appControllers.AdminController
	AuthController    *appControllers.AuthController
	HealthController  *appControllers.HealthController
	AuthMiddleware    *appMiddleware.AuthMiddleware
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// NewContainer connects to the configured stores and builds repositories,
// services and controllers. On error everything opened so far is closed.
func NewContainer(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: lgr}
	if err := c.build(ctx); err != nil {
		if closeErr := c.Close(context.Background()); closeErr != nil {
			lgr.Warn().Err(closeErr).Msg("Cleanup after failed startup was incomplete")
		}
		return nil, err
	}
	return c, nil
}

func (c *Container) build(ctx context.Context) error {
	cfg, lgr := c.Config, c.Logger

	if err := c.setupDatabase(ctx); err != nil {
		return err
	}
	if err := c.SeedUsers(ctx); err != nil {
		lgr.Warn().Err(err).Msg("Default user seeding incomplete")
	}

	media, err := filestorage.NewMediaStore(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize media storage")
		return fmt.Errorf("failed to initialize media storage: %w", err)
	}
	c.Media = media

	c.Redis = cache.NewRedisClient(ctx, cache.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	c.Cache = cache.New(c.Redis)

	c.Renderer = pdf.NewChromeRenderer(pdf.Options{
		ExecPath: cfg.PDF.ChromePath,
		Timeout:  helpers.ParseDuration(cfg.PDF.Timeout, 30*time.Second),
	})

	c.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	c.buildServices()
	c.buildControllers()
	return nil
}

// setupDatabase establishes the store selected by database.driver. The
// Postgres backend is migrated before use.
func (c *Container) setupDatabase(ctx context.Context) error {
	cfg, lgr := c.Config, c.Logger
	timeout := helpers.ParseDuration(cfg.Database.QueryTimeout, 10*time.Second)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		lgr.Info().Msg("Establishing Postgres connection...")
		pg, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return err
		}
		c.Postgres = pg

		migrationsDir := cfg.Database.MigrationsDir
		if _, err := os.Stat(migrationsDir); err != nil {
			lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
			return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
		}
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(pg.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			return fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		c.Repos = pgrepo.NewRepositories(pg)

	default:
		lgr.Info().Msg("Establishing Mongo connection...")
		mdb, err := db.NewMongoDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return err
		}
		c.Mongo = mdb

		repos, err := mongorepo.NewRepositories(ctx, mdb.Database, timeout)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to prepare collections")
			return err
		}
		c.Repos = repos
	}
	return nil
}

func (c *Container) buildServices() {
	cfg := c.Config
	c.StudentService = appServices.NewStudentService(
		c.Repos.Students,
		c.Media,
		c.Cache,
		helpers.ParseDuration(cfg.Cache.TTL, 5*time.Minute),
	)
	c.AdminService = appServices.NewAdminService(c.Repos.Students, c.Cache)
	c.AuthService = appServices.NewAuthService(c.Repos.Users, c.JWTService, logger.Component("auth"))
	c.DocumentService = appServices.NewDocumentService(
		c.Repos.Students,
		documents.NewBuilder(cfg.PDF.SchoolName, cfg.PDF.PlaceholderPhoto),
		c.Renderer,
	)
	c.ExportService = appServices.NewExportService(c.Repos.Students)
}

func (c *Container) buildControllers() {
	c.AuthMiddleware = appMiddleware.NewAuthMiddleware(c.JWTService)
	c.StudentController = appControllers.NewStudentController(
		c.StudentService,
		c.DocumentService,
		c.ExportService,
		c.Config.Server.MaxUploadMB,
		logger.Component("students"),
	)
	c.AdminController = appControllers.NewAdminController(c.AdminService, logger.Component("admin"))
	c.AuthController = appControllers.NewAuthController(c.AuthService, logger.Component("auth"))
	c.HealthController = appControllers.NewHealthController(c.Ping, logger.Component("health"))
}

// SeedUsers creates the configured default accounts on an empty user store
func (c *Container) SeedUsers(ctx context.Context) error {
	_, err := seed.CreateDefaultUsers(ctx, c.Repos.Users, c.Config.Seed.Users, c.Config.Seed.DefaultPassword, c.Logger)
	return err
}

// Ping checks the primary store
func (c *Container) Ping(ctx context.Context) error {
	switch {
	case c.Mongo != nil:
		return c.Mongo.Ping(ctx)
	case c.Postgres != nil:
		return c.Postgres.Ping(ctx)
	default:
		return errors.New("no database configured")
	}
}

// Close releases the browser, the cache connection and the database handles
func (c *Container) Close(ctx context.Context) error {
	var errs error
	if c.Renderer != nil {
		c.Renderer.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("closing redis: %w", err))
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Close(ctx); err != nil {
			errs = errors.Join(errs, fmt.Errorf("closing mongo: %w", err))
		}
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
	return errs
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(c *Container) *gin.Engine {
	cfg, lgr := c.Config, c.Logger
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), appMiddleware.CORS(cfg.Server.AllowedOrigins))
	router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router,
		c.StudentController,
		c.AdminController,
		c.AuthController,
		c.HealthController,
		c.AuthMiddleware,
	)

	if cfg.Media.Provider == config.MediaLocal {
		setupStaticFileServing(router, cfg.Media.Local.StoragePath, lgr)
	}
	return router
}

// setupStaticFileServing serves locally stored uploads at /uploads
func setupStaticFileServing(router *gin.Engine, uploadPath string, lgr zerolog.Logger) {
	if err := os.MkdirAll(uploadPath, 0o755); err != nil {
		lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
		return
	}
	router.Static("/uploads", uploadPath)
	lgr.Info().Str("path", uploadPath).Msg("Static file serving configured for uploads directory")
}
