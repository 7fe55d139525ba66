package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

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
	"github.com/yigit/clubhub/internal/pkg/email"
	"github.com/yigit/clubhub/internal/pkg/helpers"
	"github.com/yigit/clubhub/internal/pkg/logger"
	"github.com/yigit/clubhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	Mailer       email.EmailService

	AuthService         *appServices.AuthService
	UserService         appServices.UserService
	ClubService         appServices.ClubService
	ApplicationService  appServices.ClubApplicationService
	MembershipService   appServices.MembershipService
	EventService        appServices.EventService
	AnnouncementService appServices.AnnouncementService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CLUBHUB_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds the admin account.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrator"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	users := appRepos.NewUserRepository(database)
	admin := seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
	}
	if err := seed.CreateDefaultAdmin(ctx, users, admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)
	stores := appServices.Stores{
		Tx:            database,
		Users:         deps.Repos.Users,
		Clubs:         deps.Repos.Clubs,
		Applications:  deps.Repos.Applications,
		Memberships:   deps.Repos.Memberships,
		Events:        deps.Repos.Events,
		Announcements: deps.Repos.Announcements,
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	if cfg.SMTP.Host != "" {
		deps.Mailer = email.NewEmailService(email.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromName:  cfg.SMTP.FromName,
			FromEmail: cfg.SMTP.FromEmail,
			UseTLS:    cfg.SMTP.UseTLS,
			BaseURL:   cfg.SMTP.BaseURL,
		}, logger.Component("email"))
	} else {
		lgr.Warn().Msg("SMTP host not configured, review notifications disabled")
	}

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.Clubs, deps.Repos.Memberships, logger.Component("authz"))

	deps.AuthService = appServices.NewAuthService(deps.Repos.Users, deps.JWTService, logger.Component("auth"))
	deps.UserService = appServices.NewUserService(deps.Repos.Users, logger.Component("users"))
	deps.ClubService = appServices.NewClubService(stores, deps.AuthzService, logger.Component("clubs"))
	deps.ApplicationService = appServices.NewClubApplicationService(stores, deps.Mailer, logger.Component("club_applications"))
	deps.MembershipService = appServices.NewMembershipService(stores, deps.AuthzService, deps.Mailer, logger.Component("memberships"))
	deps.EventService = appServices.NewEventService(stores, deps.AuthzService, deps.Mailer, cfg.Location(), logger.Component("events"))
	deps.AnnouncementService = appServices.NewAnnouncementService(stores, deps.AuthzService, deps.Mailer, logger.Component("announcements"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthService, logger.Component("auth_middleware"))

	deps.Controllers = appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(deps.AuthService, lgr),
		Users:         appControllers.NewUserController(deps.UserService, lgr),
		Clubs:         appControllers.NewClubController(deps.ClubService, deps.MembershipService),
		Applications:  appControllers.NewClubApplicationController(deps.ApplicationService),
		Memberships:   appControllers.NewMembershipController(deps.MembershipService),
		Events:        appControllers.NewEventController(deps.EventService),
		Announcements: appControllers.NewAnnouncementController(deps.AnnouncementService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database *db.PostgresDB, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Recovery(),
		cors.New(corsConfig(cfg.Server.AllowedOrigins)),
	)

	var health appRoutes.HealthCheck
	if database != nil {
		health = database.Ping
	}
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, health)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
