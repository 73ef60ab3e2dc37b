package main

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"brotot_gym/internal/config"
	"brotot_gym/internal/handlers"
	authMiddleware "brotot_gym/internal/middleware"
	"brotot_gym/internal/services"
)

// TemplateRenderer is a custom html/template renderer for Echo
// Uses per-page template cloning to allow each page to define its own blocks
type TemplateRenderer struct {
	templates map[string]*template.Template
}

// NewTemplateRenderer creates a template renderer with per-page cloning
func NewTemplateRenderer() (*TemplateRenderer, error) {
	templates := make(map[string]*template.Template)

	// Parse base layout and partials as the foundation
	baseTemplate := template.Must(template.ParseGlob("web/templates/layouts/*.html"))
	template.Must(baseTemplate.ParseGlob("web/templates/partials/*.html"))

	// Find all page templates and clone base for each
	pages, err := filepath.Glob("web/templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		pageName := filepath.Base(page)
		// Clone the base template for this page
		pageTemplate := template.Must(baseTemplate.Clone())
		// Parse the page-specific template
		template.Must(pageTemplate.ParseFiles(page))
		templates[pageName] = pageTemplate
	}

	// Also parse standalone templates (like login) that don't use the base layout
	standalonePages, _ := filepath.Glob("web/templates/*.html")
	for _, page := range standalonePages {
		pageName := filepath.Base(page)
		if _, exists := templates[pageName]; !exists {
			templates[pageName] = template.Must(template.ParseFiles(page))
		}
	}

	return &TemplateRenderer{templates: templates}, nil
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}
	// Page templates define a "base" block; standalone templates (like
	// login) are executed directly
	if tmpl.Lookup("base") != nil {
		// Auto-inject the logged-in user when the page data is a map
		if dataMap, ok := data.(map[string]interface{}); ok {
			if _, exists := dataMap["Username"]; !exists {
				dataMap["Username"] = c.Get("username")
			}
		} else if data == nil {
			data = map[string]interface{}{
				"Username": c.Get("username"),
			}
		}

		return tmpl.ExecuteTemplate(w, "base", data)
	}
	return tmpl.Execute(w, data)
}

func newLogger(cfg config.AppConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if cfg.IsDev() {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).With().Timestamp().Str("service", "brotot").Logger().Level(level)
}

func main() {
	// Load environment variables; a missing .env falls back to the system
	// environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallbackLogger := zerolog.New(os.Stderr)
		fallbackLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := newLogger(cfg.App)

	// Initialize Google Sheets
	sheetsSvc, err := services.InitSheets(context.Background(), cfg.Sheets.CredentialsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Google Sheets client")
	}

	directory := services.NewMemberDirectory(sheetsSvc, cfg.Sheets, logger)
	ledger := services.NewTransactionLedger(sheetsSvc, cfg.Sheets, logger)
	media := services.NewCloudinaryService(cfg.Cloudinary, logger)

	// Redis backs both the auth sessions and the snapshot cache
	cache, err := services.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer cache.Close()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Err(v.Error).
				Msg("request")
			return nil
		},
	}))

	e.HTTPErrorHandler = authMiddleware.NewErrorHandler(logger)

	// Template renderer with per-page cloning
	renderer, err := NewTemplateRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load templates")
	}
	e.Renderer = renderer

	// Static file serving
	e.Static("/static", "web/static")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, cache, logger)
	memberHandler := handlers.NewMemberHandler(directory, ledger, cache, cfg.Redis, logger)
	registrationHandler := handlers.NewRegistrationHandler(directory, ledger, media, cache, cfg.Redis, logger)
	editHandler := handlers.NewEditMemberHandler(directory, media, cache, cfg.Redis, logger)

	// Public routes
	e.GET("/login", authHandler.LoginPage)
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Protected routes
	protected := e.Group("")
	protected.Use(authMiddleware.RequireAuth(cache))

	protected.GET("/members", memberHandler.ListMembers)
	protected.POST("/members/:id/renew", memberHandler.RenewMember)
	protected.GET("/register", registrationHandler.RegisterPage)
	protected.POST("/register", registrationHandler.StoreMember)
	protected.GET("/members/:id/edit", editHandler.EditMemberPage)
	protected.POST("/members/:id/update", editHandler.UpdateMember)

	// Redirect root to the member list (or login if not authenticated)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/members")
	})

	logger.Info().Str("port", cfg.App.Port).Msg("server starting")
	if err := e.Start(":" + cfg.App.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
