// Package web wires the fiber application and its handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/auth"
	"github.com/procureflow/procureflow/internal/config"
	fiberlogger "github.com/procureflow/procureflow/internal/logger/adapter/fiber"
	"github.com/procureflow/procureflow/internal/web/handler"
	userhandler "github.com/procureflow/procureflow/internal/web/handler/admin/user"
	authhandler "github.com/procureflow/procureflow/internal/web/handler/auth"
	"github.com/procureflow/procureflow/internal/web/handler/cases"
	"github.com/procureflow/procureflow/internal/web/handler/health"
	psrhandler "github.com/procureflow/procureflow/internal/web/handler/psr"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: clear the alive flag so the
	// health endpoint returns 503 while the LB drains this instance.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// errorHandler renders unhandled fiber errors with the JSON envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := handler.KindInternal

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code

		switch {
		case code == fiber.StatusNotFound:
			kind = handler.KindNotFound
		case code >= fiber.StatusBadRequest && code < fiber.StatusInternalServerError:
			kind = handler.KindValidation
		}
	}

	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")

		return handler.Internal(c)
	}

	return handler.Fail(c, code, kind, err.Error())
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   errorHandler,
		},
	)

	// access log middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: health.Path,
	}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	codec := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authService := auth.NewService(db, codec)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	// init handlers (they register their own routes with permission checks)
	authhandler.Handler.Init(app, cfg, db, authService)
	psrhandler.Handler.Init(app, cfg, db, authService)
	userhandler.Handler.Init(app, cfg, db, authService)
	cases.Handler.Init(app, cfg, db, authService)
	health.Handler.Init(app, cfg, db, &service.alive)

	return service
}

func corsOrigins(cfg *config.Config) string {
	if cfg.Webserver.CORSOrigins == "" {
		return "*"
	}

	return cfg.Webserver.CORSOrigins
}
