package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"findash/internal/clock"
	"findash/internal/config"
	chathandlers "findash/internal/handlers/chat"
	"findash/internal/handlers/dashboard"
	"findash/internal/handlers/export"
	insighthandlers "findash/internal/handlers/insights"
	"findash/internal/handlers/sessions"
	apphttp "findash/internal/http"
	"findash/internal/logger"
	"findash/internal/services/chat"
	"findash/internal/services/dataloader"
	"findash/internal/services/reminders"
	"findash/internal/services/session"
	"findash/internal/services/simulate"
	"findash/internal/services/storage"
	"findash/internal/version"
)

var (
	cfg       *config.Config
	log       *logrus.Logger
	store     *storage.Storage
	loader    *dataloader.DataLoader
	sessStore *session.Store
	scheduler *reminders.Scheduler
	now       clock.Now = time.Now
	sleep     clock.Sleeper
)

func main() {
	cfg = config.Load()
	log = logger.New(cfg.LogLevel, os.Stderr)

	info := version.Get()
	log.WithField("version", info.String()).Info("starting findash")
	if warning := info.Check(); warning != "" {
		log.Warn(warning)
	}

	var err error
	store, err = storage.New(cfg.DataDirectory)
	if err != nil {
		log.WithError(err).Fatal("failed to open data directory")
	}

	if err := SetupDependencies(cfg); err != nil {
		log.WithError(err).Fatal("failed to set up dependencies")
	}

	scheduler = reminders.New(sessStore, now, log)
	if err := scheduler.Start(cfg.ReminderSchedule); err != nil {
		log.WithError(err).Fatal("failed to schedule reminders")
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
}

// SetupDependencies wires services and handler packages from cfg.
// store must already be opened.
func SetupDependencies(c *config.Config) error {
	cfg = c
	if log == nil {
		log = logger.New(c.LogLevel, os.Stderr)
	}

	if c.RecordPassword != "" && store.IsSealed() {
		if err := store.Unlock(c.RecordPassword); err != nil {
			return err
		}
	}

	loader = dataloader.New(store, c.RecordFixture, log)
	if err := loader.Load(); err != nil {
		log.WithError(err).Warn("record fixture unavailable, serving mock data")
	}

	sessStore = session.NewStore(c.SessionTTL, loader.Record, now, log)

	sim := simulate.New(simulate.Options{
		ExportDelay: c.ExportDelay,
		UploadDelay: c.UploadDelay,
		Sleep:       sleep,
		Now:         now,
		Source:      loader.Record,
		Log:         log,
	})
	assistant := chat.NewAssistant(chat.NewMatcher(nil), c.TypingDelay, sleep, log)

	sessions.Initialize(sessStore, sim, log)
	dashboard.Initialize(sessStore, now)
	insighthandlers.Initialize(sessStore, log)
	chathandlers.Initialize(sessStore, assistant, c.ChatRate, log)
	export.Initialize(sessStore, sim)

	return nil
}

// SetupRouter builds the HTTP router
func SetupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)
		r.Get("/version", handleVersion)

		sessions.RegisterRoutes(r)
		dashboard.RegisterRoutes(r)
		insighthandlers.RegisterRoutes(r)
		chathandlers.RegisterRoutes(r)
		export.RegisterRoutes(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": sessStore.Count(),
		"record":   loader.Origin(),
	})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, version.Get())
}
