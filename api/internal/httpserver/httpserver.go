package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Checker — проверка зависимости для /healthz (например, db.PingContext).
type Checker func(ctx context.Context) error

type Options struct {
	Gatherer prometheus.Gatherer
	Health   map[string]Checker
	// WebhookPath и OnUpdate задаются только в режиме вебхука.
	WebhookPath string
	OnUpdate    func(tgbotapi.Update)
	// Extract — отладочный эндпоинт извлечения полей; nil — выключен.
	Extract http.HandlerFunc
}

func NewRouter(opt Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(opt.Health))

	g := opt.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	if opt.WebhookPath != "" && opt.OnUpdate != nil {
		r.Post(opt.WebhookPath, webhook(opt.OnUpdate))
	}
	if opt.Extract != nil {
		r.Post("/v1/extract", opt.Extract)
	}
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hotel registration bot"))
	})
	return r
}

func healthz(checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range checks {
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(name + ": not ok\n" + err.Error()))
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	}
}

// webhook разбирает апдейт и сразу отвечает 200: обработка идёт асинхронно.
func webhook(onUpdate func(tgbotapi.Update)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd tgbotapi.Update
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&upd); err != nil {
			log.Warnf("webhook: bad update: %v", err)
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		onUpdate(upd)
		w.WriteHeader(http.StatusOK)
	}
}

// Serve запускает сервер и останавливает его при отмене ctx.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Infof("http: listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
