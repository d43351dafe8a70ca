package main

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata" // зона America/Lima и без системной базы

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hotel-bot/api/internal/app"
	"hotel-bot/api/internal/config"
	"hotel-bot/api/internal/drive"
	"hotel-bot/api/internal/extract"
	"hotel-bot/api/internal/handle"
	"hotel-bot/api/internal/httpserver"
	"hotel-bot/api/internal/metrics"
	"hotel-bot/api/internal/registration"
	"hotel-bot/api/internal/report"
	"hotel-bot/api/internal/sheets"
	"hotel-bot/api/internal/store"
	"hotel-bot/api/internal/telegram"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, _ := time.LoadLocation(cfg.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	engine, err := app.Engine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("llm engine: %s (%s)", engine.Name(), engine.GetModel())

	// --- Postgres: кэш распознавания, необязателен ---
	health := map[string]httpserver.Checker{}
	var (
		cache extract.Cache
		repo  *store.ExtractionRepo
	)
	if dsn := store.ResolveDSN(cfg.DatabaseURL); dsn != "" {
		db, err := store.Open(ctx, dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		log.Infof("db connected: %s", store.SafeDSNSummary(dsn))

		repo = store.NewExtractionRepo(db, engine.Name(), engine.GetModel(), cfg.CacheMaxAge)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		cache = repo
		health["db"] = db.PingContext
	} else {
		log.Info("db: not configured, extraction cache disabled")
	}

	pipeline, err := app.Pipeline(cfg, engine, cache, m)
	if err != nil {
		log.Fatal(err)
	}

	// --- Google ---
	table, err := sheets.New(ctx, cfg.GoogleCredentialsFile, cfg.SpreadsheetID, cfg.WorksheetName, loc)
	if err != nil {
		log.Fatal(err)
	}
	if err := table.EnsureSheet(ctx); err != nil {
		log.Fatalf("sheets: %v", err)
	}
	photos, err := drive.New(ctx, cfg.GoogleCredentialsFile, cfg.DriveFolderID, cfg.DrivePublicLinks)
	if err != nil {
		log.Fatal(err)
	}

	machine := registration.NewMachine(registration.Deps{
		Extractor: pipeline,
		Photos:    photos,
		Table:     table,
		Views:     &registration.Views{Table: table, Rooms: cfg.Rooms, Location: loc},
		Options: registration.Options{
			Prices:   cfg.PriceOptions,
			Payments: cfg.PaymentOptions,
		},
		Authorized: cfg.AuthorizedUsers,
		Location:   loc,
		Logger:     log.StandardLogger(),
		Metrics:    m,
		Report:     report.DailyWorkbook,
	})

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false
	log.Infof("authorized as @%s", bot.Self.UserName)

	router := &telegram.Router{Bot: bot, Machine: machine}
	g, gctx := errgroup.WithContext(ctx)
	onUpdate := func(upd tgbotapi.Update) { router.HandleUpdate(gctx, upd) }

	opts := httpserver.Options{Gatherer: reg, Health: health}
	if cfg.ExtractAPIKey != "" {
		opts.Extract = handle.New(pipeline, cfg.ExtractAPIKey).Extract
	}

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		path, err := setWebhook(bot, webhookURL)
		if err != nil {
			log.Fatal(err)
		}
		opts.WebhookPath = path
		opts.OnUpdate = onUpdate
		log.Infof("webhook mode: %s", path)
	} else {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Warnf("deleteWebhook: %v", err)
		}
		g.Go(func() error {
			runPolling(gctx, bot, onUpdate)
			return nil
		})
	}

	g.Go(func() error {
		return httpserver.Serve(gctx, "0.0.0.0:"+cfg.Port, httpserver.NewRouter(opts))
	})
	if repo != nil {
		g.Go(func() error {
			purgeLoop(gctx, repo, cfg.CacheMaxAge)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	router.Wait()
	log.Info("bye")
}

// setWebhook регистрирует секретный путь вебхука и возвращает его.
func setWebhook(bot *tgbotapi.BotAPI, baseURL string) (string, error) {
	path := "/webhook/" + shortHash(bot.Token)
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return "", err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return "", err
	}
	return path, nil
}

// purgeLoop раз в сутки удаляет устаревшие записи кэша.
func purgeLoop(ctx context.Context, repo *store.ExtractionRepo, maxAge time.Duration) {
	t := time.NewTicker(24 * time.Hour)
	defer t.Stop()
	for {
		if n, err := repo.PurgeOlderThan(ctx, maxAge); err != nil {
			if ctx.Err() == nil {
				log.Warnf("cache purge: %v", err)
			}
		} else if n > 0 {
			log.Infof("cache purge: %d rows", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 от Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

// sleep прерывается отменой ctx.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	offset := 0
	const (
		baseDelay = time.Second
		maxDelay  = 15 * time.Second
	)

	for ctx.Err() == nil {
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling, сек

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.Warnf("polling error: %v; retry in %v", err, d)
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
	log.Info("polling: context cancelled")
}

// shortHash — стабильный секретный путь вебхука для токена.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
