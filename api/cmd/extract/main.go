// Command extract распознаёт поля документов на фото и печатает JSON по одному
// объекту на файл: extract [-text] [-labels labels.json] photo.jpg [photo2.png ...]
//
// С -labels в stderr печатается точность по полям: так подбираются SCORE_THRESHOLD
// и SCORE_MIN_LENGTH на размеченном наборе фото.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"hotel-bot/api/internal/app"
	"hotel-bot/api/internal/config"
	"hotel-bot/api/internal/extract"
	"hotel-bot/api/internal/store"
)

type output struct {
	File    string          `json:"file"`
	Fields  extract.Fields  `json:"fields"`
	Quality extract.Quality `json:"quality"`
	Source  extract.Source  `json:"source"`
	Winner  string          `json:"winner,omitempty"`
	Cached  bool            `json:"from_cache"`
	Text    string          `json:"text,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func main() {
	withText := flag.Bool("text", false, "print the recognized text too")
	useCache := flag.Bool("cache", false, "use the Postgres extraction cache (DATABASE_URL)")
	labelsPath := flag.String("labels", "", "JSON object: file name -> expected fields")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: extract [-text] [-cache] [-labels file] photo...")
		os.Exit(2)
	}

	cfg := config.LoadExtraction()
	cfg.SetupLogging()
	log.SetOutput(os.Stderr)
	if err := cfg.ValidateExtraction(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := app.Engine(cfg)
	if err != nil {
		log.Fatal(err)
	}

	var cache extract.Cache
	if *useCache {
		dsn := store.ResolveDSN(cfg.DatabaseURL)
		if dsn == "" {
			log.Fatal("-cache: set DATABASE_URL or POSTGRES_* env vars")
		}
		db, err := store.Open(ctx, dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		repo := store.NewExtractionRepo(db, engine.Name(), engine.GetModel(), cfg.CacheMaxAge)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal(err)
		}
		cache = repo
	}

	pipeline, err := app.Pipeline(cfg, engine, cache, nil)
	if err != nil {
		log.Fatal(err)
	}

	var labels map[string]extract.Fields
	if *labelsPath != "" {
		if labels, err = loadLabels(*labelsPath); err != nil {
			log.Fatal(err)
		}
	}
	acc := newAccuracy()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	failed := false
	for _, path := range flag.Args() {
		out := run(ctx, pipeline, path)
		if want, ok := labels[filepath.Base(path)]; ok && out.Error == "" {
			acc.add(want, out.Fields)
		}
		if !*withText {
			out.Text = ""
		}
		if out.Error != "" {
			failed = true
		}
		if err := enc.Encode(out); err != nil {
			log.Fatal(err)
		}
	}
	if acc.total > 0 {
		acc.print(os.Stderr)
	}
	if failed {
		os.Exit(1)
	}
}

func run(ctx context.Context, p *extract.Pipeline, path string) output {
	data, err := os.ReadFile(path)
	if err != nil {
		return output{File: path, Error: err.Error()}
	}
	res := p.Extract(ctx, data)
	return output{
		File:    path,
		Fields:  res.Fields,
		Quality: res.Quality(),
		Source:  res.Source,
		Winner:  res.Winner,
		Cached:  res.FromCache,
		Text:    res.Text,
	}
}
