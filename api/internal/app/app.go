// Package app собирает движок и пайплайн распознавания из конфигурации;
// общий код для бота и утилиты командной строки.
package app

import (
	"hotel-bot/api/internal/config"
	"hotel-bot/api/internal/extract"
	"hotel-bot/api/internal/ocr"
	"hotel-bot/api/internal/ocr/gemini"
	"hotel-bot/api/internal/ocr/openai"
)

// Engine создаёт движки, для которых есть ключ, и выбирает LLM_ENGINE.
func Engine(cfg *config.Config) (ocr.Engine, error) {
	var engines []ocr.Engine
	if cfg.GeminiAPIKey != "" {
		engines = append(engines, gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTemperature))
	}
	if cfg.OpenAIAPIKey != "" {
		engines = append(engines, openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTemperature))
	}
	return ocr.Select(cfg.LLMEngine, engines...)
}

// Pipeline: cache и m могут быть nil.
func Pipeline(cfg *config.Config, engine ocr.Engine, cache extract.Cache, m extract.Metrics) (*extract.Pipeline, error) {
	scorer := extract.DefaultScorer()
	scorer.Threshold = cfg.ScoreThresh
	scorer.MinLength = cfg.ScoreMinLen

	return extract.NewPipeline(engine, extract.Options{
		Prompts: extract.LoadPrompts(cfg.PromptDir),
		Scorer:  scorer,
		Emergency: extract.Emergency{
			MinIDDigits: cfg.EmergencyIDLo,
			MaxIDDigits: cfg.EmergencyIDHi,
		},
		Cache:   cache,
		Metrics: m,
	})
}
