package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"hotel-bot/api/internal/imageproc"
)

// Transcriber — vision-сервис: фото + инструкция -> сырой текст.
type Transcriber interface {
	Transcribe(ctx context.Context, image []byte, prompt string) (string, error)
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWeak    Outcome = "weak"    // текст есть, но порог не набран
	OutcomeFailed  Outcome = "failed"  // ошибка сервиса или пустой ответ
	OutcomeSkipped Outcome = "skipped" // вариант картинки недоступен
)

var ErrEmptyText = errors.New("extract: empty text")

// Strategy — пара (вариант картинки, вариант промпта).
type Strategy struct {
	Name   string
	Prompt string
	// Prepare строит вариант картинки; nil — оригинал. Ошибка = вариант пропускается.
	Prepare func(img []byte) ([]byte, error)
	// Unconditional — результат принимается без проверки скорером (последний шанс).
	Unconditional bool
}

// Attempt живёт только в рамках одного Run.
type Attempt struct {
	Strategy string  `json:"strategy"`
	Outcome  Outcome `json:"outcome"`
	Score    int     `json:"score"`
	Text     string  `json:"-"`
	Err      string  `json:"error,omitempty"`
}

type CascadeResult struct {
	Text     string    `json:"text"`
	Winner   string    `json:"winner,omitempty"`
	Success  bool      `json:"success"`
	Attempts []Attempt `json:"attempts"`
}

type Cascade struct {
	Engine     Transcriber
	Strategies []Strategy
	Scorer     Scorer
	Metrics    Metrics
}

const (
	rescaleTarget    = 1800
	rescaleTolerance = 100
)

// DefaultStrategies — фиксированный порядок: оригинал, улучшенная картинка,
// промпт для снимков под углом, масштабированная картинка.
func DefaultStrategies(p Prompts) []Strategy {
	return []Strategy{
		{Name: "original", Prompt: p.General},
		{Name: "enhanced", Prompt: p.General, Prepare: imageproc.Enhance},
		{Name: "oblique", Prompt: p.Oblique},
		{Name: "rescaled", Prompt: p.General, Prepare: rescaled, Unconditional: true},
	}
}

func rescaled(img []byte) ([]byte, error) {
	out, ok, err := imageproc.Rescale(img, rescaleTarget, rescaleTolerance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, imageproc.ErrVariantUnavailable
	}
	return out, nil
}

// Run перебирает стратегии до первой успешной. Никогда не возвращает ошибку:
// если успеха нет — отдаёт последний непустой текст (или пустой).
func (c *Cascade) Run(ctx context.Context, img []byte) CascadeResult {
	var res CascadeResult
	for _, st := range c.Strategies {
		lg := log.WithField("strategy", st.Name)
		if err := ctx.Err(); err != nil {
			res.Attempts = append(res.Attempts, c.record(Attempt{Strategy: st.Name, Outcome: OutcomeSkipped, Err: err.Error()}))
			continue
		}

		variant := img
		if st.Prepare != nil {
			v, err := st.Prepare(img)
			if err != nil {
				lg.Debugf("cascade: variant skipped: %v", err)
				res.Attempts = append(res.Attempts, c.record(Attempt{Strategy: st.Name, Outcome: OutcomeSkipped, Err: err.Error()}))
				continue
			}
			variant = v
		}

		text, err := c.transcribe(ctx, variant, st.Prompt)
		if err != nil {
			lg.Warnf("cascade: attempt failed: %v", err)
			res.Attempts = append(res.Attempts, c.record(Attempt{Strategy: st.Name, Outcome: OutcomeFailed, Err: err.Error()}))
			continue
		}

		at := Attempt{Strategy: st.Name, Text: text, Score: c.Scorer.Score(text)}
		res.Text, res.Winner = text, st.Name
		if st.Unconditional || c.Scorer.Successful(text) {
			at.Outcome = OutcomeSuccess
			res.Success = true
			res.Attempts = append(res.Attempts, c.record(at))
			lg.WithField("score", at.Score).Info("cascade: accepted")
			return res
		}
		at.Outcome = OutcomeWeak
		res.Attempts = append(res.Attempts, c.record(at))
		lg.WithField("score", at.Score).Debug("cascade: weak text, next strategy")
	}
	return res
}

// transcribe изолирует ошибки и паники одной попытки.
func (c *Cascade) transcribe(ctx context.Context, img []byte, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	text, err = c.Engine.Transcribe(ctx, img, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func (c *Cascade) record(a Attempt) Attempt {
	if c.Metrics != nil {
		c.Metrics.Attempt(a.Strategy, string(a.Outcome))
	}
	return a
}
