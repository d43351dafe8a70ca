package extract

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"hotel-bot/api/internal/imageproc"
	"hotel-bot/api/internal/util"
)

// Engine — то, что нужно пайплайну от LLM (ocr.Engine подходит).
type Engine interface {
	Transcriber
	Completer
}

// Cache — кэш результатов по хэшу исходного фото.
type Cache interface {
	Find(ctx context.Context, imageHash string) (*Result, error)
	Save(ctx context.Context, imageHash string, res Result) error
}

type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityPartial   Quality = "partial"
)

type Result struct {
	Fields    Fields    `json:"fields"`
	Text      string    `json:"text"`
	Source    Source    `json:"source"`
	Winner    string    `json:"winner,omitempty"`
	Attempts  []Attempt `json:"attempts,omitempty"`
	FromCache bool      `json:"from_cache"`
	// Normalized — фото после нормализации; его и загружаем в хранилище.
	Normalized []byte `json:"-"`
}

// Quality: 3-4 поля — отлично, 2 — хорошо, иначе частичное извлечение.
func (r Result) Quality() Quality {
	switch n := r.Fields.Count(); {
	case n >= 3:
		return QualityExcellent
	case n == 2:
		return QualityGood
	default:
		return QualityPartial
	}
}

type Options struct {
	Prompts   Prompts
	Scorer    Scorer
	Emergency Emergency
	Limits    imageproc.Limits
	Cache     Cache
	Metrics   Metrics
}

type Pipeline struct {
	Cascade    *Cascade
	Structurer *Structurer
	Emergency  Emergency
	Limits     imageproc.Limits
	Cache      Cache
	Metrics    Metrics
}

func NewPipeline(engine Engine, opt Options) (*Pipeline, error) {
	if opt.Prompts.General == "" {
		opt.Prompts = LoadPrompts("")
	}
	if opt.Scorer == (Scorer{}) {
		opt.Scorer = DefaultScorer()
	}
	if opt.Emergency.MaxIDDigits == 0 {
		opt.Emergency = DefaultEmergency()
	}
	st, err := NewStructurer(engine, opt.Prompts.Structure, opt.Metrics)
	if err != nil {
		return nil, err
	}
	if opt.Limits.MaxBytes == 0 {
		opt.Limits = imageproc.VisionLimits
	}
	opt.Emergency.Metrics = opt.Metrics
	return &Pipeline{
		Cascade: &Cascade{
			Engine:     engine,
			Strategies: DefaultStrategies(opt.Prompts),
			Scorer:     opt.Scorer,
			Metrics:    opt.Metrics,
		},
		Structurer: st,
		Emergency:  opt.Emergency,
		Limits:     opt.Limits,
		Cache:      opt.Cache,
		Metrics:    opt.Metrics,
	}, nil
}

// Extract: нормализация -> каскад -> структурирование -> валидация -> аварийное дозаполнение.
// Ошибок не возвращает: в худшем случае все поля отсутствуют.
func (p *Pipeline) Extract(ctx context.Context, photo []byte) Result {
	started := time.Now()
	img := imageproc.Normalize(photo, p.Limits)
	hash := util.SHA256Hex(photo)
	lg := log.WithField("image", hash[:12])

	if p.Cache != nil {
		if cached, err := p.Cache.Find(ctx, hash); err == nil && cached != nil {
			cached.FromCache = true
			cached.Normalized = img
			lg.Info("extract: cache hit")
			return *cached
		}
	}

	cr := p.Cascade.Run(ctx, img)
	raw, src := p.Structurer.Structure(ctx, cr.Text)
	fields := p.Emergency.Fill(Validate(raw), cr.Text)

	res := Result{
		Fields:     fields,
		Text:       cr.Text,
		Source:     src,
		Winner:     cr.Winner,
		Attempts:   cr.Attempts,
		Normalized: img,
	}
	lg.WithFields(log.Fields{
		"fields":   fields.Count(),
		"source":   src,
		"winner":   cr.Winner,
		"attempts": len(cr.Attempts),
		"took":     time.Since(started).Round(time.Millisecond),
	}).Info("extract: done")

	if p.Metrics != nil {
		p.Metrics.ObserveExtraction(started)
	}
	if p.Cache != nil && cr.Text != "" {
		if err := p.Cache.Save(ctx, hash, res); err != nil {
			lg.Warnf("extract: cache save: %v", err)
		}
	}
	return res
}
