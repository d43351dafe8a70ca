package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	log "github.com/sirupsen/logrus"

	"hotel-bot/api/internal/util"
)

// Completer — текстовый LLM со строгим JSON на выходе.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Source string

const (
	SourceModel Source = "model"
	SourceRegex Source = "regex"
	SourceCache Source = "cache"
)

const documentSchema = `{
  "type": "object",
  "required": ["full_name", "id_number", "birth_date", "nationality"],
  "properties": {
    "full_name":   {"type": ["string", "null"]},
    "id_number":   {"type": ["string", "null"]},
    "birth_date":  {"type": ["string", "null"]},
    "nationality": {"type": ["string", "null"]}
  }
}`

// Structurer превращает сырой текст в четыре поля: сначала модель, при любой ошибке — regex.
type Structurer struct {
	Engine  Completer
	Prompt  string
	Metrics Metrics
	schema  *jsonschema.Schema
}

func NewStructurer(engine Completer, prompt string, m Metrics) (*Structurer, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("document.json", strings.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("document.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if prompt == "" {
		prompt = structurePrompt
	}
	return &Structurer{Engine: engine, Prompt: prompt, Metrics: m, schema: schema}, nil
}

// Structure не возвращает ошибок: сбой сервиса или битый JSON уводят в RegexFallback.
func (s *Structurer) Structure(ctx context.Context, text string) (RawFields, Source) {
	if strings.TrimSpace(text) == "" {
		return RawFields{}, SourceRegex
	}
	if s.Engine != nil {
		raw, err := s.viaModel(ctx, text)
		if err == nil {
			s.count(SourceModel)
			return raw, SourceModel
		}
		log.Warnf("structure: fallback to regex: %v", err)
	}
	s.count(SourceRegex)
	return RegexFallback(text), SourceRegex
}

func (s *Structurer) viaModel(ctx context.Context, text string) (raw RawFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	out, err := s.Engine.Complete(ctx, s.Prompt, "Document text:\n"+text)
	if err != nil {
		return RawFields{}, err
	}
	return s.parse(out)
}

func (s *Structurer) parse(out string) (RawFields, error) {
	data := []byte(util.StripCodeFences(out))
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return RawFields{}, fmt.Errorf("bad JSON: %w", err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return RawFields{}, fmt.Errorf("json does not match schema: %w", err)
	}
	var raw RawFields
	if err := json.Unmarshal(data, &raw); err != nil {
		return RawFields{}, err
	}
	return raw, nil
}

func (s *Structurer) count(src Source) {
	if s.Metrics != nil {
		s.Metrics.Structured(string(src))
	}
}
