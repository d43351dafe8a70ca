package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"hotel-bot/api/internal/util"
)

type Engine struct {
	APIKey      string
	Model       string
	Temperature float32
	// ClientOptions добавляются к ключу при создании клиента (endpoint, http-клиент).
	ClientOptions []option.ClientOption
}

func New(apiKey, model string, temperature float32) *Engine {
	return &Engine{
		APIKey:      strings.TrimSpace(apiKey),
		Model:       strings.TrimSpace(model),
		Temperature: temperature,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Transcribe — vision-запрос: фото + инструкция, ответ обычным текстом.
func (e *Engine) Transcribe(ctx context.Context, image []byte, prompt string) (string, error) {
	parts := []genai.Part{
		genai.Text(prompt),
		&genai.Blob{MIMEType: util.SniffMimeHTTP(image), Data: image},
	}
	txt, err := e.generate(ctx, nil, genai.GenerationConfig{Temperature: ptrFloat32(e.Temperature)}, parts)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}
	return strings.TrimSpace(txt), nil
}

// Complete — текстовый запрос со строгим JSON на выходе.
func (e *Engine) Complete(ctx context.Context, system, user string) (string, error) {
	sys := &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	cfg := genai.GenerationConfig{
		Temperature:      ptrFloat32(e.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   documentSchema,
	}
	txt, err := e.generate(ctx, sys, cfg, []genai.Part{genai.Text(user)})
	if err != nil {
		return "", fmt.Errorf("gemini complete: %w", err)
	}
	return util.StripCodeFences(txt), nil
}

func (e *Engine) generate(ctx context.Context, sys *genai.Content, cfg genai.GenerationConfig, parts []genai.Part) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.ClientOptions...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = cfg
	m.SystemInstruction = sys

	// Один вызов: повторы задаёт каскад стратегий, а структурирование уходит в regex.
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		log.WithField("model", e.Model).Warnf("gemini: %v", err)
		return "", err
	}
	txt := firstText(resp)
	if txt == "" {
		return "", errors.New("empty response")
	}
	return txt, nil
}

// документ: четыре поля, каждое строка или null
var documentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"full_name":   {Type: genai.TypeString, Nullable: true},
		"id_number":   {Type: genai.TypeString, Nullable: true},
		"birth_date":  {Type: genai.TypeString, Nullable: true},
		"nationality": {Type: genai.TypeString, Nullable: true},
	},
	Required: []string{"full_name", "id_number", "birth_date", "nationality"},
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
