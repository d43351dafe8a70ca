package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"hotel-bot/api/internal/util"
)

type Engine struct {
	APIKey      string
	Model       string
	Temperature float32
	client      *goopenai.Client
}

func New(key, model string, temp float32) *Engine {
	return &Engine{
		APIKey:      strings.TrimSpace(key),
		Model:       strings.TrimSpace(model),
		Temperature: temp,
		client:      goopenai.NewClient(strings.TrimSpace(key)),
	}
}

// temperature: в go-openai поле omitempty, и 0 превратился бы в дефолт сервиса (1.0).
func temperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func (e *Engine) Name() string     { return "openai" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Transcribe(ctx context.Context, image []byte, prompt string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}
	req := goopenai.ChatCompletionRequest{
		Model:       e.Model,
		Temperature: temperature(e.Temperature),
		Messages: []goopenai.ChatCompletionMessage{{
			Role: goopenai.ChatMessageRoleUser,
			MultiContent: []goopenai.ChatMessagePart{
				{Type: goopenai.ChatMessagePartTypeText, Text: prompt},
				{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{
					URL:    util.MakeDataURL(util.SniffMimeHTTP(image), image),
					Detail: goopenai.ImageURLDetailHigh,
				}},
			},
		}},
	}
	out, err := e.chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai transcribe: %w", err)
	}
	return out, nil
}

func (e *Engine) Complete(ctx context.Context, system, user string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}
	req := goopenai.ChatCompletionRequest{
		Model:       e.Model,
		Temperature: temperature(e.Temperature),
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	out, err := e.chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai complete: %w", err)
	}
	return util.StripCodeFences(out), nil
}

func (e *Engine) chat(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
