package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"feedback-insights-go/internal/logger"
)

type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       *logrus.Entry
}

func NewAnthropic(cfg Config) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens(cfg),
		log:       logger.New().WithField("component", "llm-anthropic").WithField("model", model),
	}
}

func (a *Anthropic) Send(ctx context.Context, p Prompt) (Completion, error) {
	log := a.log

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: p.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			log.WithField("http_status", apiErr.StatusCode).Warn("anthropic request failed")
			return Completion{}, wrapTransport(err, apiErr.StatusCode)
		}
		log.WithField("error", err.Error()).Warn("anthropic request failed")
		return Completion{}, wrapTransport(err, 0)
	}

	out := Completion{
		Model: string(msg.Model),
		Usage: &Usage{
			PromptTokens:     msg.Usage.InputTokens,
			CompletionTokens: msg.Usage.OutputTokens,
		},
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.Text = block.Text
			break
		}
	}
	log.WithField("response_len", len(out.Text)).
		WithField("tokens_in", out.Usage.PromptTokens).
		WithField("tokens_out", out.Usage.CompletionTokens).
		Debug("anthropic reply received")
	return out, nil
}
