package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/azure"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/sirupsen/logrus"

	"feedback-insights-go/internal/logger"
)

// OpenAI talks to Azure OpenAI deployments and the public OpenAI API.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
	log       *logrus.Entry
}

func NewOpenAI(cfg Config) *OpenAI {
	// Retries are owned by the analysis adapter.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	model := cfg.Model

	switch cfg.Provider {
	case ProviderAzure:
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
		// Azure routes by deployment name.
		model = cfg.Deployment
	default:
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		if model == "" {
			model = defaultOpenAIModel
		}
	}

	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens(cfg),
		log:       logger.New().WithField("component", "llm-openai").WithField("model", model),
	}
}

func (o *OpenAI) Send(ctx context.Context, p Prompt) (Completion, error) {
	log := o.log

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(o.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			log.WithField("http_status", apiErr.StatusCode).Warn("openai request failed")
			return Completion{}, wrapTransport(err, apiErr.StatusCode)
		}
		log.WithField("error", err.Error()).Warn("openai request failed")
		return Completion{}, wrapTransport(err, 0)
	}

	out := Completion{Model: resp.Model}
	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		out.Usage = &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		}
	}
	if len(resp.Choices) == 0 {
		// Tokens were still spent; hand back usage with an empty reply.
		return out, nil
	}
	out.Text = resp.Choices[0].Message.Content
	log.WithField("response_len", len(out.Text)).Debug(fmt.Sprintf("openai reply: %s", out.Text))
	return out, nil
}
