package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jwebster45206/saga-engine/pkg/chat"
)

const (
	defaultPlannerTimeout   = 90 * time.Second
	defaultPlannerMaxTokens = 2048
)

// OpenAIPlanner talks to any OpenAI-compatible chat completions endpoint in
// JSON mode.
type OpenAIPlanner struct {
	client    openai.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
	ready     bool
}

var _ Planner = (*OpenAIPlanner)(nil)

// NewOpenAIPlanner builds a planner. baseURL may be empty for the OpenAI API
// itself. Extra request options are appended, which tests use to point the
// client at a fake server.
func NewOpenAIPlanner(apiKey, baseURL, model string, logger *slog.Logger, opts ...option.RequestOption) *OpenAIPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIPlanner{
		client:    openai.NewClient(reqOpts...),
		model:     model,
		maxTokens: defaultPlannerMaxTokens,
		timeout:   defaultPlannerTimeout,
		logger:    logger,
		tracer:    otel.Tracer("saga-engine/llm"),
		ready:     apiKey != "" || baseURL != "",
	}
}

func (p *OpenAIPlanner) Name() string { return "openai:" + p.model }

func (p *OpenAIPlanner) Ready(ctx context.Context) error {
	if !p.ready {
		return errors.New("planner has no API key or base URL")
	}
	return nil
}

// CompleteJSON sends messages and returns the first choice's content.
func (p *OpenAIPlanner) CompleteJSON(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	ctx, span := p.tracer.Start(ctx, "llm.plan",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.system", "openai"),
			attribute.String("gen_ai.request.model", p.model),
			attribute.Int64("gen_ai.request.max_tokens", p.maxTokens),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(p.model),
		Messages:            toOpenAIMessages(messages),
		MaxCompletionTokens: openai.Int(p.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: func() *shared.ResponseFormatJSONObjectParam {
				f := shared.NewResponseFormatJSONObjectParam()
				return &f
			}(),
		},
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", fmt.Errorf("plan completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := errors.New("no completion choices returned")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("model refused to plan: %s", choice.Message.Refusal)
	}
	span.SetAttributes(
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
		attribute.String("gen_ai.response.finish_reason", string(choice.FinishReason)),
	)
	p.logger.Debug("Planner responded",
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
	return choice.Message.Content, nil
}

func toOpenAIMessages(messages []chat.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.ChatRoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case chat.ChatRoleAgent:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
