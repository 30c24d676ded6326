package usecase

import (
	"context"
	"errors"
	"strings"

	"kb-assistant/internal/domain"
)

const (
	DefaultModel       = "gpt-3.5-turbo"
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.7
)

// KnowledgeLoader returns the current knowledge base text.
type KnowledgeLoader interface {
	Load(ctx context.Context) (string, error)
}

// Completer is the narrow view of a chat-completion provider. Implementations
// wrap credential failures with domain.ErrProviderAuth and throttling with
// domain.ErrProviderRateLimit.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// Settings are the fixed per-process completion parameters.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Language    Language
}

type AskService struct {
	knowledge KnowledgeLoader
	llm       Completer
	settings  Settings
}

type AskInput struct {
	Message string
}

type AskOutput struct {
	Response string
}

func NewAskService(k KnowledgeLoader, llm Completer, settings Settings) (*AskService, error) {
	if k == nil {
		return nil, errors.New("usecase: knowledge loader must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: completer must not be nil")
	}
	settings.Model = strings.TrimSpace(settings.Model)
	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = DefaultMaxTokens
	}
	if settings.Temperature < 0 || settings.Temperature > 2 {
		return nil, errors.New("usecase: temperature must be between 0 and 2")
	}
	if settings.Language == "" {
		settings.Language = DefaultLanguage
	}
	if _, err := ParseLanguage(string(settings.Language)); err != nil {
		return nil, err
	}
	return &AskService{
		knowledge: k,
		llm:       llm,
		settings:  settings,
	}, nil
}

// Ask answers one message from the knowledge base with a single completion
// call. No state is kept between calls.
func (s *AskService) Ask(ctx context.Context, in AskInput) (AskOutput, error) {
	kb, err := s.knowledge.Load(ctx)
	if err != nil {
		return AskOutput{}, newError(ErrorInternal, "knowledge_read_error", err)
	}

	answer, err := s.llm.Complete(ctx, domain.CompletionRequest{
		Model:       s.settings.Model,
		Messages:    buildPromptMessages(s.settings.Language, kb, in.Message),
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProviderAuth):
			return AskOutput{}, newError(ErrorUnauthorized, "openai_auth_error", err)
		case errors.Is(err, domain.ErrProviderRateLimit):
			return AskOutput{}, newError(ErrorRateLimited, "openai_rate_limited", err)
		}
		return AskOutput{}, newError(ErrorUpstream, "openai_error", err)
	}

	return AskOutput{Response: strings.TrimSpace(answer)}, nil
}
