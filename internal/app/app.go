// Package app wires configuration into the HTTP router used by both the
// standalone server and the Lambda entrypoint.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"kb-assistant/handler"
	"kb-assistant/internal/config"
	"kb-assistant/internal/integrations/openai"
	"kb-assistant/internal/integrations/paramstore"
	"kb-assistant/internal/knowledge"
	"kb-assistant/internal/usecase"
)

// Deps lets callers substitute the filesystem and the secret source.
type Deps struct {
	FS      afero.Fs
	Secrets paramstore.Getter
}

// ResolveAPIKey returns the literal credential, or fetches it from Parameter
// Store when the configured value is an "ssm:" reference. The AWS SDK is only
// initialised for references.
func ResolveAPIKey(ctx context.Context, cfg config.Config, secrets paramstore.Getter) (string, error) {
	if !paramstore.IsReference(cfg.OpenAIAPIKey) {
		return cfg.OpenAIAPIKey, nil
	}
	if secrets == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return "", fmt.Errorf("app: load AWS config: %w", err)
		}
		client, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return "", fmt.Errorf("app: create SSM client: %w", err)
		}
		secrets = client
	}
	key, err := paramstore.ResolveSecret(ctx, secrets, cfg.OpenAIAPIKey)
	if err != nil {
		return "", fmt.Errorf("app: resolve %s: %w", config.EnvAPIKey, err)
	}
	return key, nil
}

// NewRouter builds every dependency from cfg and returns the routed engine.
func NewRouter(ctx context.Context, cfg config.Config, deps Deps, logger *slog.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsys := deps.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	apiKey, err := ResolveAPIKey(ctx, cfg, deps.Secrets)
	if err != nil {
		return nil, err
	}

	llm, err := openai.NewClient(apiKey,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithTimeout(cfg.ProviderTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("app: create OpenAI client: %w", err)
	}

	loader, err := knowledge.NewFileLoader(fsys, cfg.KnowledgeBaseFile)
	if err != nil {
		return nil, fmt.Errorf("app: create knowledge loader: %w", err)
	}

	askService, err := usecase.NewAskService(loader, llm, usecase.Settings{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Language:    cfg.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create ask service: %w", err)
	}

	h, err := handler.NewHandler(askService, logger)
	if err != nil {
		return nil, fmt.Errorf("app: create handler: %w", err)
	}

	logger.Info("service configured",
		"model", cfg.Model,
		"max_tokens", cfg.MaxTokens,
		"temperature", cfg.Temperature,
		"language", cfg.Language,
		"knowledge_base_file", loader.Path(),
	)
	return h.Router(), nil
}

// LambdaHandler adapts the router to API Gateway proxy events.
func LambdaHandler(r *gin.Engine) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter := ginadapter.New(r)
	return adapter.ProxyWithContext
}

// NewLogger returns the JSON logger used by both entrypoints.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
