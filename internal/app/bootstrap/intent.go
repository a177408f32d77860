package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/dental-receptionist/internal/config"
	"github.com/wolfman30/dental-receptionist/internal/intent"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

// BuildLLMClient wires the configured intent model, optionally backed by a
// fallback provider. It returns nil when no provider is configured, in which
// case the analyzer runs on keywords alone. cleanup releases client resources.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (intent.LLMClient, func(), error) {
	if cfg == nil {
		return nil, func() {}, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	build := func(provider string) (intent.LLMClient, error) {
		switch provider {
		case "", appconfig.LLMNone:
			return nil, nil
		case appconfig.LLMGemini:
			client, err := intent.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return nil, err
			}
			closers = append(closers, func() { _ = client.Close() })
			return client, nil
		case appconfig.LLMBedrock:
			if awsCfg == nil {
				return nil, fmt.Errorf("bootstrap: aws config required for bedrock")
			}
			return intent.NewBedrockLLMClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID)
		default:
			return nil, fmt.Errorf("bootstrap: unknown llm provider %q", provider)
		}
	}

	primary, err := build(cfg.LLMProvider)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("bootstrap: %s llm: %w", cfg.LLMProvider, err)
	}
	var fallback intent.LLMClient
	if cfg.LLMFallback != "" && cfg.LLMFallback != cfg.LLMProvider {
		fallback, err = build(cfg.LLMFallback)
		if err != nil {
			logger.Warn("fallback llm unavailable", "provider", cfg.LLMFallback, "error", err)
			fallback = nil
		}
	}

	if primary == nil && fallback == nil {
		logger.Warn("no llm configured; intent analysis uses keyword matching")
		return nil, cleanup, nil
	}
	logger.Info("intent llm enabled", "provider", cfg.LLMProvider, "fallback", cfg.LLMFallback)
	return intent.NewFallbackLLMClient(primary, fallback, logger), cleanup, nil
}

// BuildAnalyzer creates the chat intent analyzer for the clinic. The request
// model stays empty so each provider uses the model it was built with.
func BuildAnalyzer(llm intent.LLMClient, cfg *appconfig.Config, bizCal scheduling.BusinessCalendarConfig, logger *logging.Logger) *intent.Analyzer {
	analyzerCfg := intent.AnalyzerConfig{Calendar: bizCal}
	if cfg != nil {
		analyzerCfg.BusinessName = cfg.BusinessName
		analyzerCfg.BusinessPhone = cfg.BusinessPhone
	}
	return intent.NewAnalyzer(llm, analyzerCfg, logger)
}
