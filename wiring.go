package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"thought_leadership_workflow/config"
	"thought_leadership_workflow/generator"
	"thought_leadership_workflow/job"
	"thought_leadership_workflow/publisher"
	"thought_leadership_workflow/scraper"
)

// pipeline is everything a local run or the server needs.
type pipeline struct {
	jobs  *job.Controller
	store publisher.Store
	close func() error
}

func buildPipeline(ctx context.Context, cfg config.Config, logger *log.Logger) (*pipeline, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	li, err := generator.NewAgent(llm, generator.LinkedInRole)
	if err != nil {
		return nil, err
	}
	x, err := generator.NewAgent(llm, generator.XRole)
	if err != nil {
		return nil, err
	}
	validator, err := generator.NewValidator(llm, generator.ValidatorRole)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := job.Deps{LinkedIn: li, X: x, Validator: validator, Store: store}
	if cfg.Apify.Token != "" {
		apify, err := scraper.NewApifyClient(scraper.Settings{
			Token:        cfg.Apify.Token,
			BaseURL:      cfg.Apify.BaseURL,
			PollInterval: cfg.Apify.PollInterval(),
			Timeout:      cfg.Apify.Timeout(),
		}, logger)
		if err != nil {
			_ = closeStore()
			return nil, err
		}
		deps.LinkedInExamples = &scraper.LinkedInSource{
			Runner:         apify,
			Actor:          cfg.Apify.LinkedInActor,
			LimitPerSource: cfg.Apify.LinkedInLimit,
			Logger:         logger,
		}
		deps.XExamples = &scraper.XSource{
			Runner:   apify,
			Actor:    cfg.Apify.XActor,
			MaxItems: cfg.Apify.XMaxItems,
			Logger:   logger,
		}
	} else {
		logger.Printf("[cli] APIFY_API_TOKEN not set; posts are generated without scraped examples")
	}

	bounds := job.Bounds{Min: cfg.Posts.Min, Max: cfg.Posts.Max}
	jobs, err := job.New(deps, job.WithLogger(logger), job.WithBounds(bounds), job.WithBaseContext(ctx))
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	return &pipeline{jobs: jobs, store: store, close: closeStore}, nil
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		MaxRetries: cfg.LLM.MaxRetries,
	}
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return generator.NewOpenAILLMFromConfig(settings)
	case config.ProviderDeepSeek, config.ProviderOpenRouter:
		// OpenAI-compatible gateways need an explicit base_url.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider %s requires base_url (OpenAI-compatible endpoint)", cfg.LLM.Provider)
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case config.ProviderMock:
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func buildStore(ctx context.Context, cfg config.Config) (publisher.Store, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		r := cfg.Storage.Redis
		store, err := publisher.DialRedis(ctx, publisher.RedisOptions{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
			TTL:      time.Duration(r.TTLSeconds) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return publisher.NewFileStore(cfg.Storage.OutputDir), func() error { return nil }, nil
	}
}
