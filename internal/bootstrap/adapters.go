package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	designanalyzer "github.com/menta2k/design-analyzer"
	"github.com/menta2k/design-analyzer/internal/artifact"
	"github.com/menta2k/design-analyzer/internal/config"
	"github.com/menta2k/design-analyzer/internal/imageio"
	"github.com/menta2k/design-analyzer/pkg/adapter"
	"github.com/menta2k/design-analyzer/pkg/azurevision"
	"github.com/menta2k/design-analyzer/pkg/docintel"
	"github.com/menta2k/design-analyzer/pkg/gemini"
	"github.com/menta2k/design-analyzer/pkg/ollama"
	"github.com/menta2k/design-analyzer/pkg/openai"
)

func NewDetector(cfg *config.Config) (adapter.ObjectDetector, error) {
	client, err := azurevision.NewClient(cfg.Vision.Endpoint, cfg.Vision.Key)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func NewLayoutReader(cfg *config.Config) (adapter.LayoutReader, error) {
	client, err := docintel.NewClient(docintel.Config{
		Endpoint:     cfg.Layout.Endpoint,
		Key:          cfg.Layout.Key,
		APIVersion:   cfg.Layout.APIVersion,
		Model:        cfg.Layout.Model,
		PollInterval: time.Duration(cfg.Layout.PollIntervalMs) * time.Millisecond,
		MaxPolls:     cfg.Layout.MaxPolls,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewModel creates the vision-language model for the configured backend
func NewModel(ctx context.Context, cfg *config.Config) (adapter.VisionLanguageModel, error) {
	sc := cfg.Semantic

	switch sc.Backend {
	case config.BackendStatic:
		return adapter.StaticModel{Content: sc.StaticResponse}, nil

	case config.BackendOpenAI, config.BackendAzureOpenAI, config.BackendLlamaCpp:
		client, err := openai.NewClient(openai.Config{
			BaseURL:     sc.Endpoint,
			APIKey:      sc.Key,
			Model:       sc.Model,
			Azure:       sc.Backend == config.BackendAzureOpenAI,
			APIVersion:  sc.APIVersion,
			MaxTokens:   sc.MaxTokens,
			Temperature: sc.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.BackendOllama:
		client, err := ollama.NewClient(sc.Endpoint, sc.Model)
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.BackendGemini:
		model := sc.Model
		// the config default names an OpenAI deployment
		if model == openai.DefaultModel {
			model = gemini.DefaultModel
		}
		client, err := gemini.NewClientWithBaseURL(ctx, sc.Key, model, sc.Endpoint)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	return nil, fmt.Errorf("unknown semantic backend: %s", sc.Backend)
}

// ProvideAnalyzer wires all three adapters, the design system and the
// semantic prompt into an Analyzer
func ProvideAnalyzer(cfg *config.Config, logger *slog.Logger) (*designanalyzer.Analyzer, error) {
	detector, err := NewDetector(cfg)
	if err != nil {
		return nil, fmt.Errorf("vision adapter: %w", err)
	}
	layout, err := NewLayoutReader(cfg)
	if err != nil {
		return nil, fmt.Errorf("layout adapter: %w", err)
	}
	model, err := NewModel(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("semantic adapter: %w", err)
	}
	ds, err := cfg.LoadDesignSystem()
	if err != nil {
		return nil, err
	}

	logger.Info("analyzer configured", "semantic_backend", cfg.Semantic.Backend, "model", cfg.Semantic.Model)
	return designanalyzer.New(designanalyzer.Options{
		Detector:       detector,
		Layout:         layout,
		Model:          model,
		Logger:         logger,
		DesignSystem:   ds,
		SemanticPrompt: cfg.Semantic.Prompt,
	}), nil
}

func ProvideLoader(cfg *config.Config) *imageio.Loader {
	return imageio.NewLoader(
		imageio.WithSupportedFormats(cfg.Image.SupportedFormats...),
		imageio.WithMaxBytes(cfg.Image.MaxBytes),
	)
}

// ProvideArtifactStore returns the S3 store when enabled, else a local
// directory store under the output dir
func ProvideArtifactStore(cfg *config.Config) (artifact.Store, error) {
	s3 := cfg.Output.S3
	if s3.Enabled {
		store, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			UseSSL:    s3.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := artifact.NewFileStore(cfg.Output.OutputDir)
	if err != nil {
		return nil, err
	}
	return store, nil
}
