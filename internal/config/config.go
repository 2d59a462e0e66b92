package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/design-analyzer/pkg/builder"
)

// Semantic backends
const (
	BackendOpenAI      = "openai"
	BackendAzureOpenAI = "azure-openai"
	BackendLlamaCpp    = "llamacpp"
	BackendOllama      = "ollama"
	BackendGemini      = "gemini"
	BackendStatic      = "static"
)

// Config holds the application configuration
type Config struct {
	Image    ImageConfig    `json:"image" yaml:"image"`
	Vision   VisionConfig   `json:"vision" yaml:"vision"`
	Layout   LayoutConfig   `json:"layout" yaml:"layout"`
	Semantic SemanticConfig `json:"semantic" yaml:"semantic"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`
	// DesignSystemFile is a JSON or YAML file of style tokens and naming rules
	DesignSystemFile string `json:"design_system_file" yaml:"design_system_file"`
}

// ImageConfig holds configuration for loading design images
type ImageConfig struct {
	SupportedFormats []string `json:"supported_formats" yaml:"supported_formats"`
	// MaxDimension downscales larger images before analysis; 0 disables it
	MaxDimension int `json:"max_dimension" yaml:"max_dimension"`
	MaxBytes     int `json:"max_bytes" yaml:"max_bytes"`
}

// VisionConfig holds the Computer Vision resource
type VisionConfig struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Key      string `json:"key" yaml:"key"`
}

// LayoutConfig holds the Form Recognizer resource
type LayoutConfig struct {
	Endpoint       string `json:"endpoint" yaml:"endpoint"`
	Key            string `json:"key" yaml:"key"`
	APIVersion     string `json:"api_version" yaml:"api_version"`
	Model          string `json:"model" yaml:"model"`
	PollIntervalMs int    `json:"poll_interval_ms" yaml:"poll_interval_ms"`
	MaxPolls       int    `json:"max_polls" yaml:"max_polls"`
}

// SemanticConfig selects and configures the vision-language model
type SemanticConfig struct {
	Backend     string  `json:"backend" yaml:"backend"`
	Endpoint    string  `json:"endpoint" yaml:"endpoint"`
	Key         string  `json:"key" yaml:"key"`
	Model       string  `json:"model" yaml:"model"`
	APIVersion  string  `json:"api_version" yaml:"api_version"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	// StaticResponse is returned by the static backend
	StaticResponse string `json:"static_response" yaml:"static_response"`
	Prompt         string `json:"prompt" yaml:"prompt"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	OutputDir  string   `json:"output_dir" yaml:"output_dir"`
	Frameworks []string `json:"frameworks" yaml:"frameworks"`
	Overlay    bool     `json:"overlay" yaml:"overlay"`
	S3         S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds the optional S3/MinIO artifact store
type S3Config struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Region    string `json:"region" yaml:"region"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LogConfig holds the logger settings
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Image: ImageConfig{
			SupportedFormats: []string{"png", "jpg", "jpeg", "webp", "gif"},
			MaxDimension:     0,
			MaxBytes:         20 << 20,
		},
		Layout: LayoutConfig{
			APIVersion:     "2023-07-31",
			Model:          "prebuilt-layout",
			PollIntervalMs: 1000,
			MaxPolls:       120,
		},
		Semantic: SemanticConfig{
			Backend:     BackendAzureOpenAI,
			Model:       "gpt-4-vision-preview",
			APIVersion:  "2024-02-15-preview",
			MaxTokens:   1000,
			Temperature: 0.3,
		},
		Output: OutputConfig{
			OutputDir:  "./output",
			Frameworks: []string{"react"},
			S3: S3Config{
				Region: "us-east-1",
				Bucket: "design-analyzer-artifacts",
				UseSSL: true,
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, an optional file, .env and
// the environment, in that order of precedence (environment wins)
func Load(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if filename != "" {
		loaded, err := LoadFromFile(filename)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON or YAML file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON or YAML file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from environment variables. Both the AZURE_
// prefixed and the short variable names are accepted.
func (c *Config) ApplyEnv() {
	c.Vision.Endpoint = firstNonEmpty(env("AZURE_CV_ENDPOINT"), env("CV_ENDPOINT"), c.Vision.Endpoint)
	c.Vision.Key = firstNonEmpty(env("AZURE_CV_KEY"), env("CV_KEY"), c.Vision.Key)

	c.Layout.Endpoint = firstNonEmpty(env("AZURE_FR_ENDPOINT"), env("FR_ENDPOINT"), c.Layout.Endpoint)
	c.Layout.Key = firstNonEmpty(env("AZURE_FR_KEY"), env("FR_KEY"), c.Layout.Key)

	c.Semantic.Backend = firstNonEmpty(env("SEMANTIC_BACKEND"), c.Semantic.Backend)
	switch c.Semantic.Backend {
	case BackendGemini:
		c.Semantic.Key = firstNonEmpty(env("GEMINI_API_KEY"), c.Semantic.Key)
		c.Semantic.Model = firstNonEmpty(env("GEMINI_MODEL"), c.Semantic.Model)
	case BackendOllama:
		c.Semantic.Endpoint = firstNonEmpty(env("OLLAMA_URL"), c.Semantic.Endpoint)
		c.Semantic.Model = firstNonEmpty(env("OLLAMA_MODEL"), c.Semantic.Model)
	case BackendLlamaCpp:
		c.Semantic.Endpoint = firstNonEmpty(env("LLAMACPP_URL"), c.Semantic.Endpoint)
	default:
		c.Semantic.Endpoint = firstNonEmpty(env("AZURE_OPENAI_ENDPOINT"), env("OPENAI_ENDPOINT"), c.Semantic.Endpoint)
		c.Semantic.Key = firstNonEmpty(env("AZURE_OPENAI_KEY"), env("OPENAI_KEY"), env("OPENAI_API_KEY"), c.Semantic.Key)
		c.Semantic.Model = firstNonEmpty(env("OPENAI_DEPLOYMENT_NAME"), c.Semantic.Model)
		c.Semantic.APIVersion = firstNonEmpty(env("AZURE_OPENAI_API_VERSION"), c.Semantic.APIVersion)
	}

	c.Output.S3.Endpoint = firstNonEmpty(env("ARTIFACT_S3_ENDPOINT"), c.Output.S3.Endpoint)
	c.Output.S3.Region = firstNonEmpty(env("ARTIFACT_S3_REGION"), c.Output.S3.Region)
	c.Output.S3.AccessKey = firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), c.Output.S3.AccessKey)
	c.Output.S3.SecretKey = firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), c.Output.S3.SecretKey)
	c.Output.S3.Bucket = firstNonEmpty(env("ARTIFACT_S3_BUCKET"), c.Output.S3.Bucket)
	if raw := env("ARTIFACT_S3_USE_SSL"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			c.Output.S3.UseSSL = v
		}
	}
	if c.Output.S3.Endpoint != "" {
		c.Output.S3.Enabled = true
	}

	c.Server.Addr = firstNonEmpty(normalizeAddr(env("PORT")), c.Server.Addr)
	c.Log.Level = firstNonEmpty(env("LOG_LEVEL"), c.Log.Level)
	c.Log.Format = firstNonEmpty(env("LOG_FORMAT"), c.Log.Format)
}

// Validate checks if the configuration is valid. Every problem is reported,
// not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Vision.Endpoint == "" || c.Vision.Key == "" {
		errs = append(errs, errors.New("vision.endpoint and vision.key are required (AZURE_CV_ENDPOINT, AZURE_CV_KEY)"))
	}
	if c.Layout.Endpoint == "" || c.Layout.Key == "" {
		errs = append(errs, errors.New("layout.endpoint and layout.key are required (AZURE_FR_ENDPOINT, AZURE_FR_KEY)"))
	}

	switch c.Semantic.Backend {
	case BackendAzureOpenAI:
		if c.Semantic.Endpoint == "" || c.Semantic.Key == "" {
			errs = append(errs, errors.New("semantic.endpoint and semantic.key are required (AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_KEY)"))
		}
	case BackendOpenAI:
		if c.Semantic.Key == "" {
			errs = append(errs, errors.New("semantic.key is required (OPENAI_API_KEY)"))
		}
	case BackendGemini:
		if c.Semantic.Key == "" {
			errs = append(errs, errors.New("semantic.key is required (GEMINI_API_KEY)"))
		}
	case BackendOllama:
		if c.Semantic.Endpoint == "" || c.Semantic.Model == "" {
			errs = append(errs, errors.New("semantic.endpoint and semantic.model are required for ollama (OLLAMA_URL)"))
		}
	case BackendLlamaCpp:
		if c.Semantic.Endpoint == "" {
			errs = append(errs, errors.New("semantic.endpoint is required for llamacpp"))
		}
	case BackendStatic:
	default:
		errs = append(errs, fmt.Errorf("semantic.backend %q is not one of openai, azure-openai, llamacpp, ollama, gemini, static", c.Semantic.Backend))
	}

	if c.Layout.MaxPolls < 0 {
		errs = append(errs, errors.New("layout.max_polls must not be negative"))
	}
	if c.Semantic.MaxTokens < 0 {
		errs = append(errs, errors.New("semantic.max_tokens must not be negative"))
	}
	if c.Semantic.Temperature < 0 || c.Semantic.Temperature > 2 {
		errs = append(errs, errors.New("semantic.temperature must be between 0 and 2"))
	}
	if c.Image.MaxDimension < 0 {
		errs = append(errs, errors.New("image.max_dimension must not be negative"))
	}
	if len(c.Image.SupportedFormats) == 0 {
		errs = append(errs, errors.New("image.supported_formats cannot be empty"))
	}
	if c.Output.S3.Enabled && c.Output.S3.Bucket == "" {
		errs = append(errs, errors.New("output.s3.bucket is required when S3 output is enabled"))
	}

	return errors.Join(errs...)
}

// LoadDesignSystem reads the configured design system file, returning an
// empty design system when none is configured
func (c *Config) LoadDesignSystem() (builder.DesignSystem, error) {
	var ds builder.DesignSystem
	if c.DesignSystemFile == "" {
		return ds, nil
	}

	data, err := os.ReadFile(c.DesignSystemFile)
	if err != nil {
		return ds, fmt.Errorf("failed to read design system file: %w", err)
	}
	if isYAML(c.DesignSystemFile) {
		err = yaml.Unmarshal(data, &ds)
	} else {
		err = json.Unmarshal(data, &ds)
	}
	if err != nil {
		return ds, fmt.Errorf("failed to parse design system file: %w", err)
	}
	return ds, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "design-analyzer", "config.yaml")
}

func isYAML(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func normalizeAddr(port string) string {
	if port == "" || strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
