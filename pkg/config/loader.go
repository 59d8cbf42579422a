package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CivicPipeYAMLConfig represents the complete civicpipe.yaml file structure.
type CivicPipeYAMLConfig struct {
	Defaults      *Defaults             `yaml:"defaults"`
	Municipalities []MunicipalityConfig `yaml:"municipalities"`
	Pipeline      *PipelineConfig       `yaml:"pipeline"`
	LLMClient     *LLMClientConfig      `yaml:"llm_client"`
	Notifier      *NotifierConfig       `yaml:"notifier"`
	BlobStore     *BlobStoreConfig      `yaml:"blob_store"`
	ModelServices *ModelServicesConfig  `yaml:"model_services"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load civicpipe.yaml from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in + user-defined municipalities and pipeline tunables
//  5. Build the municipality registry
//  6. Apply default values
//  7. Validate all configuration
//  8. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"municipalities", stats.Municipalities)

	return cfg, nil
}

// load is the internal loader (not exported).
func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	yamlCfg, err := loader.loadCivicPipeYAML()
	if err != nil {
		return nil, NewLoadError("civicpipe.yaml", err)
	}

	builtin := GetBuiltinConfig()

	municipalities := mergeMunicipalities(builtin.Municipalities, yamlCfg.Municipalities)
	municipalityRegistry := NewMunicipalityRegistry(municipalities)

	pipelineCfg, err := mergePipelineConfig(yamlCfg.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to merge pipeline config: %w", err)
	}

	defaults := yamlCfg.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	if defaults.TimeZone == "" {
		defaults.TimeZone = "America/Vancouver"
	}
	if defaults.TranscriptMasking == nil {
		defaults.TranscriptMasking = &TranscriptMaskingDefaults{
			Enabled:      true,
			PatternGroup: "pii",
		}
	}

	llmClientCfg := resolveLLMClientConfig(yamlCfg.LLMClient)
	notifierCfg := resolveNotifierConfig(yamlCfg.Notifier)
	blobStoreCfg := resolveBlobStoreConfig(yamlCfg.BlobStore)
	modelServicesCfg := resolveModelServicesConfig(yamlCfg.ModelServices)

	return &Config{
		configDir:            configDir,
		Defaults:             defaults,
		MunicipalityRegistry: municipalityRegistry,
		Pipeline:             pipelineCfg,
		LLMClient:            llmClientCfg,
		Notifier:             notifierCfg,
		BlobStore:            blobStoreCfg,
		ModelServices:        modelServicesCfg,
	}, nil
}

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	validator := NewValidator(cfg)
	return validator.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	// Expand environment variables using ${VAR}/$VAR shell-style syntax.
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadCivicPipeYAML() (*CivicPipeYAMLConfig, error) {
	var cfg CivicPipeYAMLConfig
	cfg.Municipalities = []MunicipalityConfig{}

	if err := l.loadYAML("civicpipe.yaml", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveLLMClientConfig resolves the LLM client configuration from YAML,
// applying defaults.
func resolveLLMClientConfig(user *LLMClientConfig) LLMClientConfig {
	cfg := LLMClientConfig{
		Endpoint:  "localhost:50051",
		Timeout:   2 * time.Minute,
		APIKeyEnv: "LLM_API_KEY",
	}

	if user == nil {
		return cfg
	}
	if user.Endpoint != "" {
		cfg.Endpoint = user.Endpoint
	}
	if user.Timeout != 0 {
		cfg.Timeout = user.Timeout
	}
	if user.APIKeyEnv != "" {
		cfg.APIKeyEnv = user.APIKeyEnv
	}
	return cfg
}

// resolveNotifierConfig resolves notifier configuration from YAML, applying
// defaults.
func resolveNotifierConfig(user *NotifierConfig) NotifierConfig {
	cfg := NotifierConfig{
		Enabled: false,
		Timeout: 10 * time.Second,
	}

	if user == nil {
		return cfg
	}
	cfg.Enabled = user.Enabled
	if user.WebhookURL != "" {
		cfg.WebhookURL = user.WebhookURL
	}
	if user.Timeout != 0 {
		cfg.Timeout = user.Timeout
	}
	return cfg
}

// resolveBlobStoreConfig resolves blob store configuration from YAML,
// applying defaults.
func resolveBlobStoreConfig(user *BlobStoreConfig) BlobStoreConfig {
	cfg := BlobStoreConfig{
		Backend: "local",
		Root:    "./archive",
	}

	if user == nil {
		return cfg
	}
	if user.Backend != "" {
		cfg.Backend = user.Backend
	}
	if user.Root != "" {
		cfg.Root = user.Root
	}
	return cfg
}

// resolveModelServicesConfig resolves the model-serving sidecar endpoints
// from YAML, applying localhost defaults for a single-box deployment.
func resolveModelServicesConfig(user *ModelServicesConfig) ModelServicesConfig {
	cfg := ModelServicesConfig{
		SpeakerPipelineEndpoint: "http://localhost:8801/diarize",
		SpeechToTextEndpoint:    "http://localhost:8802/transcribe",
		DocumentAIEndpoint:      "http://localhost:8803",
		DocumentAIAPIKeyEnv:     "DOCUMENT_AI_API_KEY",
		BatchAPIEndpoint:        "http://localhost:8804",
		BatchAPIKeyEnv:          "BATCH_API_KEY",
		EmbeddingEndpoint:       "http://localhost:8805/v1/embeddings",
		EmbeddingModel:          "text-embedding-3-small",
		EmbeddingAPIKeyEnv:      "EMBEDDING_API_KEY",
		Timeout:                2 * time.Minute,
	}

	if user == nil {
		return cfg
	}
	if user.SpeakerPipelineEndpoint != "" {
		cfg.SpeakerPipelineEndpoint = user.SpeakerPipelineEndpoint
	}
	if user.SpeechToTextEndpoint != "" {
		cfg.SpeechToTextEndpoint = user.SpeechToTextEndpoint
	}
	if user.DocumentAIEndpoint != "" {
		cfg.DocumentAIEndpoint = user.DocumentAIEndpoint
	}
	if user.DocumentAIAPIKeyEnv != "" {
		cfg.DocumentAIAPIKeyEnv = user.DocumentAIAPIKeyEnv
	}
	if user.BatchAPIEndpoint != "" {
		cfg.BatchAPIEndpoint = user.BatchAPIEndpoint
	}
	if user.BatchAPIKeyEnv != "" {
		cfg.BatchAPIKeyEnv = user.BatchAPIKeyEnv
	}
	if user.EmbeddingEndpoint != "" {
		cfg.EmbeddingEndpoint = user.EmbeddingEndpoint
	}
	if user.EmbeddingModel != "" {
		cfg.EmbeddingModel = user.EmbeddingModel
	}
	if user.EmbeddingAPIKeyEnv != "" {
		cfg.EmbeddingAPIKeyEnv = user.EmbeddingAPIKeyEnv
	}
	if user.Timeout != 0 {
		cfg.Timeout = user.Timeout
	}
	return cfg
}
