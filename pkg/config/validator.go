package config

import (
	"fmt"
	"net/url"
	"os"
)

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at the
// first error). Order: municipalities → pipeline → LLM client → notifier →
// blob store → model services → defaults, so a bad municipality definition is reported
// before downstream pipeline settings are even considered.
func (v *Validator) ValidateAll() error {
	if err := v.validateMunicipalities(); err != nil {
		return fmt.Errorf("municipality validation failed: %w", err)
	}

	if err := v.validatePipeline(); err != nil {
		return fmt.Errorf("pipeline validation failed: %w", err)
	}

	if err := v.validateLLMClient(); err != nil {
		return fmt.Errorf("LLM client validation failed: %w", err)
	}

	if err := v.validateNotifier(); err != nil {
		return fmt.Errorf("notifier validation failed: %w", err)
	}

	if err := v.validateBlobStore(); err != nil {
		return fmt.Errorf("blob store validation failed: %w", err)
	}

	if err := v.validateModelServices(); err != nil {
		return fmt.Errorf("model services validation failed: %w", err)
	}

	if err := v.validateDefaults(); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateMunicipalities() error {
	if v.cfg.MunicipalityRegistry == nil {
		return fmt.Errorf("municipality registry is nil")
	}

	seen := make(map[string]bool)
	for _, m := range v.cfg.MunicipalityRegistry.GetAll() {
		if m.Slug == "" {
			return NewValidationError("municipality", m.Name, "slug", fmt.Errorf("slug required"))
		}
		if seen[m.Slug] {
			return NewValidationError("municipality", m.Slug, "slug", fmt.Errorf("duplicate slug"))
		}
		seen[m.Slug] = true

		if m.Name == "" {
			return NewValidationError("municipality", m.Slug, "name", fmt.Errorf("name required"))
		}
		if m.ArchiveRoot == "" {
			return NewValidationError("municipality", m.Slug, "archive_root", fmt.Errorf("archive_root required"))
		}

		if err := v.validateScraper(m.Slug, &m.Scraper); err != nil {
			return err
		}
		if err := v.validateVideoCatalog(m.Slug, &m.VideoCatalog); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) validateScraper(municipalitySlug string, s *ScraperConfig) error {
	switch s.Backend {
	case "civicweb", "legistar", "escribe", "generic_html":
	case "":
		return NewValidationError("municipality", municipalitySlug, "scraper.backend", fmt.Errorf("backend required"))
	default:
		return NewValidationError("municipality", municipalitySlug, "scraper.backend", fmt.Errorf("unknown scraper backend: %s", s.Backend))
	}

	if s.BaseURL == "" {
		return NewValidationError("municipality", municipalitySlug, "scraper.base_url", fmt.Errorf("base_url required"))
	}
	if _, err := url.Parse(s.BaseURL); err != nil {
		return NewValidationError("municipality", municipalitySlug, "scraper.base_url", fmt.Errorf("not a valid URL: %w", err))
	}
	if s.Timeout < 0 {
		return NewValidationError("municipality", municipalitySlug, "scraper.timeout", fmt.Errorf("must be non-negative"))
	}

	return nil
}

func (v *Validator) validateVideoCatalog(municipalitySlug string, vc *VideoCatalogConfig) error {
	switch vc.Backend {
	case "vimeo", "youtube", "media_server":
	case "":
		return NewValidationError("municipality", municipalitySlug, "video_catalog.backend", fmt.Errorf("backend required"))
	default:
		return NewValidationError("municipality", municipalitySlug, "video_catalog.backend", fmt.Errorf("unknown video catalog backend: %s", vc.Backend))
	}

	if vc.APIKeyEnv != "" {
		if value := os.Getenv(vc.APIKeyEnv); value == "" {
			return NewValidationError("municipality", municipalitySlug, "video_catalog.api_key_env", fmt.Errorf("environment variable %s is not set", vc.APIKeyEnv))
		}
	}

	return nil
}

func (v *Validator) validatePipeline() error {
	p := &v.cfg.Pipeline

	if p.Diarizer.FingerprintMatchThreshold <= 0 || p.Diarizer.FingerprintMatchThreshold > 1 {
		return NewValidationError("pipeline", "diarizer", "fingerprint_match_threshold", fmt.Errorf("must be in (0, 1], got %v", p.Diarizer.FingerprintMatchThreshold))
	}
	if p.Diarizer.SpeakerSampleMaxDuration <= 0 {
		return NewValidationError("pipeline", "diarizer", "speaker_sample_max_duration", fmt.Errorf("must be positive"))
	}

	if p.DocExtractor.SectionMaxChars < 500 {
		return NewValidationError("pipeline", "doc_extractor", "section_max_chars", fmt.Errorf("must be at least 500, got %d", p.DocExtractor.SectionMaxChars))
	}
	if p.DocExtractor.MaxOverlapPages < 0 {
		return NewValidationError("pipeline", "doc_extractor", "max_overlap_pages", fmt.Errorf("must be non-negative"))
	}

	if p.BatchExtractor.MaxWaveBytes <= 0 {
		return NewValidationError("pipeline", "batch_extractor", "max_wave_bytes", fmt.Errorf("must be positive"))
	}
	if p.BatchExtractor.PollInterval <= 0 {
		return NewValidationError("pipeline", "batch_extractor", "poll_interval", fmt.Errorf("must be positive"))
	}

	if p.Refiner.Model == "" {
		return NewValidationError("pipeline", "refiner", "model", fmt.Errorf("model required"))
	}
	if p.Refiner.RequestTimeout <= 0 {
		return NewValidationError("pipeline", "refiner", "request_timeout", fmt.Errorf("must be positive"))
	}
	if p.Refiner.MapReduceChunkChars <= 0 {
		return NewValidationError("pipeline", "refiner", "map_reduce_chunk_chars", fmt.Errorf("must be positive"))
	}

	if p.Aligner.FallbackMinMatchChars < 1 {
		return NewValidationError("pipeline", "aligner", "fallback_min_match_chars", fmt.Errorf("must be at least 1"))
	}

	if p.MatterMatcher.AddressMatchConfidence <= 0 || p.MatterMatcher.AddressMatchConfidence > 1 {
		return NewValidationError("pipeline", "matter_matcher", "address_match_confidence", fmt.Errorf("must be in (0, 1]"))
	}
	if p.MatterMatcher.TitleSimilarityMin <= 0 || p.MatterMatcher.TitleSimilarityMin > 1 {
		return NewValidationError("pipeline", "matter_matcher", "title_similarity_min", fmt.Errorf("must be in (0, 1]"))
	}

	if p.Ingest.GeocoderRequestsPerSecond <= 0 {
		return NewValidationError("pipeline", "ingest", "geocoder_requests_per_second", fmt.Errorf("must be positive"))
	}

	if p.Embedder.WorkerCount < 1 {
		return NewValidationError("pipeline", "embedder", "worker_count", fmt.Errorf("must be at least 1"))
	}
	if p.Embedder.APIBatchSize < 1 {
		return NewValidationError("pipeline", "embedder", "api_batch_size", fmt.Errorf("must be at least 1"))
	}
	if p.Embedder.DBFlushSize < 1 {
		return NewValidationError("pipeline", "embedder", "db_flush_size", fmt.Errorf("must be at least 1"))
	}
	if p.Embedder.Model == "" {
		return NewValidationError("pipeline", "embedder", "model", fmt.Errorf("model required"))
	}

	if p.Profiler.Model == "" {
		return NewValidationError("pipeline", "profiler", "model", fmt.Errorf("model required"))
	}
	if p.Profiler.MaxKeyStatements < 1 {
		return NewValidationError("pipeline", "profiler", "max_key_statements", fmt.Errorf("must be at least 1"))
	}
	if p.Profiler.MaxVotes < 1 {
		return NewValidationError("pipeline", "profiler", "max_votes", fmt.Errorf("must be at least 1"))
	}

	return nil
}

func (v *Validator) validateLLMClient() error {
	c := v.cfg.LLMClient

	if c.Endpoint == "" {
		return NewValidationError("llm_client", "", "endpoint", fmt.Errorf("endpoint required"))
	}
	if c.Timeout <= 0 {
		return NewValidationError("llm_client", "", "timeout", fmt.Errorf("must be positive"))
	}
	if c.APIKeyEnv != "" {
		if value := os.Getenv(c.APIKeyEnv); value == "" {
			return NewValidationError("llm_client", "", "api_key_env", fmt.Errorf("environment variable %s is not set", c.APIKeyEnv))
		}
	}

	return nil
}

func (v *Validator) validateNotifier() error {
	n := v.cfg.Notifier
	if !n.Enabled {
		return nil
	}

	if n.WebhookURL == "" {
		return NewValidationError("notifier", "", "webhook_url", fmt.Errorf("webhook_url required when notifier is enabled"))
	}
	if _, err := url.Parse(n.WebhookURL); err != nil {
		return NewValidationError("notifier", "", "webhook_url", fmt.Errorf("not a valid URL: %w", err))
	}
	if n.Timeout <= 0 {
		return NewValidationError("notifier", "", "timeout", fmt.Errorf("must be positive"))
	}

	return nil
}

func (v *Validator) validateBlobStore() error {
	b := v.cfg.BlobStore

	switch b.Backend {
	case "local", "s3":
	default:
		return NewValidationError("blob_store", "", "backend", fmt.Errorf("unknown backend: %s", b.Backend))
	}
	if b.Root == "" {
		return NewValidationError("blob_store", "", "root", fmt.Errorf("root required"))
	}

	return nil
}

func (v *Validator) validateModelServices() error {
	m := &v.cfg.ModelServices

	endpoints := map[string]string{
		"speaker_pipeline_endpoint": m.SpeakerPipelineEndpoint,
		"speech_to_text_endpoint":   m.SpeechToTextEndpoint,
		"document_ai_endpoint":      m.DocumentAIEndpoint,
		"batch_api_endpoint":        m.BatchAPIEndpoint,
		"embedding_endpoint":        m.EmbeddingEndpoint,
	}
	for field, value := range endpoints {
		if value == "" {
			return NewValidationError("model_services", "", field, fmt.Errorf("required"))
		}
		if _, err := url.Parse(value); err != nil {
			return NewValidationError("model_services", "", field, fmt.Errorf("not a valid URL: %w", err))
		}
	}
	if m.Timeout <= 0 {
		return NewValidationError("model_services", "", "timeout", fmt.Errorf("must be positive"))
	}

	for _, envVar := range []string{m.DocumentAIAPIKeyEnv, m.BatchAPIKeyEnv, m.EmbeddingAPIKeyEnv} {
		if envVar == "" {
			continue
		}
		if os.Getenv(envVar) == "" {
			return NewValidationError("model_services", "", envVar, fmt.Errorf("environment variable %s is not set", envVar))
		}
	}

	return nil
}

func (v *Validator) validateDefaults() error {
	defaults := v.cfg.Defaults
	if defaults == nil {
		return nil
	}

	if defaults.TranscriptMasking != nil && defaults.TranscriptMasking.Enabled {
		if defaults.TranscriptMasking.PatternGroup == "" {
			return NewValidationError("defaults", "", "transcript_masking.pattern_group",
				fmt.Errorf("pattern_group is required when transcript masking is enabled"))
		}
	}

	return nil
}
