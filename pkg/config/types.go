package config

import "time"

// Shared types used across configuration structs.

// MunicipalityConfig describes one onboarded municipality: how to discover
// its meetings, where its archive lives on disk, and which video catalog
// backs its recordings. Mirrors the Municipality.source_config JSON column
// at rest; this is its typed, validated shape while loaded.
type MunicipalityConfig struct {
	Slug         string             `yaml:"slug" validate:"required"`
	Name         string             `yaml:"name" validate:"required"`
	ArchiveRoot  string             `yaml:"archive_root" validate:"required"`
	Scraper      ScraperConfig      `yaml:"scraper"`
	VideoCatalog VideoCatalogConfig `yaml:"video_catalog"`

	// CanonicalNames seeds pkg/names.Canonicalizer with this
	// municipality's known council/staff roster, replacing the
	// original's hardcoded View Royal list.
	CanonicalNames []string `yaml:"canonical_names,omitempty"`
	// NameVariants maps a lowercased alias or nickname to its canonical
	// form, e.g. {"screech": "David Screech"}.
	NameVariants map[string]string `yaml:"name_variants,omitempty"`
	// GeocodeContextKeywords lists neighborhood/landmark words that
	// already anchor an address without needing cityContext appended
	// (pkg/geocode's non-address-prefix/context-keyword check).
	GeocodeContextKeywords []string `yaml:"geocode_context_keywords,omitempty"`
}

// ScraperConfig selects and parameterizes the municipality's meeting-list
// scraper adapter.
type ScraperConfig struct {
	// Backend names the scraper adapter: "civicweb", "legistar", "escribe",
	// or "generic_html" for a best-effort fallback.
	Backend string `yaml:"backend" validate:"required"`
	BaseURL string `yaml:"base_url" validate:"required"`
	// Headless enables go-rod browser automation for JS-rendered portals;
	// false uses a plain HTTP GET + HTML parse.
	Headless bool          `yaml:"headless"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// VideoCatalogConfig configures the catalog that resolves a meeting to its
// recording URL. Backend is validated against "vimeo", "youtube" and
// "media_server", but only the Vimeo catalog exists and it is used for
// every Backend value.
type VideoCatalogConfig struct {
	Backend   string `yaml:"backend" validate:"required"`
	ChannelID string `yaml:"channel_id,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// PipelineConfig holds the tunables for every pipeline stage, shared across
// all municipalities. Per-stage Open Questions from the spec are resolved
// here as configurable fields rather than hardcoded constants.
type PipelineConfig struct {
	Acquirer       AcquirerConfig       `yaml:"acquirer"`
	Diarizer       DiarizerConfig       `yaml:"diarizer"`
	DocExtractor   DocExtractorConfig   `yaml:"doc_extractor"`
	BatchExtractor BatchExtractorConfig `yaml:"batch_extractor"`
	Refiner        RefinerConfig        `yaml:"refiner"`
	Aligner        AlignerConfig        `yaml:"aligner"`
	MatterMatcher  MatterMatcherConfig  `yaml:"matter_matcher"`
	Ingest         IngestConfig         `yaml:"ingest"`
	Embedder       EmbedderConfig       `yaml:"embedder"`
	Profiler       ProfilerConfig       `yaml:"profiler"`
}

// AcquirerConfig tunes the audio/video acquirer's download and
// conversion behavior.
type AcquirerConfig struct {
	// IncludeVideo downloads the muxed Video/ copy in addition to the
	// Audio/ extraction; false matches the original's audio-only default
	// run (video downloads are an explicit opt-in, heavier sync).
	IncludeVideo bool `yaml:"include_video"`
	// FFmpegPath overrides the external encoder binary looked up on PATH.
	FFmpegPath string `yaml:"ffmpeg_path,omitempty"`
	// YTDLPPath overrides the external downloader binary looked up on PATH.
	YTDLPPath string `yaml:"ytdlp_path,omitempty"`
	// DownloadTimeout bounds a single video/audio download.
	DownloadTimeout time.Duration `yaml:"download_timeout,omitempty"`
}

// DiarizerConfig tunes speaker segmentation, STT, and fingerprint matching.
type DiarizerConfig struct {
	FingerprintMatchThreshold float64       `yaml:"fingerprint_match_threshold"`
	SpeakerSampleMaxDuration  time.Duration `yaml:"speaker_sample_max_duration"`
	CacheDir                  string        `yaml:"cache_dir"`
}

// DocExtractorConfig holds two-pass PDF extractor settings. They are
// loaded and validated, but pkg/docextract does not read them: its
// section split limit is the package constant maxSectionChars (8000).
type DocExtractorConfig struct {
	MaxOverlapPages    int `yaml:"max_overlap_pages"`
	SectionMaxChars    int `yaml:"section_max_chars"`
	RepeatingHeaderMin int `yaml:"repeating_header_min"`
}

// BatchExtractorConfig tunes the wave-packed batch submission scheduler.
type BatchExtractorConfig struct {
	MaxWaveBytes  int64         `yaml:"max_wave_bytes"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	CheckpointDir string        `yaml:"checkpoint_dir"`
}

// RefinerConfig tunes the meeting refiner's structured-extraction LLM call.
type RefinerConfig struct {
	Model               string        `yaml:"model" validate:"required"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	MapReduceChunkChars int           `yaml:"map_reduce_chunk_chars"`
}

// AlignerConfig holds transcript-to-agenda alignment settings.
// FallbackMinMatchChars is loaded and validated, but pkg/aligner does not
// read it and has no word-sequence fallback pass.
type AlignerConfig struct {
	FallbackMinMatchChars int `yaml:"fallback_min_match_chars"`
}

// MatterMatcherConfig holds matter identifier/address/title matching
// thresholds. They are loaded and validated, but pkg/matter does not read
// them: its title-similarity minimums are package constants.
type MatterMatcherConfig struct {
	AddressMatchConfidence float64 `yaml:"address_match_confidence"`
	TitleSimilarityMin     float64 `yaml:"title_similarity_min"`
}

// IngestConfig tunes the central ingester, including the geocoder's
// rate limit.
type IngestConfig struct {
	GeocoderRequestsPerSecond float64 `yaml:"geocoder_requests_per_second"`
	GeocoderAPIKeyEnv         string  `yaml:"geocoder_api_key_env,omitempty"`
}

// EmbedderConfig tunes the embedding generator's batching, worker pool, and
// bulk COPY-based upsert (§4.11).
type EmbedderConfig struct {
	// Model is the embedding model name passed to the LLM client.
	Model string `yaml:"model" validate:"required"`
	// Dimensions is the embedding vector width — must match the pgvector
	// column width declared in migrations/0002_pgvector.up.sql.
	Dimensions int `yaml:"dimensions" validate:"omitempty,min=1"`
	// APIBatchSize caps how many texts are sent to the embedding provider
	// per call.
	APIBatchSize int `yaml:"api_batch_size" validate:"omitempty,min=1"`
	// DBFlushSize is how many (id, embedding) pairs accumulate before a
	// bulk temp-table-COPY update is issued.
	DBFlushSize int `yaml:"db_flush_size" validate:"omitempty,min=1"`
	// ParallelUpdateThreshold is the buffered-row count at which bulk
	// updates fan out across WorkerCount goroutines instead of running
	// serially.
	ParallelUpdateThreshold int `yaml:"parallel_update_threshold" validate:"omitempty,min=1"`
	// WorkerCount bounds the bulk-update worker pool once
	// ParallelUpdateThreshold is reached.
	WorkerCount int `yaml:"worker_count" validate:"omitempty,min=1"`
}

// ProfilerConfig tunes the Stance Profiler's structured-extraction LLM
// call and its rate limit against the sidecar.
type ProfilerConfig struct {
	Model string `yaml:"model" validate:"required"`
	// RequestTimeout bounds a single stance-generation call.
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	// RateLimitDelay is the pause between consecutive calls, matching the
	// original's fixed 1-request-per-second throttle.
	RateLimitDelay time.Duration `yaml:"rate_limit_delay,omitempty"`
	// MaxKeyStatements and MaxVotes cap how much evidence is folded into
	// one prompt.
	MaxKeyStatements int `yaml:"max_key_statements" validate:"omitempty,min=1"`
	MaxVotes         int `yaml:"max_votes" validate:"omitempty,min=1"`
}

// LLMClientConfig points at the LLM gRPC service used by the refiner and
// the stance profiler for structured extraction calls.
type LLMClientConfig struct {
	Endpoint  string        `yaml:"endpoint" validate:"required"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	APIKeyEnv string        `yaml:"api_key_env,omitempty"`
}

// NotifierConfig controls the best-effort webhook push issued at the end
// of a meeting's processing.
type NotifierConfig struct {
	Enabled    bool          `yaml:"enabled"`
	WebhookURL string        `yaml:"webhook_url,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
}

// BlobStoreConfig selects the backend for document/image blob storage.
type BlobStoreConfig struct {
	Backend string `yaml:"backend" validate:"required"` // "local" or "s3"
	Root    string `yaml:"root" validate:"required"`     // local directory or s3 bucket name
}

// ModelServicesConfig points pkg/modelclients' HTTP adapters at the
// sidecars that back capability.SpeakerPipeline, capability.SpeechToText,
// capability.DocumentAI/PDFSlicer, capability.BatchAPI, and
// capability.EmbeddingProvider. Each is a standalone model-serving
// process (no shared wire contract), so each gets its own endpoint and
// API key rather than reusing LLMClientConfig's gRPC address.
type ModelServicesConfig struct {
	SpeakerPipelineEndpoint string        `yaml:"speaker_pipeline_endpoint" validate:"required"`
	SpeechToTextEndpoint    string        `yaml:"speech_to_text_endpoint" validate:"required"`
	DocumentAIEndpoint      string        `yaml:"document_ai_endpoint" validate:"required"`
	DocumentAIAPIKeyEnv     string        `yaml:"document_ai_api_key_env,omitempty"`
	BatchAPIEndpoint        string        `yaml:"batch_api_endpoint" validate:"required"`
	BatchAPIKeyEnv          string        `yaml:"batch_api_key_env,omitempty"`
	EmbeddingEndpoint       string        `yaml:"embedding_endpoint" validate:"required"`
	EmbeddingModel          string        `yaml:"embedding_model,omitempty"`
	EmbeddingAPIKeyEnv      string        `yaml:"embedding_api_key_env,omitempty"`
	Timeout                 time.Duration `yaml:"timeout,omitempty"`
}
