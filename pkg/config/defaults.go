package config

import "time"

// Defaults contains system-wide default configurations. These values are
// used when a municipality or pipeline stage doesn't specify its own
// override.
type Defaults struct {
	// TimeZone is the default IANA time zone used to interpret meeting
	// timestamps scraped without explicit offsets.
	TimeZone string `yaml:"time_zone,omitempty"`

	// ArchiveRoot is the default archive root used when a municipality
	// doesn't specify one.
	ArchiveRoot string `yaml:"archive_root,omitempty"`

	// TranscriptMasking controls PII masking of raw transcript text before
	// it is sent to the refiner's LLM provider.
	TranscriptMasking *TranscriptMaskingDefaults `yaml:"transcript_masking,omitempty"`
}

// TranscriptMaskingDefaults holds transcript masking settings applied
// system-wide before any transcript segment leaves the process boundary
// toward an LLM provider.
type TranscriptMaskingDefaults struct {
	Enabled      bool   `yaml:"enabled"`
	PatternGroup string `yaml:"pattern_group"`
}

// DefaultPipelineConfig returns the built-in pipeline tunables used when a
// civicpipe.yaml doesn't override a given stage's settings.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Acquirer: AcquirerConfig{
			IncludeVideo:    false,
			FFmpegPath:      "ffmpeg",
			YTDLPPath:       "yt-dlp",
			DownloadTimeout: 30 * time.Minute,
		},
		Diarizer: DiarizerConfig{
			FingerprintMatchThreshold: 0.75,
			SpeakerSampleMaxDuration:  15 * time.Second,
			CacheDir:                  "./.cache/diarizer",
		},
		DocExtractor: DocExtractorConfig{
			MaxOverlapPages:    2,
			SectionMaxChars:    4000,
			RepeatingHeaderMin: 3,
		},
		BatchExtractor: BatchExtractorConfig{
			MaxWaveBytes:  150 * 1024 * 1024,
			PollInterval:  30 * time.Second,
			CheckpointDir: "./.cache/batch_extractor",
		},
		Refiner: RefinerConfig{
			Model:               "gpt-4o",
			RequestTimeout:      5 * time.Minute,
			MapReduceChunkChars: 60000,
		},
		Aligner: AlignerConfig{
			FallbackMinMatchChars: 15,
		},
		MatterMatcher: MatterMatcherConfig{
			AddressMatchConfidence: 0.9,
			TitleSimilarityMin:     0.6,
		},
		Ingest: IngestConfig{
			GeocoderRequestsPerSecond: 1.0,
			GeocoderAPIKeyEnv:         "GEOCODER_API_KEY",
		},
		Embedder: EmbedderConfig{
			Model:                   "text-embedding-3-small",
			Dimensions:              1536,
			APIBatchSize:            128,
			DBFlushSize:             500,
			ParallelUpdateThreshold: 200,
			WorkerCount:             3,
		},
		Profiler: ProfilerConfig{
			Model:            "gemini-2.5-flash",
			RequestTimeout:   60 * time.Second,
			RateLimitDelay:   1 * time.Second,
			MaxKeyStatements: 15,
			MaxVotes:         10,
		},
	}
}
