package config

// Config is the umbrella configuration object that encapsulates the
// municipality registry, pipeline tunables, and ambient service settings.
// This is the primary object returned by Initialize() and used throughout
// the application.
type Config struct {
	configDir string // Configuration directory path (for reference)

	// System-wide defaults
	Defaults *Defaults

	// MunicipalityRegistry holds every onboarded municipality, keyed by slug.
	MunicipalityRegistry *MunicipalityRegistry

	// Pipeline holds the tunables for every processing stage.
	Pipeline PipelineConfig

	// LLMClient points the refiner and stance profiler at the structured-extraction
	// gRPC service.
	LLMClient LLMClientConfig

	// Notifier controls the end-of-meeting webhook push.
	Notifier NotifierConfig

	// BlobStore selects the backend for document/image blob storage.
	BlobStore BlobStoreConfig

	// ModelServices points the diarizer, document extractor, batch
	// extractor, and embedder at their model-serving sidecars.
	ModelServices ModelServicesConfig
}

// Initialize is defined in loader.go

// ConfigStats contains statistics about loaded configuration.
type ConfigStats struct {
	Municipalities int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		Municipalities: len(c.MunicipalityRegistry.GetAll()),
	}
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetMunicipality retrieves a municipality configuration by slug.
// This is a convenience method that wraps MunicipalityRegistry.Get().
func (c *Config) GetMunicipality(slug string) (*MunicipalityConfig, error) {
	return c.MunicipalityRegistry.Get(slug)
}
