package main

import (
	"fmt"
	"os"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/pkg/acquirer"
	"github.com/viewroyal/civicpipe/pkg/batchextractor"
	"github.com/viewroyal/civicpipe/pkg/blobstore"
	"github.com/viewroyal/civicpipe/pkg/bylaw"
	"github.com/viewroyal/civicpipe/pkg/changedetector"
	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/database"
	"github.com/viewroyal/civicpipe/pkg/diarizer"
	"github.com/viewroyal/civicpipe/pkg/embedder"
	"github.com/viewroyal/civicpipe/pkg/geocode"
	"github.com/viewroyal/civicpipe/pkg/ingest"
	"github.com/viewroyal/civicpipe/pkg/llmclient"
	"github.com/viewroyal/civicpipe/pkg/masking"
	matterpkg "github.com/viewroyal/civicpipe/pkg/matter"
	"github.com/viewroyal/civicpipe/pkg/mediatools"
	"github.com/viewroyal/civicpipe/pkg/modelclients"
	"github.com/viewroyal/civicpipe/pkg/names"
	"github.com/viewroyal/civicpipe/pkg/notifier"
	"github.com/viewroyal/civicpipe/pkg/orchestrator"
	"github.com/viewroyal/civicpipe/pkg/profiler"
	"github.com/viewroyal/civicpipe/pkg/refiner"
	"github.com/viewroyal/civicpipe/pkg/scraper"
	"github.com/viewroyal/civicpipe/pkg/videocatalog"
)

// components bundles every capability adapter and pipeline stage built
// for one municipality's run, along with the extra pieces (batch
// scheduler, profiler, bylaw ingester) the CLI's other subcommands drive
// outside the Orchestrator's own Run/Update/Target phase sequence.
type components struct {
	orch           *orchestrator.Orchestrator
	db             *ent.Client
	embedder       *embedder.Embedder
	batchScheduler *batchextractor.Scheduler
	profiler       *profiler.Profiler
	bylaws         *bylaw.Ingester
	blobs          blobstore.Store
	pdfSlicer      *modelclients.DocumentAIClient
	municipalityID int
}

// buildComponents wires every capability adapter named in SPEC_FULL.md's
// DOMAIN STACK against cfg and muni, then assembles the stage structs and
// the Orchestrator that drives them. cmd/civicpipe never reaches for a
// concrete client inside pkg/orchestrator or its stage packages — every
// third-party dependency is constructed here, at the one seam the spec
// reserves for it.
func buildComponents(cfg *config.Config, muniCfg *config.MunicipalityConfig, muniRow *ent.Municipality, dbClient *database.Client) (*components, error) {
	llm, err := llmclient.NewClient(cfg.LLMClient.Endpoint, cfg.Pipeline.Refiner.Model)
	if err != nil {
		return nil, fmt.Errorf("connect llm client: %w", err)
	}

	ms := cfg.ModelServices
	speaker := modelclients.NewSpeakerClient(ms.SpeakerPipelineEndpoint, ms.Timeout)
	stt := modelclients.NewSTTClient(ms.SpeechToTextEndpoint, ms.Timeout)
	documentAI := modelclients.NewDocumentAIClient(ms.DocumentAIEndpoint, envOrEmpty(ms.DocumentAIAPIKeyEnv), ms.Timeout)
	batchAPI := modelclients.NewBatchAPIClient(ms.BatchAPIEndpoint, envOrEmpty(ms.BatchAPIKeyEnv), ms.Timeout)
	embedProvider := modelclients.NewEmbeddingClient(ms.EmbeddingEndpoint, envOrEmpty(ms.EmbeddingAPIKeyEnv), ms.EmbeddingModel, ms.Timeout)

	blobs, err := blobstore.New(cfg.BlobStore)
	if err != nil {
		return nil, fmt.Errorf("build blob store: %w", err)
	}

	mask := masking.NewService(masking.Config{
		Enabled:      cfg.Defaults.TranscriptMasking.Enabled,
		PatternGroup: cfg.Defaults.TranscriptMasking.PatternGroup,
	})
	canon := names.NewCanonicalizer(muniCfg.CanonicalNames, muniCfg.NameVariants)
	geocoder := geocode.New(cfg.Pipeline.Ingest.GeocoderRequestsPerSecond, muniCfg.Name+", BC, Canada", muniCfg.GeocodeContextKeywords)

	sc, err := scraper.New(muniCfg.Scraper)
	if err != nil {
		return nil, fmt.Errorf("build scraper: %w", err)
	}

	videoToken := envOrEmpty(muniCfg.VideoCatalog.APIKeyEnv)
	videos := videocatalog.New(muniCfg.VideoCatalog, videoToken)

	converter := mediatools.NewFFmpegConverter(cfg.Pipeline.Acquirer.FFmpegPath)
	downloader := mediatools.NewYTDLPDownloader(cfg.Pipeline.Acquirer.YTDLPPath, cfg.Pipeline.Acquirer.DownloadTimeout)

	acq := acquirer.New(muniCfg.ArchiveRoot, videos, downloader, converter, cfg.Pipeline.Acquirer)

	matterIdx := matterpkg.NewIndex()
	matcher := matterpkg.NewMatcher(matterIdx)

	ingester := ingest.New(dbClient.Client, muniRow.ID, matcher, geocoder, canon)
	store := ingest.NewStore(ingester)
	detector := changedetector.New(muniCfg.ArchiveRoot, store, videos)

	dia := diarizer.New(converter, speaker, stt, dbClient.DB(), cfg.Pipeline.Diarizer)
	ref := refiner.New(llm, mask, canon, cfg.Pipeline.Refiner)
	emb := embedder.New(embedProvider, dbClient.DB(), cfg.Pipeline.Embedder)

	notifySvc := notifier.NewService(notifier.Config{
		Enabled:    cfg.Notifier.Enabled,
		WebhookURL: cfg.Notifier.WebhookURL,
		Timeout:    cfg.Notifier.Timeout,
	})

	orch := orchestrator.New(orchestrator.Deps{
		ArchiveRoot:      muniCfg.ArchiveRoot,
		MunicipalityID:   muniRow.ID,
		MunicipalitySlug: muniCfg.Slug,
		DB:               dbClient.Client,
		Scraper:          sc,
		Acquirer:         acq,
		Detector:         detector,
		Diarizer:         dia,
		Refiner:          ref,
		Ingester:         ingester,
		Embedder:         emb,
		Notifier:         notifySvc,
		Matters:          matterIdx,
	})

	checkpointPath := cfg.Pipeline.BatchExtractor.CheckpointDir + "/" + muniCfg.Slug + ".json"
	batchSched := batchextractor.NewScheduler(batchAPI, documentAI, dbClient.Client, checkpointPath,
		cfg.Pipeline.BatchExtractor.MaxWaveBytes, cfg.Pipeline.BatchExtractor.PollInterval)

	prof := profiler.New(llm, dbClient.Client, cfg.Pipeline.Profiler)
	bylawIngester := bylaw.New(dbClient.Client, dbClient.DB(), blobs, embedProvider)

	return &components{
		orch:           orch,
		db:             dbClient.Client,
		embedder:       emb,
		batchScheduler: batchSched,
		profiler:       prof,
		bylaws:         bylawIngester,
		blobs:          blobs,
		pdfSlicer:      documentAI,
		municipalityID: muniRow.ID,
	}, nil
}

func envOrEmpty(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
