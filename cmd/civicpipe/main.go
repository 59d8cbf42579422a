// Command civicpipe ingests municipal council meeting archives into a
// searchable relational store: scraping agendas/minutes, diarizing and
// transcribing recordings, extracting agenda-package PDFs, and refining
// everything into structured rows ready for semantic search and stance
// profiling.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/viewroyal/civicpipe/pkg/config"
	"github.com/viewroyal/civicpipe/pkg/database"
	"github.com/viewroyal/civicpipe/pkg/embedder"
	"github.com/viewroyal/civicpipe/pkg/obs"
	"github.com/viewroyal/civicpipe/pkg/orchestrator"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	municipalitySlug := flag.String("municipality", getEnv("MUNICIPALITY", ""), "Municipality slug to operate on")
	limit := flag.Int("limit", 0, "run: cap the number of meeting folders processed")
	includeVideo := flag.Bool("include-video", false, "run: also download the muxed Video/ copy")
	downloadAudio := flag.Bool("download-audio", false, "run: force audio re-download even if present")
	skipDocs := flag.Bool("skip-docs", false, "run: skip the scrape phase")
	skipDiarization := flag.Bool("skip-diarization", false, "run: skip diarization/transcription")
	skipIngest := flag.Bool("skip-ingest", false, "run: skip the refine+ingest phase")
	skipEmbed := flag.Bool("skip-embed", false, "run/update: skip the embed phase")
	rediarize := flag.Bool("rediarize", false, "run: force re-diarization even if a transcript exists")
	update := flag.Bool("update", false, "target: force re-ingest of the targeted meeting")
	table := flag.String("table", "all", "embed: table to (re)generate embeddings for")
	force := flag.Bool("force", false, "embed/batch-extract: ignore cached/existing state")
	minWords := flag.Int("min-words", -1, "embed: skip rows whose source text is shorter than this many words")
	personID := flag.Int("person-id", 0, "profile-stances: limit to a single person")
	flag.Parse()

	slog.SetDefault(slog.New(obs.NewMarkerHandler(os.Stdout, slog.LevelInfo)))

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	args := flag.Args()
	if len(args) == 0 {
		log.Fatalf("usage: civicpipe [flags] <run|update|target|embed|batch-extract|profile-stances|bylaws> [target]")
	}
	command := args[0]

	httpPort := getEnv("HTTP_PORT", "8080")
	ginMode := getEnv("GIN_MODE", "release")
	gin.SetMode(ginMode)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}
	stats := cfg.Stats()

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}
	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("Error closing database client: %v", err)
		}
	}()
	log.Println("Connected to PostgreSQL database")

	if *municipalitySlug == "" {
		log.Fatalf("--municipality (or MUNICIPALITY env var) is required")
	}
	muniCfg, err := cfg.GetMunicipality(*municipalitySlug)
	if err != nil {
		log.Fatalf("Unknown municipality %q: %v", *municipalitySlug, err)
	}

	muniRow, err := resolveMunicipality(ctx, dbClient.Client, muniCfg)
	if err != nil {
		log.Fatalf("Failed to resolve municipality %q: %v", *municipalitySlug, err)
	}

	comps, err := buildComponents(cfg, muniCfg, muniRow, dbClient)
	if err != nil {
		log.Fatalf("Failed to wire pipeline components: %v", err)
	}
	if err := comps.orch.SeedMatterIndex(ctx); err != nil {
		log.Fatalf("Failed to seed matter index: %v", err)
	}

	serveHealth(httpPort, stats, dbClient)

	if err := dispatch(ctx, comps, muniCfg, command, args[1:], dispatchFlags{
		limit:           *limit,
		includeVideo:    *includeVideo,
		downloadAudio:   *downloadAudio,
		skipDocs:        *skipDocs,
		skipDiarization: *skipDiarization,
		skipIngest:      *skipIngest,
		skipEmbed:       *skipEmbed,
		rediarize:       *rediarize,
		update:          *update,
		table:           *table,
		force:           *force,
		minWords:        *minWords,
		personID:        *personID,
	}); err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

// dispatchFlags carries every subcommand flag's parsed value across the
// dispatch switch, so flag.Parse() stays a single call in main.
type dispatchFlags struct {
	limit                                                  int
	includeVideo, downloadAudio, skipDocs, skipDiarization bool
	skipIngest, skipEmbed, rediarize, update               bool
	table                                                  string
	force                                                  bool
	minWords, personID                                     int
}

func dispatch(ctx context.Context, c *components, muniCfg *config.MunicipalityConfig, command string, rest []string, f dispatchFlags) error {
	switch command {
	case "run":
		report, err := c.orch.Run(ctx, orchestrator.RunOptions{
			Limit:           f.limit,
			IncludeVideo:    f.includeVideo,
			DownloadAudio:   f.downloadAudio,
			SkipDocs:        f.skipDocs,
			SkipDiarization: f.skipDiarization,
			SkipIngest:      f.skipIngest,
			SkipEmbed:       f.skipEmbed,
			Rediarize:       f.rediarize,
		})
		logReport(report, err)
		return err

	case "update":
		report, err := c.orch.Update(ctx)
		logReport(report, err)
		return err

	case "target":
		if len(rest) == 0 {
			return fmt.Errorf("target requires a <PATH|ID> argument")
		}
		report, err := c.orch.Target(ctx, rest[0], f.update)
		logReport(report, err)
		return err

	case "embed":
		tables := []string{f.table}
		if f.table == "" || f.table == "all" {
			tables = make([]string, 0, len(embedder.Registry))
			for t := range embedder.Registry {
				tables = append(tables, t)
			}
			sort.Strings(tables)
		}
		for _, t := range tables {
			stats, err := c.embedder.EmbedTable(ctx, t, f.force, f.minWords)
			if err != nil {
				return fmt.Errorf("embed %s: %w", t, err)
			}
			slog.Info("embed table complete", "table", t, "processed", stats.Processed, "skipped", stats.Skipped)
		}
		return nil

	case "batch-extract":
		return runBatchExtract(ctx, c, muniCfg.ArchiveRoot, f.force)

	case "profile-stances":
		var id *int
		if f.personID > 0 {
			id = &f.personID
		}
		stats, err := c.profiler.GenerateAllStances(ctx, id)
		if err != nil {
			return err
		}
		slog.Info("profile-stances complete", "generated", stats.Generated, "skipped", stats.Skipped)
		return nil

	case "bylaws":
		stats, err := c.bylaws.IngestDirectory(ctx, c.municipalityID, muniCfg.ArchiveRoot, f.force)
		if err != nil {
			return err
		}
		slog.Info("bylaw ingest complete", "ingested", stats.Ingested, "skipped", stats.Skipped)
		linkStats, err := c.bylaws.LinkMattersToBylaws(ctx, c.municipalityID)
		if err != nil {
			return err
		}
		slog.Info("bylaw link complete", "linked", linkStats.Linked)
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func logReport(report orchestrator.Report, err error) {
	if err != nil {
		return
	}
	slog.Info("run complete", "succeeded", len(report.Succeeded()), "failed", len(report.Failed()))
	for _, outcome := range report.Failed() {
		slog.Error("meeting failed", "outcome", outcome.String())
	}
	if report.EmbedErr != nil {
		slog.Error("embed phase reported an error", "error", report.EmbedErr)
	}
}

// serveHealth starts the gin health/status server in the background so a
// long-running run/update/batch-extract invocation stays observable
// without blocking the CLI command itself.
func serveHealth(httpPort string, stats config.ConfigStats, dbClient *database.Client) {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		dbHealth, err := database.Health(reqCtx, dbClient.DB())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": dbHealth, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": dbHealth})
	})

	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"municipalities": stats.Municipalities})
	})

	router.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, "civicpipe_municipalities %d\n", stats.Municipalities)
	})

	go func() {
		log.Printf("HTTP server listening on :%s", httpPort)
		if err := router.Run(":" + httpPort); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()
}
