package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocloud.dev/blob/fileblob"

	"github.com/kirisamevanilla/chartdl/internal/catalog"
	"github.com/kirisamevanilla/chartdl/internal/config"
	"github.com/kirisamevanilla/chartdl/internal/download"
	"github.com/kirisamevanilla/chartdl/internal/manifest"
)

func main() {
	// Command line flags
	var (
		configFlag   = flag.String("config", "", "Path to config file")
		catalogFlag  = flag.String("catalog", "", "Catalog URL (overrides config)")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		workersFlag  = flag.Int("workers", 0, "Number of parallel song workers (overrides config)")
		verifyFlag   = flag.Bool("verify", false, "Reject payloads that do not decode as images")
		manifestFlag = flag.Bool("manifest", false, "Generate previews.json after downloading")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *catalogFlag != "" {
		settings.CatalogURL = *catalogFlag
	}
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *workersFlag > 0 {
		settings.Workers = *workersFlag
	}
	if *verifyFlag {
		settings.VerifyImages = true
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	// Fetch catalog; without it there is nothing to do.
	fmt.Printf("Fetching song catalog from %s...\n", settings.CatalogURL)
	client := catalog.NewClient(secsToDuration(settings.RequestTimeout), settings.UserAgent)
	songs, err := client.FetchSongs(ctx, settings.CatalogURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Found %d songs\n\n", len(songs))

	// Open the destination tree
	bucket, err := fileblob.OpenBucket(settings.OutputDir, &fileblob.Options{
		CreateDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output directory: %v\n", err)
		os.Exit(1)
	}
	defer bucket.Close()

	// Run downloads with a progress printer
	manager := download.NewManager(settings, bucket, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}
		fmt.Println(event.Message)
	})

	if err := manager.Run(ctx, songs); err != nil {
		fmt.Fprintf(os.Stderr, "Run aborted: %v\n", err)
	}

	printSummary(manager.Reporter().Snapshot())

	// Optional manifest generation over the freshly written tree
	if *manifestFlag {
		previews, warnings, err := manifest.Generate(ctx, bucket, settings.ManifestBaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating manifest: %v\n", err)
			os.Exit(1)
		}
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
		if err := previews.Write(settings.ManifestPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %s (%d songs, %d images)\n",
			settings.ManifestPath, len(previews), previews.TotalImages())
	}
}

func printSummary(summary download.Summary) {
	fmt.Println()
	fmt.Println("Download complete!")
	fmt.Printf("  Downloaded:    %d images (%.2f MB)\n",
		summary.Downloaded, float64(summary.BytesWritten)/1024/1024)
	fmt.Printf("  Skipped:       %d images (identical content)\n", summary.SkippedImages)
	fmt.Printf("  Failed:        %d images\n", summary.FailedImages)
	fmt.Printf("  Skipped songs: %d\n", summary.SkippedSongs)

	if len(summary.Failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range summary.Failures {
			fmt.Printf("  song %s: %s (%s)\n", f.SongNo, f.URL, f.Reason)
		}
	}
}

func secsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
