package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"be04/models"
	"be04/pkg/recognize"
	"be04/pkg/scale"
)

// Batch processor for scale photos dropped into a directory by the stores'
// capture devices. Scans existing files, optionally watches for new ones,
// runs the recognition chain and records WeightReading rows keyed by file
// name so re-runs are idempotent.

var verbose bool

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func main() {
	dirFlag := flag.String("dir", "public/scale", "directory to scan for scale photos")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	dryRun := flag.Bool("dry-run", false, "run recognition but skip all DB writes")
	noRemote := flag.Bool("no-remote", false, "skip the remote OCR service (offline batch runs)")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	var db *gorm.DB
	if !*dryRun {
		db = mustInitDBFromEnv()
	}

	chain := buildChain(*noRemote)

	nw := *workers
	if nw <= 0 {
		nw = runtime.NumCPU()
	}

	files := listImageFiles(*dirFlag)
	log.Printf("found %d candidate files in %s", len(files), *dirFlag)

	jobs := make(chan string, nw*2)
	var wg sync.WaitGroup
	for i := 0; i < nw; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				processFile(db, chain, *dirFlag, name, *dryRun)
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}

	if *watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Fatalf("watcher: %v", err)
		}
		defer watcher.Close()
		if err := watcher.Add(*dirFlag); err != nil {
			log.Fatalf("watch %s: %v", *dirFlag, err)
		}
		log.Printf("watching %s for new scale photos", *dirFlag)
		go func() {
			// Give newly created files a moment to finish writing before OCR.
			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return
					}
					if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
						continue
					}
					name := filepath.Base(ev.Name)
					if !imageExts[strings.ToLower(filepath.Ext(name))] {
						continue
					}
					time.Sleep(500 * time.Millisecond)
					jobs <- name
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Printf("watcher error: %v", err)
				}
			}
		}()
		select {} // run until interrupted
	}

	close(jobs)
	wg.Wait()
}

// buildChain assembles the recognition chain for batch use. Offline runs
// drop the remote stage; the simulated stage is never included here since a
// fabricated reading has no business in the database.
func buildChain(noRemote bool) *recognize.Orchestrator {
	strategies := []recognize.Strategy{}
	if !noRemote {
		strategies = append(strategies,
			recognize.NewTextStrategy(recognize.NewOCRSpaceClient(), scale.SourceRemote, 15*time.Second, true))
	}
	strategies = append(strategies,
		recognize.NewTextStrategy(recognize.NewTesseractRecognizer(), scale.SourceSecondary, 0, false),
		recognize.NewAnalysisStrategy(recognize.NewHeuristicAnalyzer(nil)),
	)
	return recognize.NewChain(strategies...)
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("read dir %s: %v", dir, err)
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, e.Name())
		}
	}
	return out
}

func processFile(db *gorm.DB, chain *recognize.Orchestrator, dir, name string, dryRun bool) {
	full := filepath.Join(dir, name)
	if db != nil {
		var existing models.WeightReading
		if err := db.Where("image_uri = ?", full).First(&existing).Error; err == nil {
			if verbose {
				log.Printf("skip %s: already recorded (id=%d)", name, existing.ID)
			}
			return
		}
	}
	res := chain.ScanImage(context.Background(), full)
	est := res.Estimate
	if !est.Found() {
		log.Printf("%s: no plausible weight (source=%s), manual review required", name, est.Source)
		return
	}
	if verbose || dryRun {
		log.Printf("%s: %.3f kg source=%s confidence=%d", name, *est.ValueKg, est.Source, est.Confidence)
	}
	if dryRun || db == nil {
		return
	}
	reading := models.WeightReading{
		WeightKg:   *est.ValueKg,
		ImageURI:   full,
		RawText:    est.RawText,
		Source:     est.Source,
		Confidence: est.Confidence,
		Timestamp:  time.Now(),
	}
	if err := db.Create(&reading).Error; err != nil {
		log.Printf("%s: db create failed: %v", name, err)
	}
}
