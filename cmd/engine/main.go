package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"homehunt-engine/internal/catalog"
	"homehunt-engine/internal/collect"
	"homehunt-engine/internal/config"
	"homehunt-engine/internal/lake"
	"homehunt-engine/internal/query"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "collect":
		runCollect(os.Args[2:])
	case "query":
		runQuery(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: engine <collect|query> [flags]

  collect   fetch all enabled sources and store raw + processed snapshots
  query     search the latest processed snapshot of a source`)
}

func loadConfig(dataDir string) config.Config {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}
	cfgPath, err := config.Ensure(dataDir)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", cfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("config: %s", w)
	}
	if !v.OK() {
		for _, e := range v.Errors {
			log.Printf("config: %s", e)
		}
		log.Fatalf("invalid config: %s", cfgPath)
	}
	return cfg
}

func runCollect(args []string) {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	dataDir := fs.String("data-dir", envOr("HOMEHUNT_DATA_DIR", "."), "directory holding config.yml and the lake")
	_ = fs.Parse(args)

	cfg := loadConfig(*dataDir)

	lk, err := lake.New(cfg.Lake.Dir)
	if err != nil {
		log.Fatal(err)
	}

	// One collection run at a time; overlapping cron invocations would race
	// on the same HHMMSS file names.
	lock := flock.New(filepath.Join(cfg.Lake.Dir, ".engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("run lock: %v", err)
	}
	if !locked {
		log.Fatal("another collection run holds the lock; exiting")
	}
	defer lock.Unlock()

	var cat *catalog.DB
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Open(cfg.Catalog.Path)
		if err != nil {
			log.Printf("catalog unavailable, continuing without: %v", err)
			cat = nil
		} else {
			defer cat.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("starting data collection...")
	results := collect.New(cfg, lk, cat).CollectAll(ctx)

	failures := 0
	for source, out := range results {
		if out.Err != nil {
			failures++
			log.Printf("[%s] failed: %v", source, out.Err)
			continue
		}
		log.Printf("[%s] stored at: %s", source, out.ProcessedPath)
	}
	if failures == len(results) && failures > 0 {
		os.Exit(1)
	}
}

func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	dataDir := fs.String("data-dir", envOr("HOMEHUNT_DATA_DIR", "."), "directory holding config.yml and the lake")
	source := fs.String("source", "", "data source to query")
	listSources := fs.Bool("list-sources", false, "list available data sources")
	address := fs.String("address", "", "pattern to match in address")
	priceMin := fs.Float64("price-min", 0, "minimum price")
	priceMax := fs.Float64("price-max", 0, "maximum price")
	bedrooms := fs.String("bedrooms", "", "pattern to match number of bedrooms")
	propertyType := fs.String("property-type", "", "pattern to match property type")
	berRating := fs.String("ber-rating", "", "pattern to match BER rating")
	debug := fs.Bool("debug", false, "dump matching records as raw JSON")
	_ = fs.Parse(args)

	cfg := loadConfig(*dataDir)
	lk, err := lake.New(cfg.Lake.Dir)
	if err != nil {
		log.Fatal(err)
	}

	if *listSources {
		sources, err := lk.Sources()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("Available sources:")
		for _, s := range sources {
			fmt.Printf("- %s\n", s)
		}
		return
	}

	if *source == "" {
		log.Fatal("-source is required for the query action")
	}

	rows, path, err := query.Latest(lk, *source)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d rows from %s", len(rows), path)

	rows, err = query.Search(rows, query.Filters{
		Address:      *address,
		Bedrooms:     *bedrooms,
		PropertyType: *propertyType,
		BERRating:    *berRating,
		MinPrice:     *priceMin,
		MaxPrice:     *priceMax,
	})
	if err != nil {
		log.Fatal(err)
	}

	printResults(*source, rows, *debug)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
