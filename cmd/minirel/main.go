package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"minirel/internal/bufferpool"
	"minirel/internal/config"
	"minirel/internal/record"
	"minirel/internal/table"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	workDir := flag.String("data-dir", "./data", "Working directory for table files")
	flag.Parse()

	strategy := bufferpool.StrategyLRU
	poolFrames := bufferpool.DefaultCapacity
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		*workDir = cfg.Storage.Workdir
		poolFrames = cfg.Storage.PoolFrames
		strategy, err = cfg.ReplacementStrategy()
		if err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
	}

	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <table>\n", os.Args[0])
		os.Exit(2)
	}
	name := filepath.Join(*workDir, flag.Arg(0))

	tbl, err := table.OpenWith(name, poolFrames, strategy)
	if err != nil {
		log.Fatalf("Failed to open table: %v", err)
	}
	defer func() {
		if err := tbl.Close(); err != nil {
			log.Printf("Failed to close table: %v", err)
		}
	}()

	fmt.Printf("table %s (strategy %s)\n", flag.Arg(0), strategy)
	fmt.Printf("  tuples: %d\n", tbl.NumTuples())
	fmt.Printf("  pages:  %d\n", tbl.Pool().File().TotalPages())
	fmt.Println("  schema:")
	for i, a := range tbl.Schema.Attrs {
		key := ""
		for _, k := range tbl.Schema.Keys {
			if k == i {
				key = " (key)"
			}
		}
		fmt.Printf("    %-12s %s[%d]%s\n", a.Name, a.Type, a.Type.Width(a.Length), key)
	}

	scan := tbl.NewScan(nil)
	defer scan.Close()

	rec := record.New(tbl.Schema)
	for {
		if err := scan.Next(rec); err != nil {
			if err == table.ErrScanExhausted {
				break
			}
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("  %s:", rec.ID)
		for i := range tbl.Schema.Attrs {
			v, err := rec.GetAttr(tbl.Schema, i)
			if err != nil {
				log.Fatalf("Failed to decode attribute: %v", err)
			}
			fmt.Printf(" %s", v)
		}
		fmt.Println()
	}

	fmt.Printf("  io: %d reads, %d writes\n",
		tbl.Pool().ReadIOCount(), tbl.Pool().WriteIOCount())
}
