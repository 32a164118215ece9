package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"allopatry/internal/model"
	"allopatry/internal/notify"
	"allopatry/internal/storage"
	"allopatry/pkg/allopatry"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "trace":
		return runTrace(ctx, args[1:])
	case "distances":
		return runDistances(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func addStoreFlags(fs *flag.FlagSet) (storeKind, dbPath, pgDSN *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite|postgres")
	dbPath = fs.String("db-path", "allopatry.db", "sqlite database path")
	pgDSN = fs.String("pg-dsn", "", "postgres DSN (store=postgres)")
	return storeKind, dbPath, pgDSN
}

func newClient(storeKind, dbPath, pgDSN string, logger *Logger) (*allopatry.Client, error) {
	return allopatry.New(allopatry.Options{
		StoreKind:   storeKind,
		DBPath:      dbPath,
		PostgresDSN: pgDSN,
		Logger:      logger,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath, pgDSN := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *pgDSN, NewLogger("info"))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	popSize := fs.Int("pop", 100, "population size")
	seqLen := fs.Int("seq-len", 60, "genome length in sites")
	mutationRate := fs.Float64("mu", 0.001, "per-site mutation probability")
	splitGen := fs.Int("split-gen", 50, "generation after which the population splits")
	generations := fs.Int("gens", 100, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	snapshots := fs.Bool("snapshots", false, "store every generation's genomes in the trace")
	showAll := fs.Bool("all", false, "print every final genome instead of a summary")
	webhookURL := fs.String("webhook", "", "POST per-generation events to this URL")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	storeKind, dbPath, pgDSN := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	overrideFromFlags(&req, set, map[string]any{
		"run-id":    *runID,
		"pop":       *popSize,
		"seq-len":   *seqLen,
		"mu":        *mutationRate,
		"split-gen": *splitGen,
		"gens":      *generations,
		"seed":      *seed,
		"workers":   *workers,
		"snapshots": *snapshots,
	})
	if *configPath == "" {
		applyRunDefaults(&req, *popSize, *seqLen, *mutationRate, *splitGen, *generations, *seed, *workers, *snapshots)
	}

	logger := NewLogger(*logLevel)
	client, err := newClient(*storeKind, *dbPath, *pgDSN, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var manager *notify.Manager
	if *webhookURL != "" {
		manager = notify.NewManagerWithLogf(logger.Warnf)
		if err := manager.Register(notify.NewWebhookNotifier("cli-webhook", *webhookURL)); err != nil {
			return err
		}
		defer func() {
			_ = manager.Close()
		}()
		id := req.RunID
		req.OnGeneration = func(record model.GenerationRecord) {
			manager.Publish(notify.FromRecord(id, record))
		}
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	printRunSummary(summary, *showAll)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind, dbPath, pgDSN := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *pgDSN, NewLogger("warn"))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, item := range items {
		fmt.Printf("run_id=%s created_at=%s seed=%d pop=%d seq_len=%d mu=%g split_gen=%d gens=%d split=%t\n",
			item.RunID,
			item.CreatedAtUTC,
			item.Seed,
			item.Params.PopulationSize,
			item.Params.SequenceLength,
			item.Params.MutationRate,
			item.Params.SplitGeneration,
			item.Params.TotalGenerations,
			item.SplitOccurred,
		)
	}
	return nil
}

func runTrace(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit trace as JSON")
	storeKind, dbPath, pgDSN := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("trace requires -run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *pgDSN, NewLogger("warn"))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Trace(ctx, *runID)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, record := range records {
		for _, pop := range record.Populations {
			fmt.Printf("gen=%d population=%s size=%d mean_distance=%.4f distinct=%d segregating=%d\n",
				record.Generation,
				pop.Label,
				pop.Size,
				pop.MeanDistance,
				pop.DistinctGenomes,
				pop.SegregatingSites,
			)
		}
	}
	return nil
}

func runDistances(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("distances", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit distance series as JSON")
	storeKind, dbPath, pgDSN := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("distances requires -run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *pgDSN, NewLogger("warn"))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	series, err := client.Distances(ctx, *runID)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(series)
	}

	for _, s := range series {
		fmt.Printf("population=%s final=%.4f max=%.4f mean=%.4f\n",
			s.Label, s.Final(), s.Max(), s.Mean())
	}
	return nil
}

func printRunSummary(summary allopatry.RunSummary, showAll bool) {
	fmt.Printf("run_id=%s seed=%d split=%t\n", summary.RunID, summary.Seed, summary.SplitOccurred)
	fmt.Println()
	fmt.Println("Generation | Population   | Avg Genetic Distance")
	fmt.Println("-----------+--------------+---------------------")
	for _, sample := range summary.DistanceHistory {
		fmt.Printf("%10d | %-12s | %20.4f\n", sample.Generation, sample.Population, sample.Mean)
	}
	fmt.Println()
	for _, pop := range summary.FinalPopulations {
		fmt.Printf("final population=%s size=%d mean_distance=%.4f distinct=%d segregating=%d\n",
			pop.Label, pop.Size, pop.MeanDistance, pop.DistinctGenomes, pop.SegregatingSites)
		if showAll {
			for i, g := range pop.Genomes {
				fmt.Printf("  [%d] %s\n", i, g)
			}
		}
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: allopatryctl <init|run|runs|trace|distances|serve> [flags]", msg)
}
