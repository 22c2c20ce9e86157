package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jobradar/internal/ai"
	"jobradar/internal/collect"
	"jobradar/internal/config"
	"jobradar/internal/database"
	"jobradar/internal/decide"
	"jobradar/internal/feedback"
	"jobradar/internal/fetch"
	"jobradar/internal/keywords"
	"jobradar/internal/model"
	"jobradar/internal/pipeline"
	"jobradar/internal/report"
	"jobradar/internal/server"
)

var version = "dev"

// trainingSampleLimit caps how many recent relevant articles feed training.
const trainingSampleLimit = 100

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "jobradar",
	Short:   "Jobs and economic development news radar",
	Long:    "jobradar collects local news, filters it for jobs/economic development relevance through feedback, a trained model, keywords, and an optional AI judge, and serves a review UI for corrections.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(keywordsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("jobradar", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/jobradar/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds and the AI provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		lastRun, _ := db.GetLastRunDate()

		fmt.Println("Articles:")
		fmt.Printf("  Total: %d\n", stats.TotalArticles)
		fmt.Printf("  Relevant: %d\n", stats.RelevantArticles)
		fmt.Println("\nFeedback:")
		fmt.Printf("  Included URLs: %d\n", stats.IncludedURLs)
		fmt.Printf("  Excluded URLs: %d\n", stats.ExcludedURLs)
		fmt.Printf("  Keywords added: %d, removed: %d\n", stats.AddedKeywords, stats.RemovedKeywords)
		fmt.Println("\nModel:")
		if stats.ModelSampleSize > 0 {
			fmt.Printf("  Trained on %d articles (%s)\n", stats.ModelSampleSize, stats.ModelTrainedAt)
		} else {
			fmt.Println("  Not trained yet")
		}
		fmt.Println("\nRuns:")
		fmt.Printf("  Reports: %d\n", stats.RunReports)
		if lastRun != "" {
			fmt.Printf("  Last run: %s\n", lastRun)
		}
		return nil
	},
}

// --- run command ---

var (
	dryRun     bool
	runLimit   int
	runMinDate string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, classify, and store articles from all configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fb := feedback.NewStore(db).Load()
		trained := loadModel(db)
		judge := buildJudge()

		var aiJudge decide.AIJudge
		var enricher pipeline.Enricher
		if judge != nil {
			aiJudge = judge
			enricher = judge
		}
		decider := decide.New(fb, trained, aiJudge)

		limit := cfg.Scrape.MaxArticlesPerSite
		if runLimit > 0 {
			limit = runLimit
		}
		minDate := cfg.Scrape.MinArticleDate
		if runMinDate != "" {
			minDate = runMinDate
		}
		delayMin, delayMax := cfg.DelayBounds()

		fmt.Println("Collecting candidates from feeds...")
		collector := collect.NewCollector(feedConfigs())
		candidates := collector.CollectAll(cfg.Scrape.DaysBack)
		fmt.Printf("Found %d candidates.\n", len(candidates))

		pipe := pipeline.New(db, fetch.NewContentFetcher(cfg.FetchTimeout()), decider, enricher, pipeline.Options{
			Limit:         limit,
			MinDate:       minDate,
			DryRun:        dryRun,
			DelayMin:      delayMin,
			DelayMax:      delayMax,
			EnableSummary: cfg.AI.EnableSummary,
			EnableGrammar: cfg.AI.EnableGrammarCorrection,
		})

		result, err := pipe.Run(context.Background(), candidates)
		if err != nil {
			return err
		}

		fmt.Println("\nRun complete:")
		fmt.Printf("  Considered: %d\n", result.Considered)
		fmt.Printf("  Kept: %d\n", result.Kept)
		fmt.Printf("  Ignored: %d\n", result.Ignored)
		fmt.Printf("  Duplicates: %d\n", result.Duplicates)
		fmt.Printf("  Fetch failures: %d\n", result.FetchFailures)
		fmt.Printf("  Skipped: %d\n", result.Skipped)

		if dryRun {
			fmt.Println("\nDry run: nothing was stored.")
			return nil
		}

		reportID, err := report.Save(db, result.Report)
		if err != nil {
			return fmt.Errorf("saving run report: %w", err)
		}
		fmt.Printf("\nRun report #%d saved. View it with 'jobradar serve'.\n", reportID)

		// Retrain on the enlarged corpus so the next run benefits.
		if err := trainModel(db); err != nil {
			log.Printf("Retraining after run failed: %v", err)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Decide but store nothing")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Override max fetch attempts per site")
	runCmd.Flags().StringVar(&runMinDate, "min-date", "", "Skip articles published before this date (YYYY-MM-DD)")
}

// --- train command ---

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Rebuild the relevance model from stored relevant articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return trainModel(db)
	},
}

func trainModel(db *database.DB) error {
	articles, err := db.SampleRecentRelevant(trainingSampleLimit)
	if err != nil {
		return fmt.Errorf("loading training sample: %w", err)
	}

	samples := make([]model.Sample, len(articles))
	for i, a := range articles {
		samples[i] = model.Sample{Title: a.Title}
		if a.Content != nil {
			samples[i].Content = *a.Content
		}
	}

	trained := model.Train(samples)
	if trained == nil {
		fmt.Printf("Not enough training data: %d relevant articles, need %d.\n",
			len(samples), model.MinSampleSize)
		return nil
	}

	payload, err := json.Marshal(trained)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := db.SaveModelArtifact(string(payload), trained.SampleSize); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}

	fmt.Printf("Model trained on %d articles (%d title tokens).\n",
		trained.SampleSize, len(trained.TopTitleTokens))
	return nil
}

// loadModel returns the stored model, or nil when none is trained yet or the
// artifact cannot be decoded. A broken artifact only costs the model signal.
func loadModel(db *database.DB) *model.Model {
	artifact, err := db.LoadModelArtifact()
	if err != nil || artifact == nil {
		if err != nil {
			log.Printf("Loading model artifact failed, continuing without: %v", err)
		}
		return nil
	}

	var m model.Model
	if err := json.Unmarshal([]byte(artifact.Payload), &m); err != nil {
		log.Printf("Decoding model artifact failed, continuing without: %v", err)
		return nil
	}
	return &m
}

func buildJudge() *ai.Judge {
	if !cfg.AI.Enabled {
		return nil
	}
	provider := ai.CreateProvider(cfg.AI.Provider, cfg.AI.Model, cfg.AI.OllamaURL, cfg.AI.OpenAIModel, cfg.AI.APIKeyEnv)
	judge := ai.NewJudge(provider)
	if judge == nil {
		log.Println("AI enabled but no provider configured, continuing without judge")
	}
	return judge
}

func feedConfigs() []collect.FeedConfig {
	feeds := make([]collect.FeedConfig, len(cfg.Sources.Feeds))
	for i, f := range cfg.Sources.Feeds {
		feeds[i] = collect.FeedConfig{URL: f.URL, Name: f.Name}
	}
	return feeds
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local review UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- feedback command ---

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record explicit relevance verdicts for URLs",
}

var feedbackIncludeCmd = &cobra.Command{
	Use:   "include [url]",
	Short: "Mark a URL as relevant, overriding all automated signals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyURLVerdict(args[0], "include")
	},
}

var feedbackExcludeCmd = &cobra.Command{
	Use:   "exclude [url]",
	Short: "Mark a URL as irrelevant, overriding all automated signals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyURLVerdict(args[0], "exclude")
	},
}

var feedbackClearCmd = &cobra.Command{
	Use:   "clear [url]",
	Short: "Remove any verdict for a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyURLVerdict(args[0], "clear")
	},
}

func applyURLVerdict(url, action string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	store := feedback.NewStore(db)
	switch action {
	case "include":
		err = store.Include(url)
	case "exclude":
		err = store.Exclude(url)
	case "clear":
		err = store.ClearURL(url)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Feedback recorded: %s %s\n", action, url)
	return nil
}

func init() {
	feedbackCmd.AddCommand(feedbackIncludeCmd)
	feedbackCmd.AddCommand(feedbackExcludeCmd)
	feedbackCmd.AddCommand(feedbackClearCmd)
}

// --- keywords command ---

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Manage relevance keywords",
}

var keywordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the effective keyword set and feedback adjustments",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fb := feedback.NewStore(db).Load()
		scorer := keywords.NewScorer(fb.AddedKeywords, fb.RemovedKeywords)

		if len(fb.AddedKeywords) > 0 {
			fmt.Println("Added via feedback:")
			for _, kw := range fb.AddedKeywords {
				fmt.Printf("  + %s\n", kw)
			}
		}
		if len(fb.RemovedKeywords) > 0 {
			fmt.Println("Removed via feedback:")
			for _, kw := range fb.RemovedKeywords {
				fmt.Printf("  - %s\n", kw)
			}
		}

		effective := scorer.EffectiveKeywords()
		fmt.Printf("Effective keywords (%d):\n", len(effective))
		for _, kw := range effective {
			fmt.Printf("  %s\n", kw)
		}
		return nil
	},
}

var keywordsAddCmd = &cobra.Command{
	Use:   "add [keyword]",
	Short: "Add a keyword to relevance detection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyKeywordAction(args[0], "add")
	},
}

var keywordsRemoveCmd = &cobra.Command{
	Use:   "remove [keyword]",
	Short: "Remove a keyword from relevance detection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyKeywordAction(args[0], "remove")
	},
}

func applyKeywordAction(keyword, action string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	store := feedback.NewStore(db)
	done := "added"
	if action == "add" {
		err = store.AddKeyword(keyword)
	} else {
		err = store.RemoveKeyword(keyword)
		done = "removed"
	}
	if err != nil {
		return err
	}
	fmt.Printf("Keyword %s: %s\n", done, keyword)
	return nil
}

func init() {
	keywordsCmd.AddCommand(keywordsListCmd)
	keywordsCmd.AddCommand(keywordsAddCmd)
	keywordsCmd.AddCommand(keywordsRemoveCmd)
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "jobradar.db")
	return database.Open(dbPath)
}
