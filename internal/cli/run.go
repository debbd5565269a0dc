package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/medlens/internal/cache"
	"github.com/ppiankov/medlens/internal/conversation"
	"github.com/ppiankov/medlens/internal/llm"
	"github.com/ppiankov/medlens/internal/model"
	"github.com/ppiankov/medlens/internal/pipeline"
	"github.com/ppiankov/medlens/internal/research"
	"github.com/ppiankov/medlens/internal/validate"
	"github.com/ppiankov/medlens/internal/worker"
	"github.com/spf13/cobra"
)

var (
	runSessions    int
	runSeed        int64
	runCorpus      string
	runQueriesFile string
	runConcurrency int
	runTimeout     time.Duration
	outJSON        string
	outMD          string
	noCache        bool
	noFooter       bool
	llmProvider    string
	llmModel       string
	withResearch   bool
	withValidation bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run conversation sessions and report compliance metrics",
	Long: `Run executes bias-analysis conversation sessions in parallel, extracts
claims, citations, and gap statements from every response, and aggregates
the compliance metrics across the batch.

Sessions sharing a corpus and seed form a reproducibility group: the first
session is the reference and the others are compared against it.

Without --llm-provider the sessions use deterministic built-in responses,
which makes seeded runs fully offline and byte-reproducible.

Example:
  medlens run --sessions 5 --seed 42 --corpus pubmed-2025
  medlens run --queries queries.json --llm-provider ollama --llm-model llama3.2
  medlens run --sessions 3 --research --validate-citations --json report.json --md report.md`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Batch flags
	runCmd.Flags().IntVar(&runSessions, "sessions", 1, "sessions per query set (reproducibility needs at least 2)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "generation seed shared by every session in the batch")
	runCmd.Flags().StringVar(&runCorpus, "corpus", "builtin", "corpus identifier recorded with every session")
	runCmd.Flags().StringVar(&runQueriesFile, "queries", "", "JSON file with query sets (array of string arrays); defaults to built-in sets")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 4, "number of concurrent sessions")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "total timeout for the batch")

	// Output flags
	runCmd.Flags().StringVar(&outJSON, "json", "medlens-report.json", "output JSON path")
	runCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	runCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	runCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama); empty uses built-in responses")
	runCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")

	// Cross-check flags
	runCmd.Flags().BoolVar(&withResearch, "research", false, "match citations against PubMed/OpenAlex/arXiv")
	runCmd.Flags().BoolVar(&withValidation, "validate-citations", false, "probe URL citations for liveness")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.SessionWorkers = runConcurrency
	cfg.Research.Enabled = withResearch

	var seed *int64
	if cmd.Flags().Changed("seed") {
		seed = &runSeed
	}

	querySets := worker.DefaultQuerySets()
	if runQueriesFile != "" {
		querySets, err = worker.ReadQuerySets(runQueriesFile)
		if err != nil {
			return err
		}
	}

	store := buildCache(cfg)

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return err
	}
	if provider != nil && verbose {
		fmt.Fprintf(os.Stderr, "LLM provider: %s\n", provider.Name())
	}

	handler := conversation.NewHandler(provider, store, cfg.LLM.Temperature)
	processor := worker.NewBatchProcessor(handler, cfg.Concurrency.SessionWorkers)

	if verbose {
		fmt.Fprintf(os.Stderr, "Running %d session(s) x %d query set(s) with %d worker(s)\n",
			runSessions, len(querySets), cfg.Concurrency.SessionWorkers)
	}

	transcripts, sessionErrs := processor.Run(ctx, querySets, runSessions, runCorpus, seed)
	for _, serr := range sessionErrs {
		fmt.Fprintf(os.Stderr, "✗ %v\n", serr)
	}
	if len(transcripts) == 0 {
		return fmt.Errorf("no sessions completed")
	}

	p := pipeline.NewPipeline(cfg)

	sessions := make([]model.SessionMetrics, 0, len(transcripts))
	for _, t := range transcripts {
		sessions = append(sessions, p.EvaluateTranscript(t))
	}

	if withResearch {
		if err := crossCheckCitations(ctx, cfg, store, sessions); err != nil {
			fmt.Fprintf(os.Stderr, "✗ research cross-check: %v\n", err)
		}
	}

	var liveness *model.CitationLiveness
	if withValidation {
		liveness = validateCitations(ctx, cfg, sessions)
	}

	report, err := p.BuildReport(sessions, runCorpus, seed)
	if err != nil {
		return err
	}
	report.Liveness = liveness

	return renderReport(cfg, report)
}

// crossCheckCitations matches every session's citations against the
// literature corpus fetched for the run's corpus identifier
func crossCheckCitations(ctx context.Context, cfg *model.Config, store cache.Cache, sessions []model.SessionMetrics) error {
	client := research.NewClient(cfg, store)

	papers, errs := client.Search(ctx, runCorpus+" bias demographic representation")
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "✗ literature source: %v\n", err)
	}
	if len(papers) == 0 {
		return fmt.Errorf("no literature results for corpus %q", runCorpus)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Literature corpus: %d papers\n", len(papers))
	}

	for i := range sessions {
		sessions[i].Citations = research.MatchCitations(sessions[i].Citations, papers)
	}

	return nil
}

// validateCitations probes URL citations, reports dead links on stderr,
// and returns the summary recorded in the metrics file
func validateCitations(ctx context.Context, cfg *model.Config, sessions []model.SessionMetrics) *model.CitationLiveness {
	validator := validate.NewValidator(cfg)

	var all []model.Citation
	for _, s := range sessions {
		all = append(all, s.Citations...)
	}

	results := validator.Validate(ctx, all)

	dead := 0
	for _, r := range results {
		if r.Alive {
			continue
		}
		dead++
		if verbose {
			fmt.Fprintf(os.Stderr, "✗ dead citation: %s (status %d %s)\n", r.URL, r.Status, r.Error)
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Citation liveness: %d probed, %d dead\n", len(results), dead)
	return &model.CitationLiveness{Probed: len(results), Dead: dead}
}

func renderReport(cfg *model.Config, report *model.Report) error {
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
		}
	}

	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outMD)
		}
	}

	renderer.RenderSummary(report)
	return nil
}

// buildConfig assembles the effective configuration from defaults, config
// file, environment, and flags
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.Cache.Enabled = !noCache

	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

// buildCache returns the layered cache, or nil when caching is disabled
func buildCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		}
		dir = home + "/.medlens/cache"
	}

	return cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
}
