package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/medlens/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	evalCorpus string
	evalSeed   int64
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <transcripts.json>",
	Short: "Evaluate recorded session transcripts",
	Long: `Eval runs the metrics pipeline over already-recorded transcripts
instead of live sessions. The input is a JSON file holding either one
transcript object or an array of them:

  [{"session_id": "s1", "corpus": "pubmed-2025", "seed": 42,
    "turns": [{"query": "...", "response": "...", "timestamp": 2.1}]}]

Sessions keep the corpus and seed recorded in the file; the --corpus and
--seed flags only label the report.

Example:
  medlens eval transcripts.json
  medlens eval transcripts.json --json report.json --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVar(&evalCorpus, "corpus", "", "corpus label for the report (defaults to the first transcript's)")
	evalCmd.Flags().Int64Var(&evalSeed, "seed", 0, "seed label for the report")
	evalCmd.Flags().StringVar(&outJSON, "json", "medlens-report.json", "output JSON path")
	evalCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	evalCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	transcripts, err := pipeline.LoadTranscripts(args[0])
	if err != nil {
		return err
	}
	if len(transcripts) == 0 {
		return fmt.Errorf("no transcripts in %s", args[0])
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Evaluating %d transcript(s) from %s\n", len(transcripts), args[0])
	}

	corpus := evalCorpus
	if corpus == "" {
		corpus = transcripts[0].Corpus
	}

	var seed *int64
	if cmd.Flags().Changed("seed") {
		seed = &evalSeed
	} else {
		seed = transcripts[0].Seed
	}

	p := pipeline.NewPipeline(cfg)
	report, err := p.EvaluateBatch(transcripts, corpus, seed)
	if err != nil {
		return err
	}

	return renderReport(cfg, report)
}
