package main

import (
	"bufio"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pcfg "github.com/ling0322/pcfgparser"
)

func newBulkParseCmd(flags *globalFlags) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "bulk-parse <input> <output>",
		Short: "Parse a file of sentences, one per line",
		Long: `Parse every line of <input> and write one JSON tree per line to <output>,
in input order. Blank lines and lines without a parse are written as null.
Use - for standard input or output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cfg.Workers < 1 {
				return errors.New("workers must be at least 1")
			}

			parser, err := cfg.NewParser()
			if err != nil {
				return err
			}
			return runBulkParse(parser, args[0], args[1], cfg.Workers, logger)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of sentences parsed concurrently")

	return cmd
}

// bulkResult is the outcome of one input line
type bulkResult struct {
	tree  *pcfg.Tree
	err   error
	blank bool
}

func runBulkParse(parser *pcfg.Parser, input, output string, workers int, logger *zap.Logger) error {
	in, err := openInput(input)
	if err != nil {
		return err
	}
	sentences, err := readLines(in)
	in.Close()
	if err != nil {
		return errors.Wrapf(err, "read input '%s'", input)
	}

	batchID := uuid.New().String()
	logger = logger.With(zap.String("batch_id", batchID))
	logger.Info("bulk parse started",
		zap.Int("sentences", len(sentences)),
		zap.String("algorithm", string(parser.Algorithm())),
		zap.Int("workers", workers))

	begin := time.Now()
	results := parseAll(parser, sentences, workers)

	var out io.Writer = os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return errors.Wrapf(err, "create output '%s'", output)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	failures, blanks := 0, 0
	for i, result := range results {
		if result.blank {
			blanks++
		} else if result.err != nil {
			if !errors.Is(result.err, pcfg.ErrParseFailure) {
				return errors.Wrapf(result.err, "line %d", i+1)
			}
			failures++
			logger.Debug("no parse", zap.Int("line", i+1), zap.Error(result.err))
		}
		if err := writeTree(w, result.tree); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "write output '%s'", output)
	}

	logger.Info("bulk parse finished",
		zap.Int("sentences", len(sentences)),
		zap.Int("failures", failures),
		zap.Int("blank", blanks),
		zap.Duration("elapsed", time.Since(begin)))
	return nil
}

// parseAll parses sentences with a pool of workers, one result per sentence.
// Blank sentences are not parsed. The grammar is only read by the engines, so
// the workers share the parser
func parseAll(parser *pcfg.Parser, sentences []string, workers int) []bulkResult {
	results := make([]bulkResult, len(sentences))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if isBlank(sentences[j]) {
					results[j] = bulkResult{blank: true}
					continue
				}
				tree, err := parser.Parse(sentences[j])
				results[j] = bulkResult{tree: tree, err: err}
			}
		}()
	}

	for j := range sentences {
		jobs <- j
	}
	close(jobs)
	wg.Wait()

	return results
}
