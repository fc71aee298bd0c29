package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pcfg "github.com/ling0322/pcfgparser"
)

func newParseCmd(flags *globalFlags) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "parse [sentence...]",
		Short: "Print the most probable parse tree of each sentence",
		Long: `Print the most probable parse tree of each sentence as JSON, one per line.
Sentences are read from standard input, one per line, when none is given.

Examples:
  pcfg parse -g testdata/toy.grammar "the man saw a dog ."
  echo "the dog saw a man" | pcfg parse -g testdata/toy.grammar -a earley`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			parser, err := cfg.NewParser()
			if err != nil {
				return err
			}

			var sentences []string
			if len(args) > 0 {
				sentences = args
			} else {
				lines, err := readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
				sentences = nonBlank(lines)
			}
			return runParse(parser, sentences, cmd.OutOrStdout(), pretty, logger)
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "print indented s-expressions instead of JSON")

	return cmd
}

func runParse(parser *pcfg.Parser, sentences []string, w io.Writer, pretty bool, logger *zap.Logger) error {
	failures := 0
	for _, sentence := range sentences {
		tree, err := parser.Parse(sentence)
		if err != nil && !errors.Is(err, pcfg.ErrParseFailure) {
			return err
		}
		if err != nil {
			failures++
			logger.Warn("no parse", zap.String("sentence", sentence), zap.Error(err))
		}

		if pretty {
			if tree == nil {
				fmt.Fprintln(w, "()")
			} else {
				fmt.Fprintf(w, "%s\n%g\n", tree, tree.Probability)
			}
			continue
		}
		if err := writeTree(w, tree); err != nil {
			return err
		}
	}

	if failures > 0 {
		return errors.Errorf("%d of %d sentences have no parse", failures, len(sentences))
	}
	return nil
}

// writeTree writes tree as one line of JSON, null for a failed parse
func writeTree(w io.Writer, tree *pcfg.Tree) error {
	var data []byte
	if tree == nil {
		data = []byte("null")
	} else {
		var err error
		if data, err = json.Marshal(tree); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n", data)
	return err
}

// readLines returns every line of r, blank ones included
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func nonBlank(lines []string) []string {
	var result []string
	for _, line := range lines {
		if !isBlank(line) {
			result = append(result, line)
		}
	}
	return result
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open input '%s'", path)
	}
	return f, nil
}
