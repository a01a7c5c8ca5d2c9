package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/config"
	"mercator-hq/nlpolicy/pkg/rule"
)

var analyzeFlags struct {
	rule   string
	scope  string
	format string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Check a compiled rule against the data model",
	Long: `Run the feasibility analyzer on a rule in JSON form, as produced by
"nlpolicy compile --format json" (the "rule" object) or stored elsewhere.

Examples:
  nlpolicy analyze --rule rule.json --scope company-42
  cat rule.json | nlpolicy analyze --rule -`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFlags.rule, "rule", "-", `rule JSON file, "-" for stdin`)
	analyzeCmd.Flags().StringVar(&analyzeFlags.scope, "scope", "", "scope (company) ID used for data checks")
	analyzeCmd.Flags().StringVar(&analyzeFlags.format, "format", "text", "output format: text, json, yaml")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(analyzeFlags.format)
	if err != nil {
		return err
	}

	var src io.Reader = cmd.InOrStdin()
	if analyzeFlags.rule != "-" {
		f, err := os.Open(analyzeFlags.rule)
		if err != nil {
			return cli.NewCommandError("analyze", err)
		}
		defer f.Close()
		src = f
	}

	var raw map[string]any
	if err := json.NewDecoder(src).Decode(&raw); err != nil {
		return cli.NewCommandError("analyze", fmt.Errorf("rule is not a JSON object: %w", err))
	}
	// accept the full compile output as well as a bare rule
	if inner, ok := raw["rule"].(map[string]any); ok {
		raw = inner
	}
	r, notes := rule.Coerce(raw)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, config.MustGetConfig(), appOptions{Offline: true})
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}
	defer a.Close()

	if notes.HasErrors() {
		a.logger.Warn("rule was coerced", "notes", notes.Messages())
	}

	res := a.analyzer.Analyze(ctx, r, analyzeFlags.scope)
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), analyzeOutput{res})
}
