package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/config"
	"mercator-hq/nlpolicy/pkg/history"
)

var historyFlags struct {
	scope  string
	parser string
	since  time.Duration
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and prune the compile history",
	Long: `Inspect and prune the compile history.

History is recorded only when history.enabled is true in the configuration.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent compiles",
	Long: `List recent compiles, newest first.

Examples:
  nlpolicy history list --limit 20
  nlpolicy history list --scope company-1 --parser dictionary --since 24h`,
	RunE: runHistoryList,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete compiles older than the retention period",
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFlags.scope, "scope", "", "only compiles for this scope ID")
	historyListCmd.Flags().StringVar(&historyFlags.parser, "parser", "", "only compiles by this parser: remote, dictionary")
	historyListCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only compiles newer than this duration")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 100, "maximum number of entries")
	historyListCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json, yaml")
}

type historyOutput []*history.Entry

func (o historyOutput) Text() string {
	if len(o) == 0 {
		return "no compiles recorded\n"
	}
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPILED\tPARSER\tUNDERSTOOD\tREADINESS\tTEXT")
	for _, e := range o {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			e.ID, e.CompiledAt.Local().Format(time.DateTime), e.Parser, e.Understood, e.Readiness, truncate(e.Text, 48))
	}
	tw.Flush()
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func openHistory() (*history.Store, *config.Config, error) {
	cfg := config.MustGetConfig()
	if !cfg.History.Enabled {
		return nil, nil, cli.NewConfigError("history.enabled", "compile history is disabled")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, nil, cli.NewCommandError("history", err)
	}
	return store, cfg, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}
	switch historyFlags.parser {
	case "", "remote", "dictionary":
	default:
		return cli.NewConfigError("parser", fmt.Sprintf("unknown parser %q", historyFlags.parser))
	}

	store, _, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	q := history.Query{
		ScopeID: historyFlags.scope,
		Parser:  historyFlags.parser,
		Limit:   historyFlags.limit,
	}
	if historyFlags.since > 0 {
		q.Since = time.Now().Add(-historyFlags.since)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	entries, err := store.List(ctx, q)
	if err != nil {
		return cli.NewCommandError("history list", err)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), historyOutput(entries))
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	store, cfg, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.History.RetentionDays <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "retention is unlimited, nothing to prune")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	deleted := history.NewScheduler(store, cfg.History.RetentionDays, "").RunOnce(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d compile(s) older than %d days\n", deleted, cfg.History.RetentionDays)
	return nil
}
