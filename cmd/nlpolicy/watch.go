package main

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/compiler"
	"mercator-hq/nlpolicy/pkg/config"
	"mercator-hq/nlpolicy/pkg/watch"
)

var watchFlags struct {
	offline  bool
	scope    string
	format   string
	debounce time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch <file|dir>",
	Short: "Recompile policy files whenever they change",
	Long: `Compile every policy file under the path once, then recompile each file
when it is saved. Directories are watched for .txt and .policy files.

Examples:
  nlpolicy watch policies/
  nlpolicy watch --offline lateness.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchFlags.offline, "offline", false, "use only the local dictionary parser")
	watchCmd.Flags().StringVar(&watchFlags.scope, "scope", "", "scope (company) ID used for data checks")
	watchCmd.Flags().StringVar(&watchFlags.format, "format", "text", "output format: text, json, yaml")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 200*time.Millisecond, "quiet period before recompiling")
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(watchFlags.format)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := cli.SetupSignalHandler(parent)
	defer stop()

	a, err := newApp(ctx, config.MustGetConfig(), appOptions{Offline: watchFlags.offline, History: true})
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer a.Close()

	formatter := cli.NewFormatter(format)
	var outMu sync.Mutex
	emit := func(path string, res *compiler.Result) {
		outMu.Lock()
		defer outMu.Unlock()
		if err := formatter.FormatTo(cmd.OutOrStdout(), newCompileOutput(path, res, false)); err != nil {
			a.logger.Error("failed to write output", "error", err)
		}
	}
	if err := a.watchPolicies(ctx, args[0], watchFlags.debounce, watchFlags.scope, emit); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

// watchPolicies compiles every policy file under path, then recompiles each
// one when it changes, until ctx is done. emit may be nil.
func (a *app) watchPolicies(ctx context.Context, path string, debounce time.Duration, scopeID string, emit func(string, *compiler.Result)) error {
	w, err := watch.New(watch.Config{Path: path, Debounce: debounce}, a.logger.With("component", "watch"))
	if err != nil {
		return err
	}

	compileFile := func(file string) {
		data, err := os.ReadFile(file)
		if err != nil {
			a.logger.Error("failed to read policy file", "path", file, "error", err)
			return
		}
		res, err := a.compiler.Compile(ctx, strings.TrimSpace(string(data)), scopeID)
		if err != nil {
			a.logger.Error("compile failed", "path", file, "error", err)
			return
		}
		if emit != nil {
			emit(file, res)
		}
	}

	files, err := w.Files()
	if err != nil {
		w.Close()
		return err
	}
	for _, f := range files {
		compileFile(f)
	}
	return w.Watch(ctx, compileFile)
}
