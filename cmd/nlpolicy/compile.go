package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/compiler"
	"mercator-hq/nlpolicy/pkg/config"
	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/parser/dictionary"
)

var compileFlags struct {
	files   []string
	offline bool
	explain bool
	scope   string
	format  string
	strict  bool
}

var compileCmd = &cobra.Command{
	Use:   "compile [policy text | -]",
	Short: "Compile policy text into a rule and check its feasibility",
	Long: `Compile a natural-language policy into a structured rule.

The policy is taken from the arguments, from --file (repeatable) or from
stdin when the only argument is "-" or nothing is given.

Examples:
  # Compile with the configured model, falling back to the dictionary parser
  nlpolicy compile "إذا تأخر الموظف أكثر من 3 أيام يتم خصم 100 ريال"

  # Dictionary parser only, with the token analysis
  nlpolicy compile --offline --explain "deduct 100 if late more than 3 days"

  # Several files, YAML output, exit code 3 if any policy is not executable
  nlpolicy compile -f a.txt -f b.txt --format yaml --strict`,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringArrayVarP(&compileFlags.files, "file", "f", nil, "policy text file (repeatable)")
	compileCmd.Flags().BoolVar(&compileFlags.offline, "offline", false, "use only the local dictionary parser")
	compileCmd.Flags().BoolVar(&compileFlags.explain, "explain", false, "include the dictionary token analysis")
	compileCmd.Flags().StringVar(&compileFlags.scope, "scope", "", "scope (company) ID used for data checks")
	compileCmd.Flags().StringVar(&compileFlags.format, "format", "text", "output format: text, json, yaml")
	compileCmd.Flags().BoolVar(&compileFlags.strict, "strict", false, "fail when a policy is not understood or not executable")
}

// policySource is one policy to compile.
type policySource struct {
	name string
	text string
}

func runCompile(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(compileFlags.format)
	if err != nil {
		return err
	}

	sources, err := readPolicies(cmd.InOrStdin(), args, compileFlags.files)
	if err != nil {
		return cli.NewCommandError("compile", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, config.MustGetConfig(), appOptions{Offline: compileFlags.offline, History: true})
	if err != nil {
		return cli.NewCommandError("compile", err)
	}
	defer a.Close()

	formatter := cli.NewFormatter(format)
	out := cmd.OutOrStdout()

	var progress *cli.BatchProgress
	if len(sources) > 1 {
		progress = cli.NewBatchProgress(cmd.ErrOrStderr(), len(sources))
		defer progress.Finish()
	}

	var notCompiled []string
	for _, src := range sources {
		res, err := a.compiler.Compile(ctx, src.text, compileFlags.scope)
		if err != nil {
			if progress == nil {
				return cli.NewCommandError("compile", err)
			}
			progress.Failed()
			a.logger.Error("compile failed", "source", src.name, "error", err)
			notCompiled = append(notCompiled, src.name)
			continue
		}
		if progress != nil {
			progress.Compiled(res.Rule.Understood)
		}

		if err := formatter.FormatTo(out, newCompileOutput(src.name, res, compileFlags.explain)); err != nil {
			return cli.NewCommandError("compile", err)
		}
		if reason := strictFailure(res); reason != "" {
			notCompiled = append(notCompiled, fmt.Sprintf("%s: %s", src.name, reason))
		}
	}

	if compileFlags.strict && len(notCompiled) > 0 {
		return &cli.NotCompiledError{Reason: strings.Join(notCompiled, "; ")}
	}
	return nil
}

func newCompileOutput(name string, res *compiler.Result, explain bool) compileOutput {
	out := compileOutput{Source: name, Result: res}
	if explain {
		out.Analysis = dictionary.New().Analyze(res.Text)
	}
	return out
}

// strictFailure returns why res would fail --strict, or "".
func strictFailure(res *compiler.Result) string {
	if !res.Rule.Understood {
		return "not understood"
	}
	if res.Readiness() == feasibility.ReadinessNotReady {
		return "not executable against the schema"
	}
	return ""
}

// readPolicies collects policy texts from files, arguments or stdin.
func readPolicies(stdin io.Reader, args, files []string) ([]policySource, error) {
	var sources []policySource
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy file: %w", err)
		}
		sources = append(sources, policySource{name: f, text: strings.TrimSpace(string(data))})
	}

	switch {
	case len(args) == 1 && args[0] == "-", len(args) == 0 && len(files) == 0:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		sources = append(sources, policySource{text: strings.TrimSpace(string(data))})
	case len(args) > 0:
		sources = append(sources, policySource{text: strings.Join(args, " ")})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no policy text given")
	}
	return sources, nil
}
