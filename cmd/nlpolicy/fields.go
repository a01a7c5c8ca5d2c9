package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/feasibility"
)

var fieldsFlags struct {
	format string
	prefix string
	models bool
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the semantic fields policies can reference",
	Long: `List every semantic field path the compiler understands together with
the schema field it maps to. These are the paths the remote model is asked
to use in conditions.

Examples:
  nlpolicy fields
  nlpolicy fields --prefix attendance. --format yaml
  nlpolicy fields --models`,
	// the semantic map is built in and needs no configuration
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runFields,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)

	fieldsCmd.Flags().StringVar(&fieldsFlags.format, "format", "text", "output format: text, json, yaml")
	fieldsCmd.Flags().StringVar(&fieldsFlags.prefix, "prefix", "", "only fields whose path starts with prefix")
	fieldsCmd.Flags().BoolVar(&fieldsFlags.models, "models", false, "list the schema models the fields map onto")
}

type fieldsOutput []feasibility.SemanticField

func (o fieldsOutput) Text() string {
	var sb strings.Builder
	for _, f := range o {
		fmt.Fprintf(&sb, "%-40s %-28s %s\n", f.Path, f.Source(), f.Description)
	}
	return sb.String()
}

type modelsOutput []string

func (o modelsOutput) Text() string {
	return strings.Join(o, "\n") + "\n"
}

func runFields(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(fieldsFlags.format)
	if err != nil {
		return err
	}

	semantic := feasibility.DefaultSemanticMap()
	if fieldsFlags.models {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), modelsOutput(semantic.Models()))
	}

	var out fieldsOutput
	for _, f := range semantic.Fields() {
		if strings.HasPrefix(f.Path, fieldsFlags.prefix) {
			out = append(out, f)
		}
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), out)
}
