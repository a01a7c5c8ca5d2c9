package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/config"
	"mercator-hq/nlpolicy/pkg/schema"
)

var schemaFlags struct {
	format   string
	category string
}

var schemaCmd = &cobra.Command{
	Use:   "schema [field path]",
	Short: "Inspect the data-model catalog",
	Long: `Without arguments, list the models of the configured schema.
With a field path (Model.field, the model may also be given by table name),
look the field up and suggest similar fields when it does not exist.

Examples:
  nlpolicy schema
  nlpolicy schema Attendance.lateMinutes
  nlpolicy schema --category attendance`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVar(&schemaFlags.format, "format", "text", "output format: text, json, yaml")
	schemaCmd.Flags().StringVar(&schemaFlags.category, "category", "", "list the fields of a category ("+strings.Join(schema.Categories(), ", ")+")")
}

type modelSummary struct {
	Name      string   `json:"name"`
	TableName string   `json:"tableName"`
	Fields    int      `json:"fields"`
	Relations []string `json:"relations,omitempty"`
}

type schemaOutput struct {
	Models []modelSummary `json:"models"`
	Enums  int            `json:"enums"`
}

func (o schemaOutput) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d models, %d enums\n", len(o.Models), o.Enums)
	for _, m := range o.Models {
		fmt.Fprintf(&sb, "  %-24s table=%-24s fields=%d\n", m.Name, m.TableName, m.Fields)
	}
	return sb.String()
}

type lookupOutput struct {
	Path        string        `json:"path"`
	Found       bool          `json:"found"`
	Model       string        `json:"model,omitempty"`
	Field       *schema.Field `json:"field,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

func (o lookupOutput) Text() string {
	if o.Found {
		return fmt.Sprintf("%s: %s.%s (%s, optional=%t)\n", o.Path, o.Model, o.Field.Name, o.Field.Type, o.Field.IsOptional)
	}
	if len(o.Suggestions) == 0 {
		return fmt.Sprintf("%s: not found\n", o.Path)
	}
	return fmt.Sprintf("%s: not found, did you mean %s?\n", o.Path, strings.Join(o.Suggestions, ", "))
}

type categoryOutput struct {
	Category string   `json:"category"`
	Fields   []string `json:"fields"`
}

func (o categoryOutput) Text() string {
	return fmt.Sprintf("%s:\n  %s\n", o.Category, strings.Join(o.Fields, "\n  "))
}

func runSchema(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(schemaFlags.format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.MustGetConfig()
	intro := schema.New(schema.FileSource{Path: cfg.Schema.Path})
	if err := intro.Load(ctx); err != nil {
		return cli.NewCommandError("schema", err)
	}

	var out any
	switch {
	case schemaFlags.category != "":
		fields := intro.FieldsForCategory(schemaFlags.category)
		if fields == nil {
			return cli.NewConfigError("category", fmt.Sprintf("unknown category %q", schemaFlags.category))
		}
		out = categoryOutput{Category: schemaFlags.category, Fields: fields}
	case len(args) == 1:
		out = lookup(intro, args[0])
	default:
		out = summarize(intro.Catalog())
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), out)
}

func lookup(intro *schema.Introspector, path string) lookupOutput {
	res := intro.FindField(path)
	out := lookupOutput{Path: path, Found: res.Found}
	if res.Found {
		out.Model = res.Model.Name
		out.Field = res.Field
		return out
	}
	out.Suggestions = intro.SuggestSimilarFields(path)
	return out
}

func summarize(c *schema.Catalog) schemaOutput {
	out := schemaOutput{Enums: len(c.Enums)}
	for _, name := range c.ModelNames() {
		m, _ := c.Model(name)
		out.Models = append(out.Models, modelSummary{
			Name:      m.Name,
			TableName: m.TableName,
			Fields:    len(m.Fields),
			Relations: m.Relations,
		})
	}
	return out
}
