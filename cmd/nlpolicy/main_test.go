package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"mercator-hq/nlpolicy/internal/testutil"
	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/config"
)

const latenessPolicy = "إذا تأخر الموظف أكثر من 3 أيام يتم خصم 100 ريال"

// setupConfig installs an offline configuration backed by the HR test schema.
func setupConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.prisma")
	if err := os.WriteFile(schemaPath, []byte(testutil.HRSchema), 0o644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}

	cfg := config.Default()
	cfg.Schema.Path = schemaPath
	cfg.History.Path = filepath.Join(dir, "history.db")
	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(nil) })
	return cfg
}

// capture points cmd's output streams at buffers for the test.
func capture(t *testing.T, cmd *cobra.Command, stdin string) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		cmd.SetIn(nil)
	})
	return &out
}

func TestCompileOffline(t *testing.T) {
	setupConfig(t)
	out := capture(t, compileCmd, "")
	compileFlags.offline, compileFlags.format, compileFlags.strict = true, "json", true
	compileFlags.files, compileFlags.explain, compileFlags.scope = nil, false, ""

	if err := runCompile(compileCmd, []string{latenessPolicy}); err != nil {
		t.Fatalf("runCompile() error = %v", err)
	}

	var got struct {
		Parser string `json:"parser"`
		Rule   struct {
			Understood bool `json:"understood"`
		} `json:"rule"`
		Feasibility *struct {
			Summary struct {
				TotalConditions int `json:"totalConditions"`
			} `json:"summary"`
		} `json:"feasibility"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got.Parser != "dictionary" || !got.Rule.Understood {
		t.Errorf("parser = %q understood = %t, want dictionary/true", got.Parser, got.Rule.Understood)
	}
	if got.Feasibility == nil || got.Feasibility.Summary.TotalConditions != 1 {
		t.Errorf("feasibility = %+v, want one analyzed condition", got.Feasibility)
	}
}

func TestCompileStdinAndExplain(t *testing.T) {
	setupConfig(t)
	out := capture(t, compileCmd, latenessPolicy+"\n")
	compileFlags.offline, compileFlags.format, compileFlags.strict = true, "text", false
	compileFlags.files, compileFlags.explain, compileFlags.scope = nil, true, ""

	if err := runCompile(compileCmd, []string{"-"}); err != nil {
		t.Fatalf("runCompile() error = %v", err)
	}
	text := out.String()
	for _, want := range []string{"dictionary parser", "DEDUCT_FROM_PAYROLL", "tokens:"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestCompileStrictNotUnderstood(t *testing.T) {
	setupConfig(t)
	capture(t, compileCmd, "")
	compileFlags.offline, compileFlags.format, compileFlags.strict = true, "json", true
	compileFlags.files, compileFlags.explain, compileFlags.scope = nil, false, ""

	err := runCompile(compileCmd, []string{"please be nice to everyone"})
	var notCompiled *cli.NotCompiledError
	if !errors.As(err, &notCompiled) {
		t.Fatalf("runCompile() error = %v, want NotCompiledError", err)
	}
	if cli.ExitCode(err) != cli.ExitNotCompiled {
		t.Errorf("ExitCode() = %d, want %d", cli.ExitCode(err), cli.ExitNotCompiled)
	}
}

func TestCompileBadFormat(t *testing.T) {
	setupConfig(t)
	capture(t, compileCmd, "")
	compileFlags.format = "xml"
	defer func() { compileFlags.format = "text" }()

	err := runCompile(compileCmd, []string{latenessPolicy})
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("ExitCode() = %d, want %d (err: %v)", cli.ExitCode(err), cli.ExitConfig, err)
	}
}

func TestCompileFiles(t *testing.T) {
	setupConfig(t)
	dir := t.TempDir()
	var files []string
	for i, text := range []string{latenessPolicy, "خصم 50 ريال لمن عمل من 4 ل 6 ساعات"} {
		path := filepath.Join(dir, "policy"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}

	out := capture(t, compileCmd, "")
	compileFlags.offline, compileFlags.format, compileFlags.strict = true, "text", false
	compileFlags.files, compileFlags.explain, compileFlags.scope = files, false, ""
	defer func() { compileFlags.files = nil }()

	if err := runCompile(compileCmd, nil); err != nil {
		t.Fatalf("runCompile() error = %v", err)
	}
	for _, f := range files {
		if !strings.Contains(out.String(), "== "+f) {
			t.Errorf("output missing section for %s", f)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	setupConfig(t)
	rule := `{"rule":{"understood":true,"trigger":{"event":"ATTENDANCE"},
		"conditions":[{"field":"attendance.currentPeriod.lateDays","operator":"GREATER_THAN","value":3},
		              {"field":"employee.favoriteColor","operator":"EQUALS","value":"blue"}],
		"actions":[{"type":"DEDUCT_FROM_PAYROLL","valueType":"FIXED","value":100}]}}`
	out := capture(t, analyzeCmd, rule)
	analyzeFlags.rule, analyzeFlags.scope, analyzeFlags.format = "-", "", "json"

	if err := runAnalyze(analyzeCmd, nil); err != nil {
		t.Fatalf("runAnalyze() error = %v", err)
	}
	var got struct {
		MissingFields []struct {
			Field string `json:"field"`
		} `json:"missingFields"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(got.MissingFields) == 0 {
		t.Errorf("expected employee.favoriteColor to be reported missing:\n%s", out.String())
	}
}

func TestSchemaCommand(t *testing.T) {
	setupConfig(t)

	tests := []struct {
		name     string
		args     []string
		category string
		want     string
	}{
		{"summary", nil, "", "Attendance"},
		{"found field", []string{"Attendance.lateMinutes"}, "", "Attendance.lateMinutes: Attendance.lateMinutes"},
		{"missing field", []string{"Attendance.lateMinute"}, "", "not found"},
		{"category", nil, "attendance", "attendance:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(t, schemaCmd, "")
			schemaFlags.format, schemaFlags.category = "text", tt.category
			defer func() { schemaFlags.category = "" }()

			if err := runSchema(schemaCmd, tt.args); err != nil {
				t.Fatalf("runSchema() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestFieldsCommand(t *testing.T) {
	out := capture(t, fieldsCmd, "")
	fieldsFlags.format, fieldsFlags.prefix = "text", "contract."
	defer func() { fieldsFlags.prefix = "" }()

	if err := runFields(fieldsCmd, nil); err != nil {
		t.Fatalf("runFields() error = %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "contract.basicSalary") {
		t.Errorf("output missing contract.basicSalary:\n%s", text)
	}
	if strings.Contains(text, "employee.") {
		t.Errorf("prefix filter not applied:\n%s", text)
	}
}

func TestFieldsModels(t *testing.T) {
	out := capture(t, fieldsCmd, "")
	fieldsFlags.format, fieldsFlags.models = "text", true
	defer func() { fieldsFlags.models = false }()

	if err := runFields(fieldsCmd, nil); err != nil {
		t.Fatalf("runFields() error = %v", err)
	}
	lines := strings.Fields(out.String())
	for _, model := range []string{"Attendance", "Contract"} {
		if !slices.Contains(lines, model) {
			t.Errorf("models output missing %s: %v", model, lines)
		}
	}
	if slices.Contains(lines, "contract.basicSalary") {
		t.Errorf("models output lists field paths: %v", lines)
	}
}

func TestHistoryCommands(t *testing.T) {
	cfg := setupConfig(t)

	capture(t, historyListCmd, "")
	historyFlags.format = "text"
	err := runHistoryList(historyListCmd, nil)
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Fatalf("history disabled: ExitCode() = %d, want %d", cli.ExitCode(err), cli.ExitConfig)
	}

	cfg.History.Enabled = true
	capture(t, compileCmd, "")
	compileFlags.offline, compileFlags.format, compileFlags.strict = true, "json", false
	compileFlags.files, compileFlags.explain, compileFlags.scope = nil, false, "company-1"
	defer func() { compileFlags.scope = "" }()
	if err := runCompile(compileCmd, []string{latenessPolicy}); err != nil {
		t.Fatalf("runCompile() error = %v", err)
	}

	out := capture(t, historyListCmd, "")
	historyFlags.scope, historyFlags.parser, historyFlags.limit, historyFlags.format = "company-1", "dictionary", 10, "json"
	defer func() { historyFlags.scope, historyFlags.parser = "", "" }()
	if err := runHistoryList(historyListCmd, nil); err != nil {
		t.Fatalf("runHistoryList() error = %v", err)
	}
	var entries []struct {
		Text    string `json:"text"`
		ScopeID string `json:"scopeId"`
	}
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(entries) != 1 || entries[0].Text != latenessPolicy {
		t.Errorf("entries = %+v, want the compiled policy", entries)
	}

	out = capture(t, historyPruneCmd, "")
	if err := runHistoryPrune(historyPruneCmd, nil); err != nil {
		t.Fatalf("runHistoryPrune() error = %v", err)
	}
	if !strings.Contains(out.String(), "pruned 0") {
		t.Errorf("prune output = %q, want nothing pruned", out.String())
	}
}

func TestVersionCommand(t *testing.T) {
	out := capture(t, versionCmd, "")
	versionCmd.Run(versionCmd, nil)
	if !strings.Contains(out.String(), "nlpolicy "+Version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"analyze", "compile", "fields", "history", "schema", "serve-metrics", "version", "watch"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("command %q not registered", name)
		}
	}
}
