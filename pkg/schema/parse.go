package schema

import (
	"bufio"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	blockStartRe = regexp.MustCompile(`^(model|enum)\s+(\w+)\s*\{`)
	tableMapRe   = regexp.MustCompile(`@@map\(\s*"([^"]+)"\s*\)`)
	columnMapRe  = regexp.MustCompile(`@map\(\s*"([^"]+)"\s*\)`)
)

// scalarTypes are built-in types that are never relations.
var scalarTypes = map[string]bool{
	"String": true, "Int": true, "BigInt": true, "Float": true, "Decimal": true,
	"Boolean": true, "DateTime": true, "Json": true, "Bytes": true,
}

type block struct {
	kind  string
	name  string
	lines []string
}

// Parse builds a catalog from schema text containing enum and model blocks.
// Unrecognized lines are skipped; Parse never fails.
func Parse(text string) *Catalog {
	blocks := scanBlocks(text)

	models := map[string]bool{}
	enums := map[string]bool{}
	for _, b := range blocks {
		if b.kind == "model" {
			models[b.name] = true
		} else {
			enums[b.name] = true
		}
	}

	c := &Catalog{
		Models: make(map[string]*Model),
		Enums:  make(map[string]*Enum),
	}
	for _, b := range blocks {
		switch b.kind {
		case "enum":
			c.Enums[b.name] = parseEnum(b.lines)
		case "model":
			c.Models[b.name] = parseModel(b.name, b.lines, models, enums)
		}
	}

	for _, name := range c.ModelNames() {
		for _, f := range c.Models[name].Fields {
			if !f.IsRelation {
				c.AvailableFields = append(c.AvailableFields, name+"."+f.Name)
			}
		}
	}
	if c.AvailableFields == nil {
		c.AvailableFields = []string{}
	}
	c.buildIndex()
	return c
}

func scanBlocks(text string) []block {
	var blocks []block
	var cur *block

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}
		if cur == nil {
			if m := blockStartRe.FindStringSubmatch(line); m != nil {
				cur = &block{kind: m[1], name: m[2]}
				// single-line block: enum Role { ADMIN USER }
				rest := strings.TrimSpace(line[len(m[0]):])
				if body, closed := strings.CutSuffix(rest, "}"); closed {
					if cur.kind == "enum" {
						cur.lines = append(cur.lines, strings.Fields(body)...)
					} else if body = strings.TrimSpace(body); body != "" {
						cur.lines = append(cur.lines, body)
					}
					blocks = append(blocks, *cur)
					cur = nil
				}
			}
			continue
		}
		if line == "}" {
			blocks = append(blocks, *cur)
			cur = nil
			continue
		}
		cur.lines = append(cur.lines, line)
	}
	return blocks
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseEnum(lines []string) *Enum {
	e := &Enum{Values: []string{}}
	for _, line := range lines {
		tok := strings.Fields(line)
		if len(tok) == 0 || strings.HasPrefix(tok[0], "@") {
			continue
		}
		e.Values = append(e.Values, tok[0])
	}
	return e
}

func parseModel(name string, lines []string, models, enums map[string]bool) *Model {
	m := &Model{Name: name, TableName: name, Fields: []Field{}, Relations: []string{}}

	for _, line := range lines {
		if strings.HasPrefix(line, "@@") {
			if mm := tableMapRe.FindStringSubmatch(line); mm != nil {
				m.TableName = mm[1]
			}
			continue
		}
		tok := strings.Fields(line)
		if len(tok) < 2 {
			continue
		}
		f := Field{Name: tok[0]}
		typ := tok[1]
		if t, ok := strings.CutSuffix(typ, "?"); ok {
			f.IsOptional = true
			typ = t
		}
		if t, ok := strings.CutSuffix(typ, "[]"); ok {
			f.IsArray = true
			typ = t
		}
		if i := strings.IndexByte(typ, '('); i > 0 {
			// Unsupported("...") and similar wrappers
			typ = typ[:i]
		}
		f.Type = typ
		f.IsRelation = isRelationType(typ, models, enums)
		if mm := columnMapRe.FindStringSubmatch(line); mm != nil {
			f.DBColumn = mm[1]
		}

		m.Fields = append(m.Fields, f)
		if f.IsRelation {
			m.Relations = append(m.Relations, f.Type)
		}
	}
	sort.Strings(m.Relations)
	m.Relations = dedupeSorted(m.Relations)
	return m
}

// isRelationType treats a type as a relation when it names a model, or when
// it is capitalized and is neither a scalar nor a declared enum.
func isRelationType(typ string, models, enums map[string]bool) bool {
	if models[typ] {
		return true
	}
	if typ == "" || scalarTypes[typ] || enums[typ] {
		return false
	}
	return unicode.IsUpper([]rune(typ)[0])
}

func dedupeSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}
