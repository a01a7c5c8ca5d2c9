package schema

import (
	"sort"
	"strings"
)

// Field is a single declared field of a model.
type Field struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	IsOptional bool   `json:"isOptional" yaml:"is_optional"`
	IsArray    bool   `json:"isArray" yaml:"is_array"`
	IsRelation bool   `json:"isRelation" yaml:"is_relation"`
	DBColumn   string `json:"dbColumn,omitempty" yaml:"db_column,omitempty"`
}

// Model is a declared model block.
type Model struct {
	Name      string   `json:"name" yaml:"name"`
	TableName string   `json:"tableName" yaml:"table_name"`
	Fields    []Field  `json:"fields" yaml:"fields"`
	Relations []string `json:"relations" yaml:"relations"`
}

// Enum is a declared enum block.
type Enum struct {
	Values []string `json:"values" yaml:"values"`
}

// Catalog is the in-memory index of a schema. It is never modified after
// Parse returns, so it can be shared between goroutines without locking.
type Catalog struct {
	Models          map[string]*Model `json:"models" yaml:"models"`
	Enums           map[string]*Enum  `json:"enums" yaml:"enums"`
	AvailableFields []string          `json:"availableFields" yaml:"available_fields"`

	// lowercase model name and table name -> model
	modelIndex map[string]*Model
}

// FieldLookup is the result of resolving a "Model.field" path.
type FieldLookup struct {
	Found bool
	Model *Model
	Field *Field
}

// Empty returns a catalog with no models. Every lookup against it misses.
func Empty() *Catalog {
	c := &Catalog{
		Models:          map[string]*Model{},
		Enums:           map[string]*Enum{},
		AvailableFields: []string{},
	}
	c.buildIndex()
	return c
}

// IsEmpty reports whether the catalog has no models.
func (c *Catalog) IsEmpty() bool {
	return c == nil || len(c.Models) == 0
}

// ModelNames returns the declared model names in sorted order.
func (c *Catalog) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Model returns a model by declared name, case-insensitive name, or table name.
func (c *Catalog) Model(name string) (*Model, bool) {
	if c == nil {
		return nil, false
	}
	if m, ok := c.Models[name]; ok {
		return m, true
	}
	m, ok := c.modelIndex[strings.ToLower(name)]
	return m, ok
}

// FindField resolves "Model.field". The model may be given by declared name,
// case-insensitively, or by table name; the field by declared name, renamed
// column, or case-insensitively.
func (c *Catalog) FindField(path string) FieldLookup {
	modelName, fieldName, ok := strings.Cut(path, ".")
	if !ok || modelName == "" || fieldName == "" {
		return FieldLookup{}
	}
	m, ok := c.Model(modelName)
	if !ok {
		return FieldLookup{}
	}
	if f := m.field(fieldName); f != nil {
		return FieldLookup{Found: true, Model: m, Field: f}
	}
	return FieldLookup{Model: m}
}

// Field resolves name by declared name, column name, then case-insensitively.
func (m *Model) Field(name string) (*Field, bool) {
	f := m.field(name)
	return f, f != nil
}

// Column returns the database column of the field.
func (f *Field) Column() string {
	if f.DBColumn != "" {
		return f.DBColumn
	}
	return f.Name
}

func (m *Model) field(name string) *Field {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	for i := range m.Fields {
		if m.Fields[i].DBColumn != "" && m.Fields[i].DBColumn == name {
			return &m.Fields[i]
		}
	}
	for i := range m.Fields {
		if strings.EqualFold(m.Fields[i].Name, name) {
			return &m.Fields[i]
		}
	}
	return nil
}

func (c *Catalog) buildIndex() {
	c.modelIndex = make(map[string]*Model, len(c.Models)*2)
	for name, m := range c.Models {
		c.modelIndex[strings.ToLower(name)] = m
		if m.TableName != "" {
			if _, taken := c.modelIndex[strings.ToLower(m.TableName)]; !taken {
				c.modelIndex[strings.ToLower(m.TableName)] = m
			}
		}
	}
}
