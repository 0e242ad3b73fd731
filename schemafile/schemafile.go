// Package schemafile loads model definitions from YAML into a core.Registry,
// for models that are not backed by Go structs.
//
// A schema file lists models with their columns and relationships:
//
//	models:
//	  - name: Customer
//	    table: customers
//	    columns: [id, name]
//	    primary_key: id
//	    relationships:
//	      - name: orders
//	        kind: one_to_many
//	        model: Order
//	        local_key: id
//	        foreign_key: customer_id
//	  - name: Order
//	    table: orders
//	    columns: [id, customer_id, total]
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/leandroluk/golemfilter/core"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema is returned for schema files that do not describe a
// consistent set of models.
var ErrInvalidSchema = errors.New("invalid schema file")

// File is the document shape of a schema file.
type File struct {
	Models []ModelDef `yaml:"models"`
}

// ModelDef describes one model.
type ModelDef struct {
	Name          string            `yaml:"name"`
	Table         string            `yaml:"table"`
	Database      string            `yaml:"database"`
	Columns       []string          `yaml:"columns"`
	PrimaryKey    string            `yaml:"primary_key"`
	Relationships []RelationshipDef `yaml:"relationships"`
}

// RelationshipDef describes a relationship from the enclosing model to Model.
type RelationshipDef struct {
	Name           string `yaml:"name"`
	Kind           string `yaml:"kind"`
	Model          string `yaml:"model"`
	LocalKey       string `yaml:"local_key"`
	ForeignKey     string `yaml:"foreign_key"`
	JoinTable      string `yaml:"join_table"`
	JoinLocalKey   string `yaml:"join_local_key"`
	JoinForeignKey string `yaml:"join_foreign_key"`
}

var kindByName = map[string]core.RelationKind{
	"one_to_one":   core.OneToOne,
	"many_to_one":  core.OneToOne,
	"one_to_many":  core.OneToMany,
	"many_to_many": core.ManyToMany,
}

// Load reads and parses the schema file at path.
func Load(path string) (*core.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file %s: %w", path, err)
	}
	registry, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return registry, nil
}

// Parse decodes a schema file and registers its models. Unknown keys are
// rejected.
func Parse(data []byte) (*core.Registry, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return file.Registry()
}

// Registry validates the file and builds a registry holding its models.
func (f *File) Registry() (*core.Registry, error) {
	if len(f.Models) == 0 {
		return nil, fmt.Errorf("%w: no models defined", ErrInvalidSchema)
	}

	registry := core.NewRegistry()
	schemaList := make([]*core.SchemaCore, 0, len(f.Models))
	for _, def := range f.Models {
		schema, err := def.schema()
		if err != nil {
			return nil, err
		}
		if err := registry.Register(schema); err != nil {
			return nil, err
		}
		schemaList = append(schemaList, schema)
	}

	for i, def := range f.Models {
		for _, relDef := range def.Relationships {
			relation, err := relDef.relation(schemaList[i], registry)
			if err != nil {
				return nil, fmt.Errorf("model %s: %w", def.Name, err)
			}
			schemaList[i].Relate(relation)
		}
	}
	return registry, nil
}

func (d ModelDef) schema() (*core.SchemaCore, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: model without name", ErrInvalidSchema)
	}
	if len(d.Columns) == 0 {
		return nil, fmt.Errorf("%w: model %s has no columns", ErrInvalidSchema, d.Name)
	}
	for i, column := range d.Columns {
		if column == "" || slices.Contains(d.Columns[:i], column) {
			return nil, fmt.Errorf("%w: model %s has an empty or repeated column `%s`", ErrInvalidSchema, d.Name, column)
		}
	}

	table := d.Table
	if table == "" {
		table = d.Name
	}
	schema := core.NewSchemaCore(d.Name, table, d.Columns...)
	schema.Database = d.Database

	if d.PrimaryKey != "" {
		field := schema.Column(d.PrimaryKey)
		if field == nil {
			return nil, fmt.Errorf("%w: primary key `%s` is not a column of %s", ErrInvalidSchema, d.PrimaryKey, d.Name)
		}
		field.IsPrimaryKey = true
	}
	return schema, nil
}

func (d RelationshipDef) relation(owner *core.SchemaCore, registry *core.Registry) (core.RelationInternal, error) {
	if d.Name == "" {
		return core.RelationInternal{}, fmt.Errorf("%w: relationship without name", ErrInvalidSchema)
	}
	if owner.Column(d.Name) != nil || owner.Relation(d.Name) != nil {
		return core.RelationInternal{}, fmt.Errorf("%w: relationship `%s` clashes with a column or relationship", ErrInvalidSchema, d.Name)
	}
	kind, ok := kindByName[d.Kind]
	if !ok {
		return core.RelationInternal{}, fmt.Errorf("%w: relationship `%s` has unknown kind `%s`", ErrInvalidSchema, d.Name, d.Kind)
	}
	target, ok := registry.Schema(d.Model)
	if !ok {
		return core.RelationInternal{}, fmt.Errorf("%w: relationship `%s` targets unknown model `%s`", ErrInvalidSchema, d.Name, d.Model)
	}

	localKey, foreignKey := d.LocalKey, d.ForeignKey
	if localKey == "" {
		localKey = primaryKeyName(owner)
	}
	if foreignKey == "" {
		foreignKey = primaryKeyName(target)
	}
	if owner.Column(localKey) == nil {
		return core.RelationInternal{}, fmt.Errorf("%w: relationship `%s`: local key `%s` is not a column", ErrInvalidSchema, d.Name, localKey)
	}
	if target.Column(foreignKey) == nil {
		return core.RelationInternal{}, fmt.Errorf("%w: relationship `%s`: foreign key `%s` is not a column of %s", ErrInvalidSchema, d.Name, foreignKey, target.Name())
	}
	if kind == core.ManyToMany && (d.JoinTable == "" || d.JoinLocalKey == "" || d.JoinForeignKey == "") {
		return core.RelationInternal{}, fmt.Errorf("%w: relationship `%s` needs join_table, join_local_key and join_foreign_key", ErrInvalidSchema, d.Name)
	}

	return core.RelationInternal{
		Name:           d.Name,
		Kind:           kind,
		RefSchema:      target,
		LocalKey:       localKey,
		ForeignKey:     foreignKey,
		JoinTable:      d.JoinTable,
		JoinLocalKey:   d.JoinLocalKey,
		JoinForeignKey: d.JoinForeignKey,
	}, nil
}

func primaryKeyName(schema *core.SchemaCore) string {
	if field := schema.PrimaryKeyField(); field != nil {
		return field.DatabaseColumnName
	}
	return ""
}
