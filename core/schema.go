// Package core provides the fundamental building blocks of the golem ORM.
// This file defines the schema system, which maps Go structs to database
// collections/tables, describes fields and relations, and exposes both to
// the filter resolver.
package core

import (
	"reflect"
	"slices"

	"github.com/leandroluk/golemfilter/filter"
)

// Field represents a struct field mapped to a database column.
//
// It contains metadata such as the Go field name, database column name,
// type information and the soft-delete marker.
type Field struct {
	StructFieldName    string       // Name of the field in the Go struct
	DatabaseColumnName string       // Name of the column in the database
	Type               reflect.Type // Go type of the field
	IsPrimaryKey       bool         // Whether this field is a primary key
	MemoryOffset       uintptr      // Memory offset within the struct

	IsDeletedAt bool
}

// FieldOption is a function used to configure a Field.
type FieldOption func(*Field)

// PrimaryKey marks the field as a primary key.
func PrimaryKey() FieldOption {
	return func(f *Field) { f.IsPrimaryKey = true }
}

// DeletedAt marks the field as the deletedAt timestamp (for soft deletes).
func DeletedAt() FieldOption {
	return func(f *Field) { f.IsDeletedAt = true }
}

// SchemaCore contains the schema information required at runtime.
//
// It includes the model name, the database name, the collection/table name,
// the columns and the relations to other schemas. SchemaCore implements
// filter.Model, so filters can be resolved against it.
type SchemaCore struct {
	Database   string
	Collection string
	Fields     []*Field
	Relations  []*RelationInternal

	name           string
	fieldsByOffset map[uintptr]*Field
}

var _ filter.Model = (*SchemaCore)(nil)

// NewSchemaCore builds a schema that is not backed by a Go struct, with one
// field per column name.
//
// Example:
//
//	customers := core.NewSchemaCore("Customer", "customers", "id", "name")
func NewSchemaCore(name string, collection string, columnNameList ...string) *SchemaCore {
	schema := &SchemaCore{name: name, Collection: collection}
	for _, columnName := range columnNameList {
		schema.Fields = append(schema.Fields, &Field{
			StructFieldName:    columnName,
			DatabaseColumnName: columnName,
		})
	}
	return schema
}

// Name returns the model name, unique within a Registry.
func (s *SchemaCore) Name() string {
	return s.name
}

// ColumnNames returns the database column names of the schema.
func (s *SchemaCore) ColumnNames() []string {
	nameList := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		nameList = append(nameList, field.DatabaseColumnName)
	}
	return nameList
}

// RelationshipNames returns the names under which relations are referenced
// in filters ("orders" in "orders.total").
func (s *SchemaCore) RelationshipNames() []string {
	nameList := make([]string, 0, len(s.Relations))
	for _, relation := range s.Relations {
		nameList = append(nameList, relation.Name)
	}
	return nameList
}

// RelatedModel returns the schema on the other side of a relation.
func (s *SchemaCore) RelatedModel(relationship string) (filter.Model, bool) {
	relation := s.Relation(relationship)
	if relation == nil || relation.RefSchema == nil {
		return nil, false
	}
	return relation.RefSchema, true
}

// Column finds a field by its database column name.
func (s *SchemaCore) Column(name string) *Field {
	for _, field := range s.Fields {
		if field.DatabaseColumnName == name {
			return field
		}
	}
	return nil
}

// Relation finds a relation by name.
func (s *SchemaCore) Relation(name string) *RelationInternal {
	for _, relation := range s.Relations {
		if relation.Name == name {
			return relation
		}
	}
	return nil
}

// PrimaryKeyField returns the first field marked as primary key, if any.
func (s *SchemaCore) PrimaryKeyField() *Field {
	for _, field := range s.Fields {
		if field.IsPrimaryKey {
			return field
		}
	}
	return nil
}

// Relate adds a relation that was resolved without selectors, e.g. from a
// schema file.
func (s *SchemaCore) Relate(relation RelationInternal) {
	s.Relations = append(s.Relations, &relation)
}

// fieldByStructName finds a field by its Go struct field name.
func (s *SchemaCore) fieldByStructName(name string) *Field {
	for _, field := range s.Fields {
		if field.StructFieldName == name {
			return field
		}
	}
	return nil
}

// RelationKind defines the type of relationship between entities.
type RelationKind int

const (
	OneToOne   RelationKind = 1
	OneToMany  RelationKind = 2
	ManyToMany RelationKind = 3
)

// Relation describes a relationship between two schemas in a generic form.
//
// L = Local type, F = Foreign type, J = Join type (for many-to-many).
//
// Name is the relationship name used by filters. When empty, the column name
// of Field is used.
type Relation[L any, F any, J any] struct {
	Name           string
	Kind           RelationKind
	Field          any            // func(*L) *<FieldType in L> (e.g. *[]Order)
	RefSchema      *SchemaMeta[F] // Schema of the foreign entity
	LocalKey       any            // func(*L) *<KeyType in L>
	ForeignKey     any            // func(*F) *<KeyType in F>
	JoinTable      string         // Join table/collection name (for many-to-many)
	JoinLocalKey   any            // func(*J) *<KeyType in J> (many-to-many)
	JoinForeignKey any            // func(*J) *<KeyType in J> (many-to-many)
}

// RelationInternal is the normalized runtime representation of a relation.
//
// Unlike Relation, it stores resolved column names instead of selector
// functions.
type RelationInternal struct {
	Name           string
	Kind           RelationKind
	FieldName      string
	RefSchema      *SchemaCore
	LocalKey       string
	ForeignKey     string
	JoinTable      string
	JoinLocalKey   string
	JoinForeignKey string
}

// joinable reports whether the relation carries enough keys to be joined.
func (r *RelationInternal) joinable() bool {
	if r.RefSchema == nil || r.LocalKey == "" || r.ForeignKey == "" {
		return false
	}
	if r.Kind == ManyToMany {
		return r.JoinTable != "" && r.JoinLocalKey != "" && r.JoinForeignKey != ""
	}
	return true
}

// SchemaMeta extends SchemaCore with the cached soft-delete field.
type SchemaMeta[T any] struct {
	SchemaCore

	deletedAtField *Field
}

// AddRelation resolves selectors into column names and adds the relation to
// the schema. The struct field holding the relation stops being a column.
//
// Example:
//
//	core.AddRelation(customerSchema, core.Relation[Customer, Order, any]{
//		Kind:       core.OneToMany,
//		Field:      func(c *Customer) *[]Order { return &c.Orders },
//		RefSchema:  orderSchema,
//		LocalKey:   func(c *Customer) *int64 { return &c.ID },
//		ForeignKey: func(o *Order) *int64 { return &o.CustomerID },
//	})
func AddRelation[L any, F any, J any](schema *SchemaMeta[L], r Relation[L, F, J]) {
	if r.RefSchema == nil {
		panic("core: AddRelation: RefSchema is nil")
	}
	internal := RelationInternal{
		Name:           r.Name,
		Kind:           r.Kind,
		FieldName:      fieldNameFromSelectorFor[L](r.Field),
		RefSchema:      &r.RefSchema.SchemaCore,
		LocalKey:       columnNameOf(&schema.SchemaCore, fieldNameFromSelectorFor[L](r.LocalKey)),
		ForeignKey:     columnNameOf(&r.RefSchema.SchemaCore, fieldNameFromSelectorFor[F](r.ForeignKey)),
		JoinTable:      r.JoinTable,
		JoinLocalKey:   columnNameFromSelectorFor[J](r.JoinLocalKey),
		JoinForeignKey: columnNameFromSelectorFor[J](r.JoinForeignKey),
	}

	if field := schema.fieldByStructName(internal.FieldName); field != nil {
		if internal.Name == "" {
			internal.Name = field.DatabaseColumnName
		}
		schema.Fields = slices.DeleteFunc(schema.Fields, func(f *Field) bool { return f == field })
		delete(schema.fieldsByOffset, field.MemoryOffset)
	}
	if internal.Name == "" {
		internal.Name = internal.FieldName
	}
	schema.Relations = append(schema.Relations, &internal)
}

// columnNameOf maps a struct field name to its column name in schema.
func columnNameOf(schema *SchemaCore, structFieldName string) string {
	if field := schema.fieldByStructName(structFieldName); field != nil {
		return field.DatabaseColumnName
	}
	return structFieldName
}

// SchemaBuilder is used to construct a schema definition from a Go struct.
//
// It collects field metadata using reflection and applies customization
// through SchemaOptions.
type SchemaBuilder[T any] struct {
	name           string
	database       string
	collection     string
	tagKey         string
	structType     reflect.Type
	fields         []*Field
	fieldsByOffset map[uintptr]*Field
}

// SchemaOption represents a function that customizes the schema builder.
type SchemaOption[T any] func(*SchemaBuilder[T])

// TagKey sets the struct tag key to use for database column mapping.
func TagKey[T any](key string) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) { schemaBuilder.tagKey = key }
}

// Table sets the database collection/table name for the schema.
func Table[T any](name string) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) { schemaBuilder.collection = name }
}

// Database sets the database name for the schema.
func Database[T any](name string) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) { schemaBuilder.database = name }
}

// ModelName overrides the model name, which defaults to the struct type name.
func ModelName[T any](name string) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) { schemaBuilder.name = name }
}

// OverrideField allows modifying the metadata of a specific field
// (e.g., making it the primary key or the soft-delete marker).
func OverrideField[T any, F any](selector func(*T) *F, opts ...FieldOption) SchemaOption[T] {
	return func(schemaBuilder *SchemaBuilder[T]) {
		if schemaBuilder.fieldsByOffset == nil || len(schemaBuilder.fields) == 0 {
			return // fields are not reflected yet
		}
		offset := offsetOf(selector)
		if field, ok := schemaBuilder.fieldsByOffset[offset]; ok {
			for _, opt := range opts {
				opt(field)
			}
		} else {
			panic("core: OverrideField: field not found by selector")
		}
	}
}

// Schema builds a SchemaMeta[T] by reflecting on struct fields
// and applying the given SchemaOptions.
//
// Example:
//
//	customerSchema := core.Schema[Customer](
//		core.Table[Customer]("customers"),
//		core.OverrideField(func(c *Customer) *int64 { return &c.ID }, core.PrimaryKey()),
//	)
func Schema[T any](options ...SchemaOption[T]) *SchemaMeta[T] {
	var zero T
	structType := reflect.TypeOf(zero)
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	builder := &SchemaBuilder[T]{
		structType:     structType,
		fieldsByOffset: make(map[uintptr]*Field),
	}

	// Apply options before building fields (Table/Database/TagKey/etc.)
	for _, option := range options {
		option(builder)
	}

	tagKey := builder.tagKey
	if tagKey == "" {
		tagKey = "db"
	}

	for _, sf := range reflect.VisibleFields(structType) {
		// promoted fields carry offsets relative to their embedded struct
		if !sf.IsExported() || sf.Anonymous || len(sf.Index) > 1 {
			continue
		}
		dbName := sf.Tag.Get(tagKey)
		if dbName == "-" {
			continue
		}
		if dbName == "" {
			dbName = sf.Name
		}

		field := &Field{
			StructFieldName:    sf.Name,
			DatabaseColumnName: dbName,
			Type:               sf.Type,
			MemoryOffset:       sf.Offset,
		}
		builder.fields = append(builder.fields, field)
		builder.fieldsByOffset[sf.Offset] = field
	}

	// Re-apply options so that OverrideField can work after fields exist
	for _, option := range options {
		option(builder)
	}

	name := builder.name
	if name == "" {
		name = structType.Name()
	}

	meta := &SchemaMeta[T]{
		SchemaCore: SchemaCore{
			Database:       builder.database,
			Collection:     builder.collection,
			Fields:         builder.fields,
			name:           name,
			fieldsByOffset: builder.fieldsByOffset,
		},
	}

	for _, f := range builder.fields {
		if f.IsDeletedAt {
			meta.deletedAtField = f
		}
	}

	return meta
}
