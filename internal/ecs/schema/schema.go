// Package schema defines the component field-type vocabulary and the
// immutable ComponentDef schema shared by component storage, the
// snapshot codec, and the state-hash function.
package schema

// FieldType enumerates the admissible component field types. f32 is
// permitted for render-convenience fields but is never admissible for
// synchronized state: the world skips f32 fields when computing
// StateHash and when encoding snapshots.
type FieldType int

const (
	FieldI32 FieldType = iota
	FieldU8
	FieldBool
	FieldF32
)

// FieldDef describes one field of a component schema: its name, its wire
// type, and the default value written into freshly added slots. Defaults
// are expressed as int32 for i32/u8/bool fields (bool: 0 or 1) and as
// float32 for f32 fields.
type FieldDef struct {
	Name       string
	Type       FieldType
	DefaultI32 int32
	DefaultF32 float32
}

// ComponentType names a component schema. Component definitions are
// registered once at startup and referenced by this stable string
// thereafter (the string itself never crosses the wire; snapshots refer
// to components via the per-type schema table, see internal/snapshot).
type ComponentType string

// ComponentDef is the immutable schema of a component: its ordered field
// list and whether it participates in snapshots, StateHash, and rollback.
type ComponentDef struct {
	Name   ComponentType
	Sync   bool
	Fields []FieldDef
}

// FieldNames returns the component's field names in declaration order.
func (d ComponentDef) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}
