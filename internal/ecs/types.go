// Package ecs ties together the entity-ID allocator, SoA component
// storage, query engine, and phased scheduler into the World orchestrator
// described in spec.md §3-§4.8, plus the entity facade (§4.8 table row 8).
package ecs

import (
	"lockstep/internal/ecs/idalloc"
	"lockstep/internal/ecs/schema"
)

// EntityID, ComponentType, FieldType, FieldDef and ComponentDef are
// aliased from their leaf packages so callers write ecs.EntityID /
// ecs.ComponentDef without reaching into internal/ecs/idalloc or
// internal/ecs/schema directly.
type (
	EntityID     = idalloc.EntityID
	ComponentType = schema.ComponentType
	FieldType    = schema.FieldType
	FieldDef     = schema.FieldDef
	ComponentDef = schema.ComponentDef
)

const (
	FieldI32  = schema.FieldI32
	FieldU8   = schema.FieldU8
	FieldBool = schema.FieldBool
	FieldF32  = schema.FieldF32
)

// ClientID identifies the network client that owns an entity (the
// clientId index key, spec.md §4.6).
type ClientID uint32

// InputRecord is one client's opaque per-tick input payload, keyed by
// (frame, sequence, clientId) at the transport boundary (spec.md §6); the
// world only needs the clientId to route it, the payload is opaque.
type InputRecord struct {
	ClientID ClientID
	Sequence uint32
	Payload  []byte
}
