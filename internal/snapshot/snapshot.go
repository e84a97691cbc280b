// Package snapshot implements the schema-compressed binary snapshot codec
// (wire format v4) described in spec.md §4.9/§6: a self-describing
// capture of synchronized world state plus allocator/string/PRNG state,
// used for late-join bootstrap and the rollback ring buffer.
//
// This package has no dependency on the ecs package: it only knows how to
// frame and parse bytes around a Meta header it doesn't interpret beyond
// its own fields. internal/ecs adapts a *ecs.World to and from the
// Snapshot type defined here (see internal/ecs/snapshot.go), keeping the
// wire format itself free of the circular import that would otherwise
// result from ecs depending on its own snapshot codec and vice versa.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"

	"lockstep/internal/ecs/idalloc"
	"lockstep/internal/rng"
	"lockstep/internal/strreg"
)

// Magic identifies the wire format; Version is the current format
// revision (spec.md §4.9: "version (integer, current = 4)").
const (
	Magic   = "LKSP"
	Version = 4
)

// ErrInvalidSnapshot is returned for malformed bytes, a magic/version
// mismatch, or truncated framing.
var ErrInvalidSnapshot = errors.New("snapshot: invalid or version-mismatched bytes")

// FieldSchema names one field of a synchronized component and its wire
// type. f32 never appears here: f32 fields never contribute to
// synchronized state (spec.md §6).
type FieldSchema struct {
	Name string
	Type string // "i32", "u8", or "bool"
}

// ComponentSchema is one component's ordered field list, sent once per
// snapshot rather than per entity.
type ComponentSchema struct {
	Name   string
	Fields []FieldSchema
}

// TypeSchema is one entity type's ordered component list.
type TypeSchema struct {
	TypeName   string
	Components []ComponentSchema
}

// EntityMeta names one active entity: its packed id, its type, and the
// sorted set of synchronized components it actually carries. Components
// is the entity's live set, which can differ from its type's full
// registered component list after a runtime AddComponent/RemoveComponent
// call; it is what determines which column blocks Decode must consume for
// this entity, exactly mirroring how Encode decided which blocks to write.
type EntityMeta struct {
	ID         uint32
	TypeName   string
	Components []string
}

// ClientInput is one client's opaque per-tick payload, for the optional
// input-state section of the snapshot.
type ClientInput struct {
	ClientID uint32
	Payload  []byte
}

// Meta is the canonicalized textual header. It's JSON-encoded: struct
// field declaration order (not map iteration) fixes the byte layout, and
// every slice field here is populated in a deterministic order by the
// caller, so two peers with equal state produce byte-identical meta JSON.
type Meta struct {
	Magic    string
	Version  uint32
	Frame    uint32
	InputSeq uint32

	AllocatorNextIndex uint32
	AllocatorActive    []idalloc.ActiveSlot

	Namespaces []strreg.NamespaceState
	RNG        rng.State

	Types      []TypeSchema
	Components []string

	Entities []EntityMeta
	Inputs   []ClientInput
}

// Snapshot is the fully decoded wire payload: the meta header, the raw
// entity-index presence bitmap, and the concatenated per-component packed
// columns in Meta.Components order. Column boundaries are not stored on
// the wire; they're re-derived deterministically from Meta by whoever
// interprets ColumnData (internal/ecs.World.Decode), exactly mirroring how
// whoever built it sized each column.
type Snapshot struct {
	Meta       Meta
	EntityMask []byte
	ColumnData []byte
}

// Encode serializes snap into the wire format: u32 meta_length, meta
// bytes, u32 entity_mask_length, mask bytes, then the raw column bytes.
func Encode(snap *Snapshot) ([]byte, error) {
	metaBytes, err := json.Marshal(snap.Meta)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	putU32(&buf, uint32(len(metaBytes)))
	buf.Write(metaBytes)
	putU32(&buf, uint32(len(snap.EntityMask)))
	buf.Write(snap.EntityMask)
	buf.Write(snap.ColumnData)
	return buf.Bytes(), nil
}

// Decode parses the wire format produced by Encode. It validates the
// magic and version and that the declared section lengths fit the
// buffer; it does not interpret ColumnData, since doing so requires
// knowledge of which entities carry which components that only the
// caller (internal/ecs) has.
func Decode(data []byte) (*Snapshot, error) {
	r := bytes.NewReader(data)

	metaLen, err := readU32(r)
	if err != nil {
		return nil, ErrInvalidSnapshot
	}
	metaBytes := make([]byte, metaLen)
	if _, err := io.ReadFull(r, metaBytes); err != nil {
		return nil, ErrInvalidSnapshot
	}
	var meta Meta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, ErrInvalidSnapshot
	}
	if meta.Magic != Magic || meta.Version != Version {
		return nil, ErrInvalidSnapshot
	}

	maskLen, err := readU32(r)
	if err != nil {
		return nil, ErrInvalidSnapshot
	}
	mask := make([]byte, maskLen)
	if _, err := io.ReadFull(r, mask); err != nil {
		return nil, ErrInvalidSnapshot
	}

	rest := make([]byte, r.Len())
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, ErrInvalidSnapshot
	}

	return &Snapshot{Meta: meta, EntityMask: mask, ColumnData: rest}, nil
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// BuildMask packs, into a byte slice sized to ceil(nextIndex/8), one bit
// per index in [0, nextIndex): set if that index appears in active.
func BuildMask(nextIndex uint32, active []idalloc.ActiveSlot) []byte {
	mask := make([]byte, (nextIndex+7)/8)
	for _, slot := range active {
		mask[slot.Index/8] |= 1 << (slot.Index % 8)
	}
	return mask
}
