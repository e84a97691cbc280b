package ecs

import (
	"sort"

	"lockstep/internal/ecs/idalloc"
	"lockstep/internal/snapshot"
)

func fieldTypeString(t FieldType) string {
	switch t {
	case FieldU8:
		return "u8"
	case FieldBool:
		return "bool"
	default:
		return "i32"
	}
}

// Encode captures the synchronized subset of world state — active
// synchronized entities, allocator state, string registry, PRNG — into
// the wire format of spec.md §4.9. inputSeq is the caller's current
// input-sequence number (opaque to World, carried through for the
// rollback buffer's bookkeeping).
func (w *World) Encode(inputSeq uint32) ([]byte, error) {
	activeEntities := w.ActiveEntities()

	typesUsed := make(map[string]bool)
	for _, id := range activeEntities {
		typeName, _ := w.TypeName(id)
		typesUsed[typeName] = true
	}
	typeNames := make([]string, 0, len(typesUsed))
	for t := range typesUsed {
		typeNames = append(typeNames, t)
	}
	sort.Strings(typeNames)

	componentSet := make(map[ComponentType]bool)
	types := make([]snapshot.TypeSchema, 0, len(typeNames))
	for _, tn := range typeNames {
		def := w.defs[tn]
		var comps []snapshot.ComponentSchema
		for _, cd := range def.Components {
			if !cd.Sync {
				continue
			}
			componentSet[cd.Name] = true
			fieldTypes := make(map[string]FieldType, len(cd.Fields))
			for _, f := range cd.Fields {
				fieldTypes[f.Name] = f.Type
			}
			store := w.stores[cd.Name]
			fields := make([]snapshot.FieldSchema, 0, len(store.SyncFieldNames()))
			for _, name := range store.SyncFieldNames() {
				fields = append(fields, snapshot.FieldSchema{Name: name, Type: fieldTypeString(fieldTypes[name])})
			}
			comps = append(comps, snapshot.ComponentSchema{Name: string(cd.Name), Fields: fields})
		}
		types = append(types, snapshot.TypeSchema{TypeName: tn, Components: comps})
	}

	components := make([]string, 0, len(componentSet))
	for c := range componentSet {
		components = append(components, string(c))
	}
	sort.Strings(components)

	entities := make([]snapshot.EntityMeta, 0, len(activeEntities))
	for _, id := range activeEntities {
		typeName, _ := w.TypeName(id)
		entities = append(entities, snapshot.EntityMeta{
			ID:         uint32(id),
			TypeName:   typeName,
			Components: w.liveSyncComponents(id, components),
		})
	}

	nextIndex, active := w.allocator.State()
	mask := snapshot.BuildMask(nextIndex, active)

	meta := snapshot.Meta{
		Magic:              snapshot.Magic,
		Version:            snapshot.Version,
		Frame:              w.frame,
		InputSeq:           inputSeq,
		AllocatorNextIndex: nextIndex,
		AllocatorActive:    active,
		Namespaces:         w.Strings.State(),
		RNG:                w.RNG.Save(),
		Types:              types,
		Components:         components,
		Entities:           entities,
	}

	columnData := w.encodeColumns(components, activeEntities)

	return snapshot.Encode(&snapshot.Snapshot{Meta: meta, EntityMask: mask, ColumnData: columnData})
}

// liveSyncComponents returns, in components order (already sorted), the
// names id actually carries right now (store.Has(index)) — checked
// against every synchronized component present anywhere in this
// snapshot, not just id's own type's declared set, since AddComponent
// permits attaching a component from outside an entity's own type def.
// This is the same live-presence basis encodeColumns uses to decide
// which value blocks to emit, recorded per entity so Decode can consume
// blocks on the identical basis rather than assuming every entity
// carries its full registered type schema.
func (w *World) liveSyncComponents(id EntityID, components []string) []string {
	index := id.Index()
	var names []string
	for _, cname := range components {
		if store, ok := w.stores[ComponentType(cname)]; ok && store.Has(index) {
			names = append(names, cname)
		}
	}
	return names
}

func (w *World) encodeColumns(components []string, activeEntities []EntityID) []byte {
	var out []byte
	for _, cname := range components {
		store := w.stores[ComponentType(cname)]
		fieldNames := store.SyncFieldNames()
		for _, id := range activeEntities {
			index := id.Index()
			if !store.Has(index) {
				continue
			}
			for _, field := range fieldNames {
				out = appendU32(out, uint32(store.GetI32(index, field)))
			}
		}
	}
	return out
}

func appendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func readU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Decode replaces the world's synchronized state with what data encodes:
// every currently live synchronized entity is destroyed, the entity
// allocator and string/PRNG state are restored exactly, and the
// snapshot's entities are recreated with their synchronized field values.
// Local-only entities are untouched (they were never part of the
// snapshot). An entity whose type isn't registered locally is logged and
// skipped, per spec.md §7's InvalidSnapshot/UnknownEntityType policy; a
// framing-level problem aborts the whole decode and leaves the world
// unmodified.
func (w *World) Decode(data []byte) error {
	snap, err := snapshot.Decode(data)
	if err != nil {
		return invalidSnapshot(err.Error())
	}
	meta := snap.Meta

	fieldsByComponent := make(map[string][]snapshot.FieldSchema)
	for _, ts := range meta.Types {
		for _, c := range ts.Components {
			if _, ok := fieldsByComponent[c.Name]; !ok {
				fieldsByComponent[c.Name] = c.Fields
			}
		}
	}

	// hasComponent keys decode's block consumption on each entity's
	// recorded live component set — the same basis encodeColumns used to
	// decide which blocks to write — rather than the entity's registered
	// type schema, which can have drifted from its live set via
	// AddComponent/RemoveComponent since the snapshot was taken.
	hasComponent := make(map[uint32]map[string]bool, len(meta.Entities))
	for _, em := range meta.Entities {
		set := make(map[string]bool, len(em.Components))
		for _, c := range em.Components {
			set[c] = true
		}
		hasComponent[em.ID] = set
	}

	// Validate the column section is exactly as long as the declared
	// schema implies before any world mutation begins, so a truncated or
	// inconsistent snapshot is rejected cleanly rather than panicking
	// partway through a decode that has already destroyed entities.
	total := 0
	for _, cname := range meta.Components {
		width := 4 * len(fieldsByComponent[cname])
		for _, em := range meta.Entities {
			if hasComponent[em.ID][cname] {
				total += width
			}
		}
	}
	if total != len(snap.ColumnData) {
		return invalidSnapshot("column data length mismatch: want bytes for schema, got different length")
	}

	for _, id := range w.ActiveEntities() {
		_ = w.Destroy(id)
	}
	if err := w.allocator.RestoreState(meta.AllocatorNextIndex, meta.AllocatorActive); err != nil {
		return invalidSnapshot("allocator restore: " + err.Error())
	}
	if err := w.Strings.Restore(meta.Namespaces); err != nil {
		return invalidSnapshot("string registry restore: " + err.Error())
	}
	w.RNG.Restore(meta.RNG)
	w.frame = meta.Frame

	attached := make(map[uint32]bool, len(meta.Entities))
	for _, em := range meta.Entities {
		if err := w.attachEntity(idalloc.EntityID(em.ID), em.TypeName, em.Components); err != nil {
			w.Logger.Printf("snapshot: skipping entity %d: unknown type %q", em.ID, em.TypeName)
			continue
		}
		attached[em.ID] = true
	}

	cursor := 0
	for _, cname := range meta.Components {
		fields := fieldsByComponent[cname]
		store, haveStore := w.stores[ComponentType(cname)]
		width := 4 * len(fields)
		for _, em := range meta.Entities {
			if !hasComponent[em.ID][cname] {
				continue
			}
			chunk := snap.ColumnData[cursor : cursor+width]
			cursor += width
			if !attached[em.ID] || !haveStore {
				continue
			}
			index := idalloc.EntityID(em.ID).Index()
			for i, f := range fields {
				store.SetI32(index, f.Name, int32(readU32(chunk[i*4:i*4+4])))
			}
		}
	}

	for _, em := range meta.Entities {
		if !attached[em.ID] {
			continue
		}
		def := w.defs[em.TypeName]
		if def.OnRestore != nil {
			def.OnRestore(w, idalloc.EntityID(em.ID))
		}
	}

	return nil
}

// attachEntity places a decoded entity directly into records/stores/
// indices without touching the allocator, which Decode has already
// restored to the exact state the snapshot describes. components is the
// entity's recorded live component set at encode time (sorted, from
// EntityMeta.Components), which can differ from its type's registered
// default set via AddComponent/RemoveComponent — including components
// attached from outside the entity's own type def, since AddComponent
// allows that — so it is attached to by name against the stores
// RegisterEntityDef already created, rather than by walking def.Components.
func (w *World) attachEntity(id EntityID, typeName string, components []string) error {
	if _, ok := w.defs[typeName]; !ok {
		return unknownEntityType(typeName)
	}
	index := id.Index()
	rec := &entityRecord{id: id, typeName: typeName, local: false, components: make(map[ComponentType]bool)}
	w.records[w.recordKey(id)] = rec
	w.indices.AddType(typeName, id)
	for _, name := range components {
		cname := ComponentType(name)
		store, ok := w.stores[cname]
		if !ok {
			continue
		}
		store.Add(index)
		w.indices.AddComponent(cname, id)
		rec.components[cname] = true
	}
	return nil
}
