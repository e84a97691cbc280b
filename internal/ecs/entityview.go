package ecs

import "lockstep/internal/fixed"

// EntityView is a scope-local accessor: construct it, use it, let it go
// out of scope. It replaces the cached-accessor-object pool the teacher's
// design notes call for (spec.md §9's "cached accessor objects keyed by
// (entity, component)" note) with a value type that carries no pooled
// state and nothing to leak across ticks.
type EntityView struct {
	id EntityID
	w  *World
}

// View constructs an EntityView for id. It is valid to call even when id
// is stale; accessors simply report errors.
func (w *World) View(id EntityID) EntityView {
	return EntityView{id: id, w: w}
}

// ID returns the viewed entity id.
func (v EntityView) ID() EntityID { return v.id }

// Valid reports whether the viewed id still refers to a live entity.
func (v EntityView) Valid() bool { return v.w.IsEntityValid(v.id) }

// HasComponent reports whether the viewed entity carries component c.
func (v EntityView) HasComponent(c ComponentType) bool {
	return v.w.HasComponent(v.id, c)
}

func (v EntityView) storeFor(c ComponentType) (uint32, bool) {
	if !v.w.IsEntityValid(v.id) {
		return 0, false
	}
	store, ok := v.w.stores[c]
	if !ok {
		return 0, false
	}
	index := v.id.Index()
	if !store.Has(index) {
		return 0, false
	}
	return index, true
}

// fieldKind reports whether component c's schema declares field, and
// whether that field is f32 (stored apart from the i32/u8/bool fields).
func (v EntityView) fieldKind(c ComponentType, field string) (declared, isF32 bool) {
	for _, f := range v.w.stores[c].Def.Fields {
		if f.Name == field {
			return true, f.Type == FieldF32
		}
	}
	return false, false
}

// GetI32 reads an i32/u8/bool field of component c. Returns
// ErrComponentAbsent if the entity is stale, lacks c, or c declares no
// i32/u8/bool field of that name.
func (v EntityView) GetI32(c ComponentType, field string) (int32, error) {
	index, ok := v.storeFor(c)
	if !ok {
		return 0, componentAbsent(v.id, c)
	}
	if declared, isF32 := v.fieldKind(c, field); !declared || isF32 {
		return 0, componentAbsent(v.id, c)
	}
	return v.w.stores[c].GetI32(index, field), nil
}

// SetI32 writes an i32/u8/bool field of component c.
func (v EntityView) SetI32(c ComponentType, field string, val int32) error {
	index, ok := v.storeFor(c)
	if !ok {
		return componentAbsent(v.id, c)
	}
	v.w.stores[c].SetI32(index, field, val)
	return nil
}

// GetF32 reads an f32 field of component c. Returns ErrComponentAbsent if
// the entity is stale, lacks c, or c declares no f32 field of that name.
func (v EntityView) GetF32(c ComponentType, field string) (float32, error) {
	index, ok := v.storeFor(c)
	if !ok {
		return 0, componentAbsent(v.id, c)
	}
	if declared, isF32 := v.fieldKind(c, field); !declared || !isF32 {
		return 0, componentAbsent(v.id, c)
	}
	return v.w.stores[c].GetF32(index, field), nil
}

// SetF32 writes an f32 field of component c.
func (v EntityView) SetF32(c ComponentType, field string, val float32) error {
	index, ok := v.storeFor(c)
	if !ok {
		return componentAbsent(v.id, c)
	}
	v.w.stores[c].SetF32(index, field, val)
	return nil
}

// InterpolatedTransform blends between the position captured at this
// tick's prePhysics phase and the entity's current position by alpha (0 =
// previous, fixed.One = current), for the render phase to consume. If the
// entity had no recorded previous position (e.g. it spawned this tick),
// the current position is returned unblended.
func (v EntityView) InterpolatedTransform(alpha fixed.Fixed) (fixed.Vec2, error) {
	index, ok := v.storeFor(ComponentTransform2D)
	if !ok {
		return fixed.Vec2{}, componentAbsent(v.id, ComponentTransform2D)
	}
	current := v.w.transformPosition(index)
	prev, hadPrev := v.w.prevTransform[v.id]
	if !hadPrev {
		return current, nil
	}
	return prev.Lerp(current, alpha), nil
}
