package ecs

import "lockstep/internal/fixed"

// ComponentTransform2D is the well-known position component every
// renderable entity carries. Its "x"/"y" fields hold the raw bits of a
// Q16.16 fixed.Fixed, exactly like any other synchronized i32 field; World
// treats it specially only to capture the previous-frame position each
// tick for render-phase interpolation (spec.md §4.8 step 3).
const ComponentTransform2D ComponentType = "Transform2D"

// TransformDef is the ComponentDef for ComponentTransform2D, suitable to
// include verbatim in an EntityDef's Components list.
var TransformDef = ComponentDef{
	Name: ComponentTransform2D,
	Sync: true,
	Fields: []FieldDef{
		{Name: "x", Type: FieldI32},
		{Name: "y", Type: FieldI32},
	},
}

func (w *World) transformPosition(index uint32) fixed.Vec2 {
	store := w.stores[ComponentTransform2D]
	return fixed.Vec2{
		X: fixed.Fixed(store.GetI32(index, "x")),
		Y: fixed.Fixed(store.GetI32(index, "y")),
	}
}
