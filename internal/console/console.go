// Package console provides a read-only gopher-lua inspection shell over a
// live *ecs.World, grounded on the teacher's internal/core/ecs/lua bridge
// (its Go<->Lua value conversion and sandboxed-global pattern), repurposed
// here as a debug console rather than a modding/gameplay-rules API.
//
// The console never calls a mutating ecs.World method and is never driven
// from a scheduler phase, so nothing it does can affect StateHash:
// spec.md §1 places gameplay rules and debug overlays out of scope, and
// this package exists purely to let a developer query simulation state
// between ticks, not to extend it.
package console

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"lockstep/internal/ecs"
)

// Shell wraps a gopher-lua VM with three read-only globals bound against
// a *ecs.World: entities(), components(id), and field(id, component,
// name). Construct one per inspection session; Close releases the VM.
type Shell struct {
	world *ecs.World
	state *lua.LState
}

// New creates a Shell bound to world and registers its read-only API.
// The sandbox disables io/os/debug/package/require the same way the
// teacher's applySandbox does, since a console attached to a live
// simulation has no legitimate use for host file or process access.
func New(world *ecs.World) *Shell {
	s := &Shell{
		world: world,
		state: lua.NewState(),
	}
	s.sandbox()
	s.register()
	return s
}

// Close releases the underlying Lua state.
func (s *Shell) Close() {
	s.state.Close()
}

// Eval runs script and returns its single return value converted to a Go
// string for display, or an error if the script fails to parse or run.
func (s *Shell) Eval(script string) (string, error) {
	if err := s.state.DoString(script); err != nil {
		return "", fmt.Errorf("console: %w", err)
	}
	top := s.state.GetTop()
	if top == 0 {
		return "", nil
	}
	ret := s.state.Get(top)
	s.state.Pop(top)
	return ret.String(), nil
}

func (s *Shell) sandbox() {
	s.state.SetGlobal("io", lua.LNil)
	s.state.SetGlobal("os", lua.LNil)
	s.state.SetGlobal("debug", lua.LNil)
	s.state.SetGlobal("package", lua.LNil)
	s.state.SetGlobal("require", lua.LNil)
	s.state.SetGlobal("dofile", lua.LNil)
	s.state.SetGlobal("loadfile", lua.LNil)
}

func (s *Shell) register() {
	s.state.SetGlobal("entities", s.state.NewFunction(s.luaEntities))
	s.state.SetGlobal("components", s.state.NewFunction(s.luaComponents))
	s.state.SetGlobal("field", s.state.NewFunction(s.luaField))
}

// luaEntities implements entities(): returns a 1-indexed table of every
// live entity id, in the world's own ascending ActiveEntities order.
func (s *Shell) luaEntities(L *lua.LState) int {
	ids := s.world.ActiveEntities()
	table := L.NewTable()
	for i, id := range ids {
		table.RawSetInt(i+1, lua.LNumber(float64(uint32(id))))
	}
	L.Push(table)
	return 1
}

// luaComponents implements components(id): returns a 1-indexed table of
// the entity's component names in ascending lexicographic order, or nil
// if id is stale.
func (s *Shell) luaComponents(L *lua.LState) int {
	id := ecs.EntityID(L.CheckNumber(1))
	comps := s.world.Components(id)
	if comps == nil {
		L.Push(lua.LNil)
		return 1
	}
	table := L.NewTable()
	for i, c := range comps {
		table.RawSetInt(i+1, lua.LString(string(c)))
	}
	L.Push(table)
	return 1
}

// luaField implements field(id, component, name): returns the raw i32
// encoding of the named field (booleans and u8 are also stored as i32 in
// storage.Store, so this single accessor covers every scalar field type
// except f32, which GetF32 covers) or nil plus an error string if the
// entity or field does not resolve.
func (s *Shell) luaField(L *lua.LState) int {
	id := ecs.EntityID(L.CheckNumber(1))
	component := ecs.ComponentType(L.CheckString(2))
	name := L.CheckString(3)

	view := s.world.View(id)
	val, err := view.GetI32(component, name)
	if err != nil {
		if fval, ferr := view.GetF32(component, name); ferr == nil {
			L.Push(lua.LNumber(fval))
			return 1
		}
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(val))
	return 1
}

// Describe returns a human-readable dump of every live entity and its
// component/field values, for a CLI REPL's "dump" command. It reads the
// same accessors the Lua globals use and never mutates world.
func (s *Shell) Describe() string {
	out := ""
	ids := s.world.ActiveEntities()
	for _, id := range ids {
		typeName, _ := s.world.TypeName(id)
		out += fmt.Sprintf("entity %d (%s)\n", uint32(id), typeName)
		comps := s.world.Components(id)
		sort.Slice(comps, func(i, j int) bool { return comps[i] < comps[j] })
		for _, c := range comps {
			fields := s.world.ComponentFields(c)
			out += fmt.Sprintf("  %s:", c)
			view := s.world.View(id)
			for _, f := range fields {
				if v, err := view.GetI32(c, f); err == nil {
					out += fmt.Sprintf(" %s=%d", f, v)
					continue
				}
				if v, err := view.GetF32(c, f); err == nil {
					out += fmt.Sprintf(" %s=%g", f, v)
				}
			}
			out += "\n"
		}
	}
	return out
}
