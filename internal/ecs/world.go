// Package ecs ties together the entity-ID allocator, SoA component
// storage, query engine, and phased scheduler into the World orchestrator
// described in spec.md §3-§4.8, plus the entity facade (§4.8 table row 8).
package ecs

import (
	"log"
	"os"
	"sort"

	"github.com/cespare/xxhash/v2"

	"lockstep/internal/ecs/idalloc"
	"lockstep/internal/ecs/query"
	"lockstep/internal/ecs/storage"
	"lockstep/internal/fixed"
	"lockstep/internal/rng"
	"lockstep/internal/strreg"
)

// entityRecord tracks the bookkeeping World needs per live entity beyond
// what the allocator and stores hold: its type name (to know which
// components and restore hook apply) and whether it is local-only.
type entityRecord struct {
	id         EntityID
	typeName   string
	local      bool
	components map[ComponentType]bool
}

// sortedComponents returns rec's component set in ascending lexicographic
// order, the fixed per-entity component iteration order StateHash and
// Destroy rely on.
func (rec *entityRecord) sortedComponents() []ComponentType {
	names := make([]ComponentType, 0, len(rec.components))
	for c := range rec.components {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// World is the single per-process simulation instance: exactly one
// `Tick` call is ever in flight at a time (spec.md §5, not re-entrant).
type World struct {
	Config WorldConfig
	Logger *log.Logger

	IsClient bool
	IsServer bool

	allocator      *idalloc.Allocator
	localAllocator *idalloc.Allocator

	defs map[string]*EntityDef

	// records is keyed by the allocator slot index, not the full
	// EntityID, since an index is reused across generations and we only
	// ever need the current occupant's bookkeeping.
	records map[uint32]*entityRecord

	stores  map[ComponentType]*storage.Store
	indices *query.Indices

	scheduler *Scheduler

	Strings *strreg.Registry
	RNG     *rng.State

	frame      uint32
	simulating bool

	// guard is armed for the duration of Tick if set via SetGuard. It is
	// declared as a narrow interface rather than *determinism.Guard so
	// this package never imports internal/determinism.
	guard simGuard

	inputBuffer []InputRecord

	// prevTransform holds each transform-bearing entity's position as of
	// the start of this tick's prePhysics phase, for render-phase
	// interpolation via EntityView.InterpolatedTransform.
	prevTransform map[EntityID]fixed.Vec2
}

// NewWorld constructs a World with the given config, PRNG seed, and host
// role. isClient/isServer may both be true (listen-server topology).
func NewWorld(cfg WorldConfig, seed uint32, isClient, isServer bool) *World {
	w := &World{
		Config:         cfg,
		Logger:         log.New(os.Stderr, "lockstep: ", log.LstdFlags),
		IsClient:       isClient,
		IsServer:       isServer,
		allocator:      idalloc.NewAllocator(cfg.EntityCeiling, false),
		localAllocator: idalloc.NewAllocator(cfg.LocalEntityCeiling, true),
		defs:           make(map[string]*EntityDef),
		records:        make(map[uint32]*entityRecord),
		stores:         make(map[ComponentType]*storage.Store),
		indices:        query.NewIndices(),
		scheduler:      NewScheduler(),
		Strings:        strreg.New(),
		RNG:            rng.New(seed),
		prevTransform:  make(map[EntityID]fixed.Vec2),
	}
	return w
}

// Scheduler exposes the world's system scheduler for registration.
func (w *World) Scheduler() *Scheduler { return w.scheduler }

// Frame returns the frame number set by the most recent Tick call.
func (w *World) Frame() uint32 { return w.frame }

// Simulating reports whether a Tick is currently executing its
// simulation phases (input through postPhysics). The determinism guard
// does not read it; Tick installs and uninstalls an attached guard
// around the same span.
func (w *World) Simulating() bool { return w.simulating }

// simGuard is the subset of *determinism.Guard's lifecycle World needs.
// Kept as a local interface so ecs never imports internal/determinism.
type simGuard interface {
	Install()
	Uninstall()
}

// SetGuard attaches an optional determinism guard: Tick installs it for
// the duration of the phases it runs and uninstalls it once simulating
// goes false again. Pass nil to detach.
func (w *World) SetGuard(g simGuard) { w.guard = g }

// RegisterEntityDef adds def to the type registry. Registering the same
// name twice replaces the previous definition.
func (w *World) RegisterEntityDef(def EntityDef) error {
	if def.Name == "" {
		return &Error{Kind: KindUnknownEntityType, Message: "entity definition must have a non-empty name"}
	}
	for _, c := range def.Components {
		if _, ok := w.stores[c.Name]; !ok {
			w.stores[c.Name] = storage.New(c, w.storeCeiling(def.LocalOnly))
		}
	}
	copied := def
	w.defs[def.Name] = &copied
	return nil
}

func (w *World) storeCeiling(local bool) uint32 {
	if local {
		return w.Config.LocalEntityCeiling
	}
	return w.Config.EntityCeiling
}

// Spawn creates a new entity of the named type, adding every component the
// EntityDef declares and indexing it by type and component. Returns
// ErrUnknownEntityType if typeName was never registered, or
// ErrCapacityExceeded if the relevant allocator is exhausted.
func (w *World) Spawn(typeName string) (EntityID, error) {
	def, ok := w.defs[typeName]
	if !ok {
		return 0, unknownEntityType(typeName)
	}

	alloc := w.allocator
	if def.LocalOnly {
		alloc = w.localAllocator
	}
	id, err := alloc.Allocate()
	if err != nil {
		return 0, capacityExceeded()
	}

	index := id.Index()
	rec := &entityRecord{id: id, typeName: typeName, local: def.LocalOnly, components: make(map[ComponentType]bool)}
	w.records[w.recordKey(id)] = rec
	w.indices.AddType(typeName, id)
	for _, c := range def.Components {
		w.stores[c.Name].Add(index)
		w.indices.AddComponent(c.Name, id)
		rec.components[c.Name] = true
	}
	return id, nil
}

// AddComponent attaches component c to an already-live entity. If no
// Store exists yet for c.Name (no registered EntityDef declares it), one
// is created from c. Returns ErrInvalidEntityID for a stale id and
// ErrDuplicateComponent if the entity already carries c.
func (w *World) AddComponent(id EntityID, c ComponentDef) error {
	if !w.IsEntityValid(id) {
		return invalidEntityID(id)
	}
	rec := w.records[w.recordKey(id)]
	if rec.components[c.Name] {
		return duplicateComponent(id, c.Name)
	}
	store, ok := w.stores[c.Name]
	if !ok {
		store = storage.New(c, w.storeCeiling(rec.local))
		w.stores[c.Name] = store
	}
	store.Add(id.Index())
	w.indices.AddComponent(c.Name, id)
	rec.components[c.Name] = true
	return nil
}

// RemoveComponent detaches component c from a live entity. Returns
// ErrComponentAbsent if the entity doesn't carry c.
func (w *World) RemoveComponent(id EntityID, c ComponentType) error {
	if !w.IsEntityValid(id) {
		return invalidEntityID(id)
	}
	rec := w.records[w.recordKey(id)]
	if !rec.components[c] {
		return componentAbsent(id, c)
	}
	w.stores[c].Remove(id.Index())
	w.indices.RemoveComponent(c, id)
	delete(rec.components, c)
	return nil
}

// recordKey disambiguates the local and global allocators' overlapping
// index ranges, since a local-only id and a global id can share the same
// low 19 bits but never the same IsLocal() marker bit.
func (w *World) recordKey(id EntityID) uint32 {
	key := id.Index()
	if id.IsLocal() {
		key |= 1 << 31
	}
	return key
}

// Destroy frees id's allocator slot and removes it from every index and
// component store it belonged to. A stale or already-destroyed id is a
// silent no-op, matching the allocator's Free semantics.
func (w *World) Destroy(id EntityID) error {
	if !w.IsEntityValid(id) {
		return nil
	}
	rec := w.records[w.recordKey(id)]
	def := w.defs[rec.typeName]
	index := id.Index()

	for _, c := range rec.sortedComponents() {
		w.stores[c].Remove(index)
		w.indices.RemoveComponent(c, id)
	}
	w.indices.RemoveType(rec.typeName, id)
	delete(w.records, w.recordKey(id))
	delete(w.prevTransform, id)

	if def.LocalOnly {
		w.localAllocator.Free(id)
	} else {
		w.allocator.Free(id)
	}
	return nil
}

// IsEntityValid reports whether id refers to a currently live entity.
func (w *World) IsEntityValid(id EntityID) bool {
	if id.IsLocal() {
		return w.localAllocator.IsValid(id)
	}
	return w.allocator.IsValid(id)
}

// TypeName returns the registered entity-type name for a live id.
func (w *World) TypeName(id EntityID) (string, bool) {
	rec, ok := w.records[w.recordKey(id)]
	if !ok {
		return "", false
	}
	return rec.typeName, true
}

// HasComponent reports whether id's live entity carries component c.
func (w *World) HasComponent(id EntityID, c ComponentType) bool {
	if !w.IsEntityValid(id) {
		return false
	}
	store, ok := w.stores[c]
	if !ok {
		return false
	}
	return store.Has(id.Index())
}

// Components returns the live entity's component set in ascending
// lexicographic order. Used by internal/console for read-only
// inspection; simulation code should prefer HasComponent/EntityView.
// A stale id yields nil.
func (w *World) Components(id EntityID) []ComponentType {
	if !w.IsEntityValid(id) {
		return nil
	}
	rec, ok := w.records[w.recordKey(id)]
	if !ok {
		return nil
	}
	return rec.sortedComponents()
}

// ComponentFields returns the declared field names of component c, found
// by scanning registered entity defs for the first one that declares it.
// Used by internal/console; simulation code knows its own schemas ahead
// of time and has no need for this lookup.
func (w *World) ComponentFields(c ComponentType) []string {
	for _, def := range w.defs {
		for _, cd := range def.Components {
			if cd.Name == c {
				return cd.FieldNames()
			}
		}
	}
	return nil
}

// ActiveEntities returns every currently live synchronized entity id, in
// ascending order (per spec.md §4.8 StateHash iteration order and §4.5's
// "getAllEntities" deterministic-order guarantee).
func (w *World) ActiveEntities() []EntityID {
	out := make([]EntityID, 0, len(w.records))
	for _, rec := range w.records {
		if rec.local {
			continue
		}
		out = append(out, rec.id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetClientEntity records which entity belongs to clientID, for input
// routing via the clientId index.
func (w *World) SetClientEntity(clientID ClientID, id EntityID) {
	w.indices.SetClient(uint32(clientID), id)
}

// ClientEntity is the O(1) clientId -> entity lookup. A client whose
// entity has since been destroyed does not resolve.
func (w *World) ClientEntity(clientID ClientID) (EntityID, bool) {
	id, ok := w.indices.ByClient(uint32(clientID))
	if !ok || !w.IsEntityValid(id) {
		return 0, false
	}
	return id, true
}

// Query returns an iterator over live entities of type t that also carry
// every component listed, snapshotting matching ids at call time.
func (w *World) Query(t string, components ...ComponentType) *query.Iterator {
	return w.indices.Query(t, components...)
}

// ByComponents returns an iterator over live entities carrying every
// listed component, regardless of type.
func (w *World) ByComponents(components ...ComponentType) *query.Iterator {
	return w.indices.ByComponents(components...)
}

// Tick advances the world by one frame, implementing the five-step
// pipeline of spec.md §4.8: route inputs, run input/update/prePhysics/
// physics/postPhysics, then render if this host is a client.
func (w *World) Tick(frame uint32, inputs []InputRecord) {
	w.frame = frame
	w.routeInputs(inputs)

	w.simulating = true
	if w.guard != nil {
		w.guard.Install()
	}
	w.scheduler.RunPhase(PhaseInput, w, w.IsClient, w.IsServer)
	w.scheduler.RunPhase(PhaseUpdate, w, w.IsClient, w.IsServer)
	w.capturePrevTransforms()
	w.scheduler.RunPhase(PhasePrePhysics, w, w.IsClient, w.IsServer)
	w.scheduler.RunPhase(PhasePhysics, w, w.IsClient, w.IsServer)
	w.scheduler.RunPhase(PhasePostPhysics, w, w.IsClient, w.IsServer)
	if w.guard != nil {
		w.guard.Uninstall()
	}
	w.simulating = false

	if w.IsClient {
		w.scheduler.RunPhase(PhaseRender, w, w.IsClient, w.IsServer)
	}

	w.inputBuffer = w.inputBuffer[:0]
}

// routeInputs sorts by (sequence, clientId) for deterministic application
// order (spec.md §5) and stores the buffer for input-phase systems to
// consume via Inputs(); inputs whose client has no live entity are kept
// but simply won't resolve via ClientEntity.
func (w *World) routeInputs(inputs []InputRecord) {
	w.inputBuffer = append(w.inputBuffer[:0], inputs...)
	sort.SliceStable(w.inputBuffer, func(i, j int) bool {
		a, b := w.inputBuffer[i], w.inputBuffer[j]
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ClientID < b.ClientID
	})
}

// Inputs returns this tick's routed input buffer, ascending by (sequence,
// clientId), for input-phase systems to consume.
func (w *World) Inputs() []InputRecord { return w.inputBuffer }

func (w *World) capturePrevTransforms() {
	store, ok := w.stores[ComponentTransform2D]
	if !ok {
		return
	}
	for _, rec := range w.records {
		if rec.local {
			continue
		}
		index := rec.id.Index()
		if store.Has(index) {
			w.prevTransform[rec.id] = w.transformPosition(index)
		}
	}
}

// StateHash combines, in ascending entity-id order, each synchronized
// entity's id and the raw i32 slot contents of every synchronized
// component's fields (in ascending lexicographic field-name order) into
// a 32-bit digest. Two peers with equal synchronized state produce equal
// output (spec.md §4.8).
//
// cespare/xxhash/v2 implements only the 64-bit variant; the low 32 bits of
// that seed-0 digest are returned, which is not the same value an
// xxhash32 digest would give (see DESIGN.md for the Open Question
// resolution).
func (w *World) StateHash() uint32 {
	h := xxhash.New()
	for _, id := range w.ActiveEntities() {
		writeU32(h, uint32(id))
		rec := w.records[w.recordKey(id)]
		index := id.Index()
		for _, c := range rec.sortedComponents() {
			store := w.stores[c]
			if !store.Def.Sync {
				continue
			}
			for _, field := range store.SyncFieldNames() {
				writeU32(h, uint32(store.GetI32(index, field)))
			}
		}
	}
	return uint32(h.Sum64())
}

func writeU32(h *xxhash.Digest, v uint32) {
	_, _ = h.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}
