package ecs

import (
	"fmt"
)

// ErrorKind tags an Error with one of the taxonomy entries from the
// simulation core's error handling design. Callers should compare against
// the sentinel Err* values below via errors.Is, not against ErrorKind
// directly.
type ErrorKind string

const (
	KindCapacityExceeded         ErrorKind = "capacity_exceeded"
	KindUnknownEntityType        ErrorKind = "unknown_entity_type"
	KindComponentAbsent          ErrorKind = "component_absent"
	KindDuplicateComponent       ErrorKind = "duplicate_component"
	KindInvalidEntityID          ErrorKind = "invalid_entity_id"
	KindInvalidSnapshot          ErrorKind = "invalid_snapshot"
	KindRollbackWindowExceeded   ErrorKind = "rollback_window_exceeded"
	KindNonDeterministicFunction ErrorKind = "non_deterministic_function_called"
)

// Error is the tagged error type returned by the ECS runtime. It carries
// enough context (entity, component, kind) for a caller to both log a
// useful message and branch on Kind without string matching.
type Error struct {
	Kind      ErrorKind
	Entity    EntityID
	Component ComponentType
	Message   string
}

func (e *Error) Error() string {
	switch {
	case e.Entity != 0 && e.Component != "":
		return fmt.Sprintf("ecs: %s: %s (entity=%d component=%s)", e.Kind, e.Message, e.Entity, e.Component)
	case e.Entity != 0:
		return fmt.Sprintf("ecs: %s: %s (entity=%d)", e.Kind, e.Message, e.Entity)
	default:
		return fmt.Sprintf("ecs: %s: %s", e.Kind, e.Message)
	}
}

// Is makes Error compatible with errors.Is against the sentinel values
// below: two *Error values match if their Kind matches.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel errors, one per taxonomy entry, for errors.Is comparisons.
var (
	ErrCapacityExceeded = &Error{Kind: KindCapacityExceeded, Message: "entity allocator at ceiling"}
	ErrUnknownEntityType = &Error{Kind: KindUnknownEntityType, Message: "entity type not registered"}
	ErrComponentAbsent   = &Error{Kind: KindComponentAbsent, Message: "entity lacks requested component"}
	ErrDuplicateComponent = &Error{Kind: KindDuplicateComponent, Message: "component already present on entity"}
	ErrInvalidEntityID   = &Error{Kind: KindInvalidEntityID, Message: "stale or unknown entity id"}
	ErrInvalidSnapshot   = &Error{Kind: KindInvalidSnapshot, Message: "malformed or version-mismatched snapshot bytes"}
	ErrRollbackWindowExceeded = &Error{Kind: KindRollbackWindowExceeded, Message: "required snapshot frame is older than the rollback window"}
)

func capacityExceeded() error {
	return &Error{Kind: KindCapacityExceeded, Message: "entity allocator at ceiling"}
}

func unknownEntityType(name string) error {
	return &Error{Kind: KindUnknownEntityType, Message: fmt.Sprintf("entity type %q not registered", name)}
}

func componentAbsent(e EntityID, c ComponentType) error {
	return &Error{Kind: KindComponentAbsent, Entity: e, Component: c, Message: "component not present"}
}

func duplicateComponent(e EntityID, c ComponentType) error {
	return &Error{Kind: KindDuplicateComponent, Entity: e, Component: c, Message: "component already present"}
}

func invalidEntityID(e EntityID) error {
	return &Error{Kind: KindInvalidEntityID, Entity: e, Message: "generation mismatch or unknown index"}
}

func invalidSnapshot(detail string) error {
	return &Error{Kind: KindInvalidSnapshot, Message: "malformed or version-mismatched snapshot: " + detail}
}

func rollbackWindowExceeded(frame uint32) error {
	return &Error{Kind: KindRollbackWindowExceeded, Message: fmt.Sprintf("frame %d is older than the rollback window", frame)}
}
