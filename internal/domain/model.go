package domain

// LifecycleState is the tagged lifecycle of an entity that supports logical
// removal. It replaces a bare boolean flag so the set of states can grow
// without reinterpreting existing columns.
type LifecycleState string

const (
	StateActive  LifecycleState = "active"
	StateDeleted LifecycleState = "deleted"
)

// SoftDeletable is the capability of an entity whose removal is logical.
// Entities that do not implement it are removed physically by the
// persistence layer.
type SoftDeletable interface {
	MarkDeleted()
	MarkRestored()
	IsDeleted() bool
}
