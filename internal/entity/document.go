package entity

// Document is implemented by the pointer types of all stored entities.
type Document interface {
	Key() string
	SetKey(key string)
}

// Form builds a fresh record of T stamped with the creation time.
type Form[T any] interface {
	Build(now int64) T
}

// Patch lists the top-level fields an update writes. Only the patch types of
// this package implement it.
type Patch[T any] interface {
	Fields() map[string]any
	patchOf(T)
}
