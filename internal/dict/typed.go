package dict

import "smile/internal/symbol"

// Int32Dict, SymbolDict, StringDict and PointerDict are the concrete
// dictionary flavors named in the spec, each pinned to the key hash the
// spec mandates for that key kind.

type Int32Dict[V any] struct{ *Dict[int32, V] }

func NewInt32Dict[V any]() Int32Dict[V] {
	return Int32Dict[V]{New[int32, V](HashInt32)}
}

type SymbolDict[V any] struct{ *Dict[symbol.ID, V] }

func NewSymbolDict[V any]() SymbolDict[V] {
	return SymbolDict[V]{New[symbol.ID, V](func(id symbol.ID) uint64 { return HashUint32(uint32(id)) })}
}

type StringDict[V any] struct{ *Dict[string, V] }

func NewStringDict[V any]() StringDict[V] {
	return StringDict[V]{New[string, V](HashString)}
}

type PointerDict[V any] struct{ *Dict[uintptr, V] }

func NewPointerDict[V any]() PointerDict[V] {
	return PointerDict[V]{New[uintptr, V](HashPointer)}
}
