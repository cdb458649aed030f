package value

import "fmt"

// Caller is implemented by anything that can sit behind a KFunction value:
// a compiled user function closure (internal/vm.Closure) or a native
// external function (internal/builtin.External). Keeping this as a thin
// interface here — rather than importing the vm/builtin packages — avoids
// a dependency cycle, since those packages both need to produce and
// consume value.Value.
type Caller interface {
	Object
	// Call invokes the function with the given argument window. argv is
	// never retained past the call (the VM copies arguments into fresh
	// closure slots per spec §4.J).
	Call(argv []Value) (Value, error)
	// Arity reports the function's declared argument-count bounds; max<0
	// means unbounded (a rest parameter).
	Arity() (min, max int)
}

// NewFunction boxes a Caller as a Value of kind Function.
func NewFunction(c Caller) Value {
	return Value{Kind: KFunction, Obj: c}
}

// Handle wraps an opaque host resource (regex, regex-match, db connection,
// socket, ...): a kind symbol plus a v-table of named operations it
// exposes to the registry (spec §3.1 "Handles").
type Handle struct {
	HandleKind string
	Resource   interface{}
	Ops        map[string]func(args []Value) (Value, error)
	closeFn    func() error
}

func NewHandle(kind string, resource interface{}, ops map[string]func([]Value) (Value, error), closeFn func() error) Value {
	return Value{Kind: KHandle, Obj: &Handle{HandleKind: kind, Resource: resource, Ops: ops, closeFn: closeFn}}
}

func (h *Handle) Kind() Kind       { return KHandle }
func (h *Handle) ToString() string { return "#<" + h.HandleKind + ">" }
func (h *Handle) Hash() uint64     { return HashPointerValue(h) }
func (h *Handle) Base() Value      { return Null }
func (h *Handle) SetProperty(string, Value) error { return errImmutable("Handle") }
func (h *Handle) HasProperty(string) bool          { return false }
func (h *Handle) PropertyNames() []string           { return nil }
func (h *Handle) GetProperty(string) (Value, bool)  { return Null, false }

func (h *Handle) DeepEqual(other Value, _ map[Object]bool) bool {
	o, ok := other.Obj.(*Handle)
	return ok && o == h
}

// Invoke dispatches a named operation on the handle (e.g. "matches?" on a
// regex handle, "query" on a sql handle).
func (h *Handle) Invoke(op string, args []Value) (Value, error) {
	fn, ok := h.Ops[op]
	if !ok {
		return Null, &PropertyError{Message: "handle " + h.HandleKind + " has no operation " + op}
	}
	return fn(args)
}

// Close releases the underlying resource, if the handle registered one.
func (h *Handle) Close() error {
	if h.closeFn == nil {
		return nil
	}
	return h.closeFn()
}

// HashPointerValue derives a stable hash from an Object's identity. Used by
// kinds (Handle, Function) whose equality is pointer identity.
func HashPointerValue(o Object) uint64 {
	return hashBytes(fmt.Sprintf("%p", o))
}
