package value

// UserObject is the spec's "bag of symbol -> value" composite kind, plus a
// base back-reference and a name symbol (spec §3.1).
type UserObject struct {
	Name  string
	base  Value
	props map[string]Value
	order []string // preserves declaration order for PropertyNames/stringify
	// security holds optional per-name read/write flags (spec §4.A
	// "security (read/write flags keyed by an object holder)").
	security map[string]secFlags
}

type secFlags struct{ readOK, writeOK bool }

func NewUserObject(name string, base Value) *UserObject {
	return &UserObject{Name: name, base: base, props: make(map[string]Value)}
}

func (u *UserObject) Kind() Kind { return KUserObject }
func (u *UserObject) Base() Value { return u.base }

func (u *UserObject) Hash() uint64 {
	return hashBytes(u.Name) ^ uint64(len(u.props))
}

func (u *UserObject) ToString() string {
	if u.Name != "" {
		return "#<" + u.Name + ">"
	}
	return "#<object>"
}

func (u *UserObject) GetProperty(name string) (Value, bool) {
	if f, ok := u.security[name]; ok && !f.readOK {
		return Null, false
	}
	v, ok := u.props[name]
	return v, ok
}

func (u *UserObject) SetProperty(name string, v Value) error {
	if f, ok := u.security[name]; ok && !f.writeOK {
		return &ObjectSecurityError{Name: name}
	}
	if _, exists := u.props[name]; !exists {
		u.order = append(u.order, name)
	}
	u.props[name] = v
	return nil
}

func (u *UserObject) HasProperty(name string) bool {
	_, ok := u.props[name]
	return ok
}

func (u *UserObject) PropertyNames() []string {
	return append([]string(nil), u.order...)
}

func (u *UserObject) DeepEqual(other Value, seen map[Object]bool) bool {
	o, ok := other.Obj.(*UserObject)
	if !ok || o.Name != u.Name || len(o.props) != len(u.props) {
		return false
	}
	if seen[u] {
		return true
	}
	seen[u] = true
	for k, v := range u.props {
		ov, ok := o.props[k]
		if !ok || !v.DeepEqual(ov) {
			return false
		}
	}
	return true
}

// Protect sets the read/write security flags for name (spec §4.A); objects
// default to fully readable/writable until Protect is called.
func (u *UserObject) Protect(name string, readOK, writeOK bool) {
	if u.security == nil {
		u.security = make(map[string]secFlags)
	}
	u.security[name] = secFlags{readOK: readOK, writeOK: writeOK}
}

// ObjectSecurityError is raised by SetProperty when a write is denied by a
// Protect()-installed flag (spec §7 runtime taxonomy: object_security_error).
type ObjectSecurityError struct{ Name string }

func (e *ObjectSecurityError) Error() string { return "cannot write protected property " + e.Name }
