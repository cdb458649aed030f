package value

// Str is the boxed String object: an immutable UTF-8 byte sequence that
// compares by content, not identity (spec §3.1).
type Str struct {
	Text string
}

func NewString(s string) Value {
	return Value{Kind: KString, Obj: &Str{Text: s}}
}

func (s *Str) Kind() Kind     { return KString }
func (s *Str) ToString() string { return s.Text }
func (s *Str) Hash() uint64   { return hashBytes(s.Text) }

func (s *Str) DeepEqual(other Value, _ map[Object]bool) bool {
	o, ok := other.Obj.(*Str)
	return ok && o.Text == s.Text
}

func (s *Str) GetProperty(name string) (Value, bool) {
	switch name {
	case "length":
		return Int64(int64(len(s.Text))), true
	}
	return Null, false
}

func (s *Str) SetProperty(string, Value) error { return errImmutable("String") }
func (s *Str) HasProperty(name string) bool     { _, ok := s.GetProperty(name); return ok }
func (s *Str) PropertyNames() []string          { return []string{"length"} }
func (s *Str) Base() Value                      { return Null }

func hashBytes(s string) uint64 {
	// FNV-1a: a simple, agreement-preserving hash for content-equal
	// strings (the dictionary layer uses the process-seeded SipHash
	// variant; this one only has to satisfy Hash/CompareEqual agreement
	// for in-VM deepEqual/hash use, e.g. as a UserObject property key).
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// ByteArray is the mutable sibling of Str.
type ByteArray struct {
	Bytes []byte
}

func NewByteArray(b []byte) Value {
	return Value{Kind: KByteArray, Obj: &ByteArray{Bytes: b}}
}

func (b *ByteArray) Kind() Kind       { return KByteArray }
func (b *ByteArray) ToString() string { return string(b.Bytes) }
func (b *ByteArray) Hash() uint64     { return hashBytes(string(b.Bytes)) }
func (b *ByteArray) DeepEqual(other Value, _ map[Object]bool) bool {
	o, ok := other.Obj.(*ByteArray)
	return ok && string(o.Bytes) == string(b.Bytes)
}
func (b *ByteArray) GetProperty(name string) (Value, bool) {
	if name == "length" {
		return Int64(int64(len(b.Bytes))), true
	}
	return Null, false
}
func (b *ByteArray) SetProperty(string, Value) error { return errImmutable("ByteArray index") }
func (b *ByteArray) HasProperty(name string) bool     { return name == "length" }
func (b *ByteArray) PropertyNames() []string          { return []string{"length"} }
func (b *ByteArray) Base() Value                      { return Null }

func errImmutable(what string) error {
	return &PropertyError{Message: what + " is immutable"}
}

// PropertyError is the boxed-value error raised by SetProperty on a kind
// that does not support writes (spec §7: "property_error").
type PropertyError struct{ Message string }

func (e *PropertyError) Error() string { return e.Message }
