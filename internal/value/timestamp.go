package value

import "smile/internal/timestamp"

// TimestampObj boxes an internal/timestamp.Timestamp as a runtime value
// (spec §3.1, §4.M), exposing its seconds/nanos pair as read-only
// properties.
type TimestampObj struct {
	T timestamp.Timestamp
}

func NewTimestamp(t timestamp.Timestamp) Value {
	return Value{Kind: KTimestamp, Obj: &TimestampObj{T: t}}
}

func (t *TimestampObj) Kind() Kind       { return KTimestamp }
func (t *TimestampObj) ToString() string { return t.T.ToString() }
func (t *TimestampObj) Hash() uint64     { return uint64(t.T.Seconds)<<32 ^ uint64(t.T.Nanos) }
func (t *TimestampObj) Base() Value      { return Null }
func (t *TimestampObj) SetProperty(string, Value) error { return errImmutable("Timestamp") }
func (t *TimestampObj) HasProperty(name string) bool {
	return name == "seconds" || name == "nanos"
}
func (t *TimestampObj) PropertyNames() []string { return []string{"seconds", "nanos"} }
func (t *TimestampObj) GetProperty(name string) (Value, bool) {
	switch name {
	case "seconds":
		return Int64(t.T.Seconds), true
	case "nanos":
		return Int64(t.T.Nanos), true
	}
	return Null, false
}
func (t *TimestampObj) DeepEqual(other Value, _ map[Object]bool) bool {
	o, ok := other.Obj.(*TimestampObj)
	return ok && o.T == t.T
}
