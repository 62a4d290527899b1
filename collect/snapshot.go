package collect

import (
	"bytes"
	"encoding/json"
)

// Snapshot is the immutable value of an Object for one row. Nested objects
// appear as nested Snapshots.
type Snapshot struct {
	names  []string
	values map[string]any
}

// Len returns the number of entries
func (s Snapshot) Len() int {
	return len(s.names)
}

// Names returns the entry names in order
func (s Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

// Get returns the named value. A present entry with a nil value is returned
// with true.
func (s Snapshot) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Map returns a copy of the snapshot as plain maps, nested snapshots
// converted recursively
func (s Snapshot) Map() map[string]any {
	res := make(map[string]any, len(s.names))
	for _, name := range s.names {
		v := s.values[name]
		if sub, ok := v.(Snapshot); ok {
			v = sub.Map()
		}
		res[name] = v
	}
	return res
}

// MarshalJSON encodes the snapshot as a JSON object with entries in order
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
