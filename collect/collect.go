// Package collect assembles structured values row by row.
//
// A plan is a tree of inputs built once before execution. Leaves produce
// scalar values, either constant or computed from the current row. An
// Object composes named children into a map, and is an input itself, so
// objects nest. Execution drives the root with SetNextRow once per row and
// reads its Value.
//
// Whether an input needs to see rows is decided once, when it is added to
// an object, by checking whether it implements RowConsumer.
package collect

import "fmt"

// Input produces a value
type Input interface {
	Value() any
}

// RowConsumer is implemented by inputs whose value depends on the current
// row
type RowConsumer[R any] interface {
	SetNextRow(row R)
}

// Nestable is an input with named children
type Nestable interface {
	Input
	Child(name string) (Input, bool)
}

type noRow struct{}

func (noRow) String() string {
	return "<no row>"
}

func (noRow) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NoRow is the value of row-dependent inputs before the first row. It is
// distinct from nil, which is a legitimate value.
var NoRow any = noRow{}

// Constant is a leaf with a fixed value
type Constant struct {
	value any
}

// Const returns a constant leaf
func Const(v any) Constant {
	return Constant{value: v}
}

// Value implements Input
func (c Constant) Value() any {
	return c.value
}

// RowFunc is a leaf computing its value from the current row
type RowFunc[R any] struct {
	fn    func(R) any
	value any
}

// FromRow returns a leaf computing its value with fn
func FromRow[R any](fn func(R) any) *RowFunc[R] {
	return &RowFunc[R]{fn: fn, value: NoRow}
}

// SetNextRow implements RowConsumer
func (rf *RowFunc[R]) SetNextRow(row R) {
	rf.value = rf.fn(row)
}

// Value implements Input
func (rf *RowFunc[R]) Value() any {
	return rf.value
}

// Object composes named children into a Snapshot. Children are evaluated in
// the order they were added.
//
// Do not use concurrently.
type Object[R any] struct {
	names     []string
	children  map[string]Input
	consumers []RowConsumer[R] // aligned with names, nil for constant children
	started   bool
	value     any
}

// NewObject creates an object with no children
func NewObject[R any]() *Object[R] {
	return &Object[R]{children: map[string]Input{}, value: NoRow}
}

// Add registers a named child. Children must be added before the first
// row; names must be unique.
func (o *Object[R]) Add(name string, child Input) *Object[R] {
	switch {
	case name == "":
		panic("child name must not be empty")
	case child == nil:
		panic(fmt.Sprintf("child %q is nil", name))
	case o.children[name] != nil:
		panic(fmt.Sprintf("duplicate child %q", name))
	case o.started:
		panic(fmt.Sprintf("child %q added after the first row", name))
	}
	rc, _ := child.(RowConsumer[R])
	o.names = append(o.names, name)
	o.children[name] = child
	o.consumers = append(o.consumers, rc)
	return o
}

// SetNextRow advances every row-dependent child to the row, then captures
// the values of all children in a new snapshot
func (o *Object[R]) SetNextRow(row R) {
	o.started = true
	values := make(map[string]any, len(o.names))
	for i, name := range o.names {
		if rc := o.consumers[i]; rc != nil {
			rc.SetNextRow(row)
		}
		values[name] = o.children[name].Value()
	}
	o.value = Snapshot{names: o.names[:len(o.names):len(o.names)], values: values}
}

// Value returns the Snapshot for the most recent row, or NoRow if there
// were no rows yet
func (o *Object[R]) Value() any {
	return o.value
}

// Child returns the named child. A child that exists but currently has a
// nil value is returned with true.
func (o *Object[R]) Child(name string) (Input, bool) {
	child, ok := o.children[name]
	return child, ok
}

// Names returns the child names in order
func (o *Object[R]) Names() []string {
	return append([]string(nil), o.names...)
}
