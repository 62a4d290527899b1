package collect

import (
	"fmt"

	"github.com/ridge/strata/fieldpath"
)

// Build creates an object tree from dotted leaf paths. Every path becomes a
// leaf created by the leaf function, and every ancestor of a path becomes
// an intermediate object. Siblings keep the order of the paths.
//
// For paths "a", "b.c" and "b.d" the result is {a: leaf("a"), b: {c:
// leaf("b.c"), d: leaf("b.d")}}.
func Build[R any](paths []string, leaf func(path string) Input) (*Object[R], error) {
	root := NewObject[R]()
	for _, path := range paths {
		if err := fieldpath.Validate(path); err != nil {
			return nil, err
		}
		parent := root
		start := 0
		for prefix := range fieldpath.Prefixes(path) {
			name := prefix[start:]
			start = len(prefix) + 1
			existing, exists := parent.Child(name)
			if prefix == path {
				if exists {
					return nil, fmt.Errorf("path %s is listed twice or also used as an object", path)
				}
				parent.Add(name, leaf(path))
				break
			}
			if !exists {
				obj := NewObject[R]()
				parent.Add(name, obj)
				parent = obj
				continue
			}
			obj, ok := existing.(*Object[R])
			if !ok {
				return nil, fmt.Errorf("path %s is below leaf %s", path, prefix)
			}
			parent = obj
		}
	}
	return root, nil
}

// Lookup follows a dotted path through nested children, as in obj.a.b.
// An invalid path, including the empty one, finds nothing.
func Lookup(root Input, path string) (Input, bool) {
	if fieldpath.Validate(path) != nil {
		return nil, false
	}
	cur := root
	for segment := range fieldpath.Segments(path) {
		n, ok := cur.(Nestable)
		if !ok {
			return nil, false
		}
		if cur, ok = n.Child(segment); !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}
