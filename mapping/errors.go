package mapping

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOperation is returned for queries issued directly against
// the existence field. It indicates that the query layer failed to rewrite
// a predicate.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ConfigurationError is an invalid or late change to a descriptor. A mapping
// that produced a ConfigurationError must not be installed.
type ConfigurationError struct {
	Attribute string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mapping %s: %s", e.Attribute, e.Reason)
}

// Deprecation is a warning about the use of a deprecated mapping option.
// The option still takes effect.
type Deprecation struct {
	Option      string
	Replacement string
}

// String implements fmt.Stringer
func (d Deprecation) String() string {
	return fmt.Sprintf("option %q is deprecated, use %s instead", d.Option, d.Replacement)
}
