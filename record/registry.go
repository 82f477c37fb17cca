// Plugin registry mapping a type-name string to a RecordStream
// factory, so the core never looks at the payload format directly.
//
// Grounded on systems/registry.go's SystemRegistry (metadata map with
// registration order preserved), generalized from a display-metadata
// map to a factory map returning fresh RecordStream instances.
package record

import (
	"sort"

	"github.com/pthm-cable/fieldglass/simerr"
)

// Factory constructs a fresh, unopened RecordStream.
type Factory func() RecordStream

// Registry maps type names (e.g. "csv", "json") to stream factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry pre-populated with the default
// "csv" and "json" bindings.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("csv", func() RecordStream { return NewCSVStream() })
	r.Register("json", func() RecordStream { return NewJSONStream() })
	return r
}

// Register adds or replaces the factory for a type name.
func (r *Registry) Register(typeName string, factory Factory) {
	r.factories[typeName] = factory
}

// Create resolves a type name to a fresh, unopened RecordStream and
// initializes it with config.
func (r *Registry) Create(typeName, config string) (RecordStream, error) {
	factory, ok := r.factories[typeName]
	if !ok {
		return nil, simerr.New(simerr.InvalidParameter, "record.Registry.Create", "unknown stream type: "+typeName)
	}
	stream := factory()
	if err := stream.Init(config); err != nil {
		return nil, err
	}
	return stream, nil
}

// TypeNames returns every registered type name, sorted for
// deterministic display.
func (r *Registry) TypeNames() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
