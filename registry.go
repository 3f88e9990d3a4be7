package thinkspaces

import (
	"slices"
	"strings"

	"github.com/alphadose/haxmap"
)

// Registry maps lowercase provider names to their factories.
//
// A Registry is populated once at process start and read concurrently
// afterwards; it is passed explicitly to whatever needs provider resolution
// rather than living in a package-level variable.
type Registry struct {
	factories *haxmap.Map[string, Factory]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: haxmap.New[string, Factory]()}
}

// Register adds a factory under the lowercase form of name. A second
// registration under the same name fails with *ErrDuplicateProvider and
// leaves the first in place.
func (r *Registry) Register(name string, f Factory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return &ErrInvalidRequest{Field: "provider", Message: "name must not be empty"}
	}
	if f == nil {
		return &ErrInvalidRequest{Field: "provider", Message: "factory must not be nil"}
	}
	if _, loaded := r.factories.GetOrSet(key, f); loaded {
		return &ErrDuplicateProvider{Name: key}
	}
	return nil
}

// Get returns the factory registered under name, ignoring case.
func (r *Registry) Get(name string) (Factory, bool) {
	return r.factories.Get(strings.ToLower(strings.TrimSpace(name)))
}

// Create looks up name and constructs a provider for model.
// Unregistered names yield *ErrProviderUnavailable; construction failures
// are returned unchanged.
func (r *Registry) Create(name, model string) (Provider, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, &ErrProviderUnavailable{Name: name, Available: r.Available()}
	}
	return f(model)
}

// Available returns the registered names in sorted order.
func (r *Registry) Available() []string {
	names := make([]string, 0, r.factories.Len())
	r.factories.ForEach(func(name string, _ Factory) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
