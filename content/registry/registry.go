// Package registry holds the in-memory model of one content build: a descriptor per
// discovered file, grouped by namespace in the order namespaces were first seen.
package registry

import (
	"fmt"

	"github.com/spaghettifunk/contentbuild/content/classify"
)

// Descriptor identifies one content file.
type Descriptor struct {
	ID         uint32
	SourcePath string
	// LookupPath is where the runtime loads the asset from. It differs from SourcePath
	// only for compiled assets.
	LookupPath string
	Namespace  string
	ClassName  string
	// Segments are the namespace segments of the source directory.
	Segments []string
	Type     classify.Type
	Wrapper  string
}

// Namespace is a named, ordered group of descriptors.
type Namespace struct {
	Name        string
	Descriptors []*Descriptor
}

// Registry groups descriptors by namespace. Namespaces keep first-occurrence order and
// descriptors keep insertion order inside their namespace. Nothing is sorted, merged or
// deduplicated.
type Registry struct {
	namespaces []*Namespace
	index      map[string]*Namespace
	all        []*Descriptor
}

func New() *Registry {
	return &Registry{index: make(map[string]*Namespace)}
}

// Add appends d to its namespace, creating the namespace on first use.
func (r *Registry) Add(d *Descriptor) {
	ns, ok := r.index[d.Namespace]
	if !ok {
		ns = &Namespace{Name: d.Namespace}
		r.index[d.Namespace] = ns
		r.namespaces = append(r.namespaces, ns)
	}
	ns.Descriptors = append(ns.Descriptors, d)
	r.all = append(r.all, d)
}

// Namespaces returns the namespaces in first-occurrence order.
func (r *Registry) Namespaces() []*Namespace {
	return r.namespaces
}

// Namespace looks a namespace up by name.
func (r *Registry) Namespace(name string) (*Namespace, bool) {
	ns, ok := r.index[name]
	return ns, ok
}

// Descriptors returns every descriptor in insertion order, which is ID order when the
// registry was filled by a Builder.
func (r *Registry) Descriptors() []*Descriptor {
	return r.all
}

func (r *Registry) Len() int {
	return len(r.all)
}

// Collision reports descriptors that share a lookup path.
type Collision struct {
	LookupPath string
	IDs        []uint32
}

func (c Collision) String() string {
	return fmt.Sprintf("lookup path %q shared by asset ids %v", c.LookupPath, c.IDs)
}

// Collisions lists every lookup path used by more than one descriptor, ordered by the
// first descriptor that used it.
func (r *Registry) Collisions() []Collision {
	byPath := make(map[string][]uint32, len(r.all))
	var order []string
	for _, d := range r.all {
		if _, seen := byPath[d.LookupPath]; !seen {
			order = append(order, d.LookupPath)
		}
		byPath[d.LookupPath] = append(byPath[d.LookupPath], d.ID)
	}

	var out []Collision
	for _, p := range order {
		if ids := byPath[p]; len(ids) > 1 {
			out = append(out, Collision{LookupPath: p, IDs: ids})
		}
	}
	return out
}
