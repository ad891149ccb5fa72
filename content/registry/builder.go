package registry

import (
	"github.com/spaghettifunk/contentbuild/content/classify"
	"github.com/spaghettifunk/contentbuild/content/naming"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

// Builder turns discovered paths into descriptors. Every call to Add allocates the next
// ID before the file is classified, so IDs follow discovery order.
type Builder struct {
	classifier *classify.Classifier
	rootTokens []string
	ids        *core.IDAllocator
	registry   *Registry
	misses     int
}

func NewBuilder(classifier *classify.Classifier, rootTokens []string) *Builder {
	return &Builder{
		classifier: classifier,
		rootTokens: rootTokens,
		ids:        core.NewIDAllocator(),
		registry:   New(),
	}
}

// Add registers one discovered file and returns its descriptor.
func (b *Builder) Add(sourcePath string) *Descriptor {
	id := b.ids.Next()

	name := naming.Resolve(sourcePath, b.rootTokens)
	cl := b.classifier.Classify(name.Ext)
	if !cl.Matched {
		b.misses++
		core.LogDebug("no classification rule for %s, filed under %s", name.Normalized, cl.Namespace)
	}

	d := &Descriptor{
		ID:         id,
		SourcePath: sourcePath,
		LookupPath: b.classifier.LookupPath(cl, name),
		Namespace:  cl.Namespace,
		ClassName:  name.ClassName,
		Segments:   name.Segments,
		Type:       cl.Type,
		Wrapper:    cl.Wrapper,
	}
	b.registry.Add(d)
	return d
}

// AddAll registers paths in the order given.
func (b *Builder) AddAll(paths []string) {
	for _, p := range paths {
		b.Add(p)
	}
}

// Registry returns the model built so far.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Misses is the number of files that fell through to the unknown bucket.
func (b *Builder) Misses() int {
	return b.misses
}
