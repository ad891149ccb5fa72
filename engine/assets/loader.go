package assets

import "github.com/spaghettifunk/contentbuild/engine/resources"

type Loader interface {
	Load(path string) (*resources.Resource, error)
	Unload(*resources.Resource) error
}

// Service resolves asset IDs to handles. Generated content accessors call it, so games
// and tests can pass any implementation.
type Service interface {
	// Get returns the asset without loading it.
	Get(id ID) Handle
	// GetLoad returns the asset and queues a load if it is not loaded yet.
	GetLoad(id ID) Handle
}
