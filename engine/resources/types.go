package resources

// Resource is what a loader produces for one asset file.
type Resource struct {
	// Name is the file name the resource was read from.
	Name string
	// FullPath is the lookup path from the manifest.
	FullPath string
	// DataSize is the size of the file on disk in bytes.
	DataSize uint64
	// Data is loader specific: []uint32 for shaders, image.Image for textures, []byte
	// otherwise.
	Data interface{}
}
