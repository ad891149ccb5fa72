package loaders

import (
	"path/filepath"

	"github.com/spaghettifunk/contentbuild/engine/resources"
)

// ModelLoader keeps FBX and OBJ files as raw bytes; mesh parsing happens on the
// renderer side.
type ModelLoader struct{}

func (ml *ModelLoader) Load(path string) (*resources.Resource, error) {
	data, err := readAll(path)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     data,
	}, nil
}

func (ml *ModelLoader) Unload(*resources.Resource) error {
	return nil
}
