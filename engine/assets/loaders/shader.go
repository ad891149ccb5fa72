package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/contentbuild/engine/resources"
)

// SpirvMagic is the first word of every SPIR-V module.
const SpirvMagic uint32 = 0x07230203

// ShaderLoader reads a compiled SPIR-V module into little-endian words.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string) (*resources.Resource, error) {
	data, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%s: size %d is not a multiple of 4", path, len(data))
	}
	code := bytesToBytecode(data)
	if code[0] != SpirvMagic {
		return nil, fmt.Errorf("%s: not a SPIR-V module (magic %#08x)", path, code[0])
	}
	return &resources.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     code,
	}, nil
}

func (sl *ShaderLoader) Unload(*resources.Resource) error {
	return nil
}
