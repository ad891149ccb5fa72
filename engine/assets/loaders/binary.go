package loaders

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/contentbuild/engine/resources"
)

// BinaryLoader reads a file into memory as is.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string) (*resources.Resource, error) {
	buf, err := readAll(path)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (bl *BinaryLoader) Unload(*resources.Resource) error {
	return nil
}

func readAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%s: file is empty", path)
	}
	return buf, nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
