package loaders

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/contentbuild/engine/resources"
)

// TextureLoader decodes PNG, JPEG, BMP, TIFF and WebP images.
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string) (*resources.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return &resources.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(info.Size()),
		Data:     img,
	}, nil
}

func (tl *TextureLoader) Unload(*resources.Resource) error {
	return nil
}
