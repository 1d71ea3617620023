package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gen2brain/webp"
)

var ErrNotImage = errors.New("unrecognised image data")

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// ImageConfig decodes only the image header and reports its format and dimensions.
func ImageConfig(data []byte) (image.Config, string, error) {
	if isWebP(data) {
		cfg, err := webp.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return image.Config{}, "", fmt.Errorf("%w: webp: %v", ErrNotImage, err)
		}
		return cfg, "webp", nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return cfg, format, nil
}
