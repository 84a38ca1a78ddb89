package imageprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
)

const (
	// DefaultMaxPixels bounds the decoded size of a single image.
	DefaultMaxPixels = 40_000_000
	maxPixelsParam   = "maxPixels"
)

// ErrImageTooLarge is returned before decoding an image whose pixel count exceeds the limit.
var ErrImageTooLarge = errors.New("image exceeds the pixel limit")

func maxPixelsFromParams(params map[string]any) (int, error) {
	maxPixels := GetIntParam(params, maxPixelsParam, DefaultMaxPixels)
	if maxPixels <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", maxPixelsParam, maxPixels)
	}
	return maxPixels, nil
}

func checkPixels(width, height, maxPixels int) error {
	if int64(width)*int64(height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, width, height, maxPixels)
	}
	return nil
}

// checkEncodedSize reads only the image header and checks its dimensions.
func checkEncodedSize(imageData []byte, maxPixels int) error {
	config, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to read image header: %w", err)
	}
	return checkPixels(config.Width, config.Height, maxPixels)
}
