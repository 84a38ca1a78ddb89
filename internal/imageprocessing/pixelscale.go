package imageprocessing

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

const PixelScaleCommandName = "PixelScaleCommand"

// PixelScaleCommand shrinks a PNG to a maximum width, keeping the aspect ratio.
// Images already narrower than the width are returned unchanged.
type PixelScaleCommand struct {
	maxWidth  int
	maxPixels int
}

func NewPixelScaleCommand(params map[string]any) (Command, error) {
	if _, ok := params["width"]; !ok {
		return nil, fmt.Errorf("missing required parameter: width")
	}
	width := GetIntParam(params, "width", 0)
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}
	maxPixels, err := maxPixelsFromParams(params)
	if err != nil {
		return nil, err
	}
	return &PixelScaleCommand{maxWidth: width, maxPixels: maxPixels}, nil
}

func (c *PixelScaleCommand) Name() string {
	return PixelScaleCommandName
}

// MaxWidth returns the configured width limit.
func (c *PixelScaleCommand) MaxWidth() int {
	return c.maxWidth
}

func (c *PixelScaleCommand) Execute(imageData []byte) ([]byte, error) {
	if err := checkEncodedSize(imageData, c.maxPixels); err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= c.maxWidth {
		return imageData, nil
	}

	targetWidth := c.maxWidth
	targetHeight := bounds.Dy() * targetWidth / bounds.Dx()
	if targetHeight < 1 {
		targetHeight = 1
	}

	target := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	xdraw.ApproxBiLinear.Scale(target, target.Bounds(), img, bounds, xdraw.Src, nil)

	return encodePNG(target)
}
