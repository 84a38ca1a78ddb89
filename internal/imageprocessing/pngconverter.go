package imageprocessing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const PngConverterCommandName = "PngConverterCommand"

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// PngConverterCommand normalizes any supported raster format or SVG to PNG.
type PngConverterCommand struct {
	svgFallbackWidth  int
	svgFallbackHeight int
	maxPixels         int
}

// NewPngConverterCommand reads the optional svgFallbackWidth/svgFallbackHeight params,
// used when an SVG carries neither a size nor a viewBox, and maxPixels.
func NewPngConverterCommand(params map[string]any) (Command, error) {
	w := GetIntParam(params, "svgFallbackWidth", 0)
	h := GetIntParam(params, "svgFallbackHeight", 0)
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("svg fallback size must not be negative, got %dx%d", w, h)
	}
	maxPixels, err := maxPixelsFromParams(params)
	if err != nil {
		return nil, err
	}
	return &PngConverterCommand{
		svgFallbackWidth:  w,
		svgFallbackHeight: h,
		maxPixels:         maxPixels,
	}, nil
}

func (c *PngConverterCommand) Name() string {
	return PngConverterCommandName
}

func (c *PngConverterCommand) Execute(imageData []byte) ([]byte, error) {
	if bytes.HasPrefix(imageData, pngSignature) {
		return imageData, nil
	}
	if IsSVG(imageData) {
		return c.convertSVG(imageData)
	}

	if err := checkEncodedSize(imageData, c.maxPixels); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return encodePNG(img)
}

func (c *PngConverterCommand) convertSVG(svgData []byte) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		w, h = c.svgFallbackWidth, c.svgFallbackHeight
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("SVG has no size and no fallback size is configured")
	}
	if err := checkPixels(w, h, c.maxPixels); err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, canvas, canvas.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	return encodePNG(canvas)
}

// IsSVG sniffs the first few KB for an <svg> element.
func IsSVG(data []byte) bool {
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	header := bytes.ToLower(data[:n])
	return bytes.Contains(header, []byte("<svg"))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
