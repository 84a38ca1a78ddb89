package imageprocessing

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// DataURL encodes data as a base64 data: URL. An empty contentType is sniffed.
func DataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = SniffContentType(data)
	}
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(contentType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(contentType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// SniffContentType detects the media type of data, recognizing SVG which
// http.DetectContentType reports as text.
func SniffContentType(data []byte) string {
	if IsSVG(data) {
		return "image/svg+xml"
	}
	return http.DetectContentType(data)
}
