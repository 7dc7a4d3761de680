// Package extract turns receipt photos into validated line items through a
// vision-language service, escalating through prompt strategies when the
// service fails, refuses, or returns malformed output.
package extract

import (
	"bytes"
	"context"
)

// Extractor sends one prompt plus one or more images to a vision-language
// backend and returns the raw text response.
type Extractor interface {
	Extract(ctx context.Context, photos [][]byte, prompt string) (string, error)
}

// DetectImageFormat sniffs the image container from magic bytes. Unknown
// signatures default to jpeg, which is what chat transports deliver.
func DetectImageFormat(b []byte) string {
	switch {
	case bytes.HasPrefix(b, []byte{0xff, 0xd8, 0xff}):
		return "jpeg"
	case bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")):
		return "gif"
	case len(b) > 12 && bytes.Equal(b[8:12], []byte("WEBP")):
		return "webp"
	default:
		return "jpeg"
	}
}
