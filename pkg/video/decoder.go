// Package video decodes transport-encoded webcam frames into image bytes.
package video

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg" // Frame formats sent by the extension
	_ "image/png"
)

// DecodeDataURL decodes a base64 frame payload, stripping an optional
// "data:image/...;base64," prefix, and returns the raw image bytes.
func DecodeDataURL(frame string) ([]byte, error) {
	if frame == "" {
		return nil, fmt.Errorf("empty frame payload")
	}
	if _, rest, found := strings.Cut(frame, "base64,"); found {
		frame = rest
	}
	data, err := base64.StdEncoding.DecodeString(frame)
	if err != nil {
		return nil, fmt.Errorf("decode frame base64: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame payload")
	}
	return data, nil
}

// Dimensions sniffs the pixel dimensions of an encoded frame without a
// full decode.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("sniff frame dimensions: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
