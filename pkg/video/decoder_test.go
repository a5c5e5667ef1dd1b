package video

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"
)

func TestDecodeDataURL(t *testing.T) {
	payload := []byte("frame-bytes")
	encoded := base64.StdEncoding.EncodeToString(payload)

	tests := []struct {
		name    string
		frame   string
		want    []byte
		wantErr bool
	}{
		{
			name:  "data url prefix",
			frame: "data:image/jpeg;base64," + encoded,
			want:  payload,
		},
		{
			name:  "bare base64",
			frame: encoded,
			want:  payload,
		},
		{
			name:    "empty payload",
			frame:   "",
			wantErr: true,
		},
		{
			name:    "prefix only",
			frame:   "data:image/jpeg;base64,",
			wantErr: true,
		},
		{
			name:    "invalid base64",
			frame:   "data:image/jpeg;base64,@@@",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDataURL(tt.frame)
			if tt.wantErr {
				if err == nil {
					t.Fatal("DecodeDataURL() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeDataURL() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("DecodeDataURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatalf("encode test image: %v", err)
	}

	w, h, err := Dimensions(buf.Bytes())
	if err != nil {
		t.Fatalf("Dimensions() error = %v", err)
	}
	if w != 8 || h != 6 {
		t.Errorf("Dimensions() = %dx%d, want 8x6", w, h)
	}
}

func TestDimensionsRejectsGarbage(t *testing.T) {
	if _, _, err := Dimensions([]byte("not an image")); err == nil {
		t.Error("Dimensions() should reject undecodable bytes")
	}
}
