package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func encodeWith(t *testing.T, img image.Image, enc func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := enc(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_Formats(t *testing.T) {
	src := gradientNRGBA(12, 7)

	tests := []struct {
		name   string
		enc    func(*bytes.Buffer, image.Image) error
		format string
	}{
		{"png", func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }, "png"},
		{"bmp", func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) }, "bmp"},
		{"tiff", func(b *bytes.Buffer, m image.Image) error { return tiff.Encode(b, m, nil) }, "tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeWith(t, src, tt.enc)

			got, err := Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got.Format != tt.format {
				t.Errorf("format: got %q, want %q", got.Format, tt.format)
			}
			if _, ok := got.Image.(*image.NRGBA); !ok {
				t.Errorf("layout: got %T, want *image.NRGBA", got.Image)
			}
			assertSamePixels(t, got.Image, src)
		})
	}
}

func TestDecode_GrayPNG(t *testing.T) {
	src := gradientGray(9, 9)
	data := encodeWith(t, src, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) })

	got, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, ok := got.Image.(*image.Gray); !ok {
		t.Fatalf("layout: got %T, want *image.Gray", got.Image)
	}
	assertSamePixels(t, got.Image, src)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("not an image")},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrDecode) {
				t.Errorf("got %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.png")
	data := encodeWith(t, solidNRGBA(30, 20, color.NRGBA{255, 0, 0, 255}),
		func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) })
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}

	got, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if b := got.Image.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", b.Dx(), b.Dy())
	}
}

func TestDecodeFile_NonExistent(t *testing.T) {
	_, err := DecodeFile("/nonexistent/path/image.png")
	if err == nil {
		t.Fatal("expected error for non-existent file")
	}
	if errors.Is(err, ErrDecode) {
		t.Error("a missing file should not be reported as a decode failure")
	}
	if !strings.Contains(err.Error(), "failed to open image") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(gradientGray(4, 3)); got != (Info{Width: 4, Height: 3, Channels: "gray"}) {
		t.Errorf("gray: got %+v", got)
	}
	if got := Describe(gradientNRGBA(5, 6)); got != (Info{Width: 5, Height: 6, Channels: "rgba"}) {
		t.Errorf("rgba: got %+v", got)
	}
}
