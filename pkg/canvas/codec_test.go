package canvas

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, img image.Image, format string) []byte {
	t.Helper()

	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	src := solid(30, 20, color.NRGBA{G: 255, A: 255})

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{name: "png", data: encode(t, src, "png")},
		{name: "jpeg", data: encode(t, src, "jpeg")},
		{name: "empty", data: nil, wantErr: true},
		{name: "garbage", data: []byte("<html>not an image</html>"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data, 0)
			if tt.wantErr {
				var decodeErr *DecodeError
				require.True(t, errors.As(err, &decodeErr), "want *DecodeError, got %v", err)
				assert.Equal(t, len(tt.data), decodeErr.Size)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 30, img.Bounds().Dx())
			assert.Equal(t, 20, img.Bounds().Dy())
		})
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring an 8-bit gray
// image of w x h pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth; color type, compression, filter and interlace stay 0

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecode_PixelBudget(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		maxPixels int64
	}{
		{name: "huge declared canvas", data: pngHeader(20000, 20000), maxPixels: 0},
		{name: "over custom budget", data: encode(t, solid(30, 20, red), "png"), maxPixels: 599},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data, tt.maxPixels)

			assert.Nil(t, img)
			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "want *DecodeError, got %v", err)
			assert.ErrorIs(t, err, ErrTooManyPixels)
			assert.Equal(t, len(tt.data), decodeErr.Size)
		})
	}
}

func TestDecode_AtBudget(t *testing.T) {
	img, err := Decode(encode(t, solid(30, 20, red), "png"), 600)

	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())
}

func TestEncodePNG_RoundTripKeepsAlpha(t *testing.T) {
	out := Fit(solid(20, 10, red), Spec{Width: 20, Height: 20})

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, out))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), decoded.Bounds())

	_, _, _, a := decoded.At(0, 0).RGBA()
	assert.Zero(t, a, "top padding row should stay transparent after encoding")
}
