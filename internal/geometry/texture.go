package geometry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/Faultbox/z64scene/pkg/errs"
)

// Texture formats.
const (
	FormatRGBA16 = "rgba16"
	FormatRGBA32 = "rgba32"
	FormatI8     = "i8"
	FormatIA8    = "ia8"
	FormatIA16   = "ia16"
)

// DefaultFormat is used when neither the texture nor the settings choose one.
const DefaultFormat = FormatRGBA16

// LoadImage reads a PNG, JPEG, TGA, BMP or WebP file as NRGBA.
func LoadImage(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = tga.Decode(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return toNRGBA(img), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// intensity is the Rec. 601 luma of a pixel.
func intensity(r, g, b uint8) uint8 {
	return uint8((uint32(r)*299 + uint32(g)*587 + uint32(b)*114 + 500) / 1000)
}

// Encode converts an image to texel bytes in the given format.
func Encode(img *image.NRGBA, format string) ([]byte, error) {
	switch format {
	case FormatRGBA16, FormatRGBA32, FormatI8, FormatIA8, FormatIA16:
	default:
		return nil, errs.Unsupported("texture format %q", format)
	}

	b := img.Bounds()
	var out []byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			r, g, bl, a := img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]

			switch format {
			case FormatRGBA16:
				v := uint16(r>>3)<<11 | uint16(g>>3)<<6 | uint16(bl>>3)<<1
				if a >= 0x80 {
					v |= 1
				}
				out = binary.BigEndian.AppendUint16(out, v)
			case FormatRGBA32:
				out = append(out, r, g, bl, a)
			case FormatI8:
				out = append(out, intensity(r, g, bl))
			case FormatIA8:
				out = append(out, intensity(r, g, bl)&0xF0|a>>4)
			case FormatIA16:
				out = append(out, intensity(r, g, bl), a)
			}
		}
	}
	return out, nil
}

// Words packs texel bytes into big endian 64-bit words, zero padding the
// last one.
func Words(data []byte) []uint64 {
	words := make([]uint64, 0, (len(data)+7)/8)
	for len(data) > 0 {
		var chunk [8]byte
		n := copy(chunk[:], data)
		words = append(words, binary.BigEndian.Uint64(chunk[:]))
		data = data[n:]
	}
	return words
}
