package video

import (
	"strings"

	"github.com/cespare/xxhash"
)

const (
	// Width is the visible width of the LCD in pixels.
	Width = 160
	// Height is the visible height of the LCD in pixels.
	Height = 144
)

type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

var shadeColors = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// ShadeColor maps a DMG shade (0 lightest, 3 darkest) to an ARGB color.
func ShadeColor(shade uint8) GBColor {
	return shadeColors[shade&0x03]
}

// FrameBuffer holds one shade index (0-3) per pixel, row major.
type FrameBuffer struct {
	buffer []byte
}

// NewFrameBuffer creates a blank 160x144 frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		buffer: make([]byte, Width*Height),
	}
}

func (fb *FrameBuffer) GetPixel(x, y int) uint8 {
	return fb.buffer[y*Width+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, shade uint8) {
	fb.buffer[y*Width+x] = shade & 0x03
}

// Clear resets every pixel to shade 0.
func (fb *FrameBuffer) Clear() {
	clear(fb.buffer)
}

// Snapshot returns a copy of the shade indices, safe to hand to a presenter.
func (fb *FrameBuffer) Snapshot() []byte {
	out := make([]byte, len(fb.buffer))
	copy(out, fb.buffer)
	return out
}

// Hash returns a digest of the frame contents, used to compare frames
// without keeping them around.
func (fb *FrameBuffer) Hash() uint64 {
	return xxhash.Sum64(fb.buffer)
}

// shadeRunes renders shades from lightest to darkest.
var shadeRunes = [4]rune{' ', '░', '▒', '█'}

// String renders the frame as text, one rune per pixel and one line per row.
func (fb *FrameBuffer) String() string {
	var sb strings.Builder
	sb.Grow((Width*3 + 1) * Height)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			sb.WriteRune(shadeRunes[fb.GetPixel(x, y)])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
