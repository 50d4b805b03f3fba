package video

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// TileRow represents one row of a tile pattern (8 pixels).
//
// Game Boy tiles are 8x8 pixels, with 2 bits per pixel allowing 4 colors.
// Each tile row uses 2 bytes in a bit-plane format:
//
//	Byte 1 (Low):  Bit plane 0 - provides bit 0 of each pixel's color
//	Byte 2 (High): Bit plane 1 - provides bit 1 of each pixel's color
//
// Bit 7 represents the leftmost pixel, bit 0 the rightmost:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// A complete 8x8 tile occupies 16 bytes (8 rows × 2 bytes/row) in VRAM.
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel extracts a pixel color (0-3) from the tile row.
// pixelX should be 0-7, where 0 is the leftmost pixel.
func (t TileRow) GetPixel(pixelX int) uint8 {
	bitIndex := uint8(7 - pixelX)
	return bit.GetBitValue(bitIndex, t.High)<<1 | bit.GetBitValue(bitIndex, t.Low)
}

// MemoryReader is anything tiles can be fetched from.
type MemoryReader interface {
	Read(address uint16) byte
}

// FetchTileRow reads the two bitplane bytes of a tile row.
func FetchTileRow(memory MemoryReader, address uint16) TileRow {
	return TileRow{
		Low:  memory.Read(address),
		High: memory.Read(address + 1),
	}
}

// TileDataAddress returns the address of a background tile's first byte.
// With LCDC bit 4 set tiles are indexed unsigned from 0x8000, otherwise the
// index is a signed offset from 0x9000.
func TileDataAddress(lcdc, index uint8) uint16 {
	if bit.IsSet(bgWindowTileDataSelect, lcdc) {
		return addr.TileData0 + uint16(index)*16
	}
	return uint16(int(addr.TileData2) + int(int8(index))*16)
}

// ApplyPalette maps a 2 bit color index through a palette register.
func ApplyPalette(palette, color uint8) uint8 {
	return (palette >> (color * 2)) & 0x03
}
