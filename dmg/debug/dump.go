package debug

import (
	"fmt"
	"io"
	"strings"
)

// PageSize is how many bytes Page dumps.
const PageSize = 0x100

const bytesPerRow = 16

// MemoryReader provides read-only access to emulator memory for debug tools.
type MemoryReader interface {
	Read(addr uint16) uint8
}

// Page returns the start of the 256 byte page holding the address.
func Page(address uint16) uint16 {
	return address &^ (PageSize - 1)
}

// Dump writes length bytes starting at start as a hex table, 16 bytes per
// row with the address on the left and printable characters on the right.
// Reads past 0xFFFF stop at the end of the address space.
func Dump(w io.Writer, mem MemoryReader, start uint16, length int) error {
	end := min(int(start)+length, 0x10000)
	row := make([]byte, 0, bytesPerRow)

	for base := int(start); base < end; base += bytesPerRow {
		row = row[:0]
		for a := base; a < base+bytesPerRow && a < end; a++ {
			row = append(row, mem.Read(uint16(a)))
		}

		if _, err := fmt.Fprintf(w, "%04X: %-47s  |%s|\n", base, fmt.Sprintf("% X", row), printable(row)); err != nil {
			return err
		}
	}
	return nil
}

// DumpPage writes the whole 256 byte page that holds the address.
func DumpPage(w io.Writer, mem MemoryReader, address uint16) error {
	return Dump(w, mem, Page(address), PageSize)
}

func printable(row []byte) string {
	var sb strings.Builder
	for _, b := range row {
		if b < 0x20 || b > 0x7E {
			sb.WriteByte('.')
		} else {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
