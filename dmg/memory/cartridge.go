package memory

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/valerio/go-dmg/dmg/addr"
)

const (
	// BankSize is the size of a single 16 KiB cartridge ROM bank.
	BankSize = 0x4000

	romOnlyType = 0x00

	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	headerChecksumAddress = 0x14D
)

var (
	// ErrUnsupportedCartridge is matched by UnsupportedCartridgeError.
	ErrUnsupportedCartridge = errors.New("unsupported cartridge type")
	// ErrROMTooSmall is returned for images that do not contain a full header.
	ErrROMTooSmall = errors.New("rom image smaller than cartridge header")
)

// UnsupportedCartridgeError reports a cartridge type byte other than ROM only.
type UnsupportedCartridgeError struct {
	Type uint8
}

func (e UnsupportedCartridgeError) Error() string {
	return fmt.Sprintf("unsupported cartridge type 0x%02X (only ROM only is supported)", e.Type)
}

func (e UnsupportedCartridgeError) Is(target error) bool {
	return target == ErrUnsupportedCartridge
}

// Cartridge is a ROM only cartridge image.
type Cartridge struct {
	data           []byte
	title          string
	cartType       uint8
	romSize        uint8
	ramSize        uint8
	headerChecksum uint8
}

// NewCartridge creates an empty 16 KiB cartridge, used when no image is inserted.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:  make([]byte, BankSize),
		title: "(Untitled)",
	}
}

// NewCartridgeWithData validates the header of the image and copies it into
// a new cartridge, padding it to a full bank.
func NewCartridgeWithData(bytes []byte) (*Cartridge, error) {
	if len(bytes) < int(addr.HeaderEnd) {
		return nil, fmt.Errorf("%w: %d bytes", ErrROMTooSmall, len(bytes))
	}

	cartType := bytes[addr.CartridgeType]
	if cartType != romOnlyType {
		return nil, UnsupportedCartridgeError{Type: cartType}
	}

	cart := &Cartridge{
		data:           make([]byte, max(len(bytes), BankSize)),
		title:          cleanGameboyTitle(bytes[addr.Title:addr.TitleEnd]),
		cartType:       cartType,
		romSize:        bytes[romSizeAddress],
		ramSize:        bytes[ramSizeAddress],
		headerChecksum: bytes[headerChecksumAddress],
	}
	copy(cart.data, bytes)

	return cart, nil
}

// Title returns the printable game title from the header.
func (c *Cartridge) Title() string {
	return c.title
}

// Type returns the raw cartridge type byte.
func (c *Cartridge) Type() uint8 {
	return c.cartType
}

// Size returns the size of the ROM image in bytes.
func (c *Cartridge) Size() int {
	return len(c.data)
}

// HeaderChecksumValid recomputes the header checksum over 0x134-0x14C.
func (c *Cartridge) HeaderChecksumValid() bool {
	var sum uint8
	for i := addr.Title; i < headerChecksumAddress; i++ {
		sum = sum - c.data[i] - 1
	}
	return sum == c.headerChecksum
}

// ReadByte reads a byte from bank 0. Does not check bounds, so the caller must make sure the
// address is valid for the cartridge.
func (c *Cartridge) ReadByte(address uint16) uint8 {
	return c.data[address]
}

// patch overwrites bytes in the image, used for debug stop injection.
func (c *Cartridge) patch(address uint16, values ...uint8) {
	for i, v := range values {
		if a := int(address) + i; a < len(c.data) {
			c.data[a] = v
		}
	}
}

// cleanGameboyTitle turns the raw title bytes into something printable:
// NUL bytes become spaces, non-printable bytes become '?', and the result is
// trimmed.
func cleanGameboyTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) || r > unicode.MaxASCII {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}

	return title
}
