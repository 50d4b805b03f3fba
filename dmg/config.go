package dmg

import (
	"log/slog"
)

// DefaultBootROMPath is where the boot program is looked up when no other
// path is configured.
const DefaultBootROMPath = "data/DMG_ROM.bin"

// Config holds everything the caller can tune when building a System.
// The zero value runs the boot ROM from DefaultBootROMPath with tracing off.
type Config struct {
	// BootROMPath is the boot program image to map over 0x0000-0x00FF.
	BootROMPath string
	// BootROM, when set, is used instead of reading BootROMPath.
	BootROM []byte
	// SkipBootROM starts at 0x0100 with the post-boot register state.
	SkipBootROM bool

	// Trace logs every executed instruction at debug level.
	Trace bool
	// StopAt injects NOP; STOP 00 at the address, ending automated runs.
	StopAt *uint16
	// DumpAt is the address whose 256 byte page Dump writes out.
	DumpAt *uint16

	Logger *slog.Logger
}

func (c Config) bootROMPath() string {
	if c.BootROMPath == "" {
		return DefaultBootROMPath
	}
	return c.BootROMPath
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
