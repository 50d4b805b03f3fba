package memory

import "fmt"

// Region identifies which part of the address space an address belongs to.
type Region uint8

const (
	RegionBootROM Region = iota
	RegionROMBank0
	RegionROMBankN
	RegionVRAM
	RegionExtRAM
	RegionWRAM0
	RegionWRAMX
	RegionEcho
	RegionOAM
	RegionUnusable
	RegionIO
	RegionHRAM
	RegionIE

	regionCount
	regionNone = regionCount
)

var regionNames = [regionCount]string{
	RegionBootROM:  "BootROM",
	RegionROMBank0: "ROMBank0",
	RegionROMBankN: "ROMBankN",
	RegionVRAM:     "VRAM",
	RegionExtRAM:   "ExtRAM",
	RegionWRAM0:    "WRAM0",
	RegionWRAMX:    "WRAMX",
	RegionEcho:     "Echo",
	RegionOAM:      "OAM",
	RegionUnusable: "Unusable",
	RegionIO:       "IO",
	RegionHRAM:     "HRAM",
	RegionIE:       "IE",
}

func (r Region) String() string {
	if r < regionCount {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", uint8(r))
}

type span struct {
	start, end uint16 // inclusive
	region     Region
}

// memoryMap is the static layout of the bus. The boot ROM overlay sits on
// top of bank 0 and is resolved at access time, see Bus.Region.
var memoryMap = []span{
	{0x0000, 0x3FFF, RegionROMBank0},
	{0x4000, 0x7FFF, RegionROMBankN},
	{0x8000, 0x9FFF, RegionVRAM},
	{0xA000, 0xBFFF, RegionExtRAM},
	{0xC000, 0xCFFF, RegionWRAM0},
	{0xD000, 0xDFFF, RegionWRAMX},
	{0xE000, 0xFDFF, RegionEcho},
	{0xFE00, 0xFE9F, RegionOAM},
	{0xFEA0, 0xFEFF, RegionUnusable},
	{0xFF00, 0xFF7F, RegionIO},
	{0xFF80, 0xFFFE, RegionHRAM},
	{0xFFFF, 0xFFFF, RegionIE},
}

// regionTable maps every address to exactly one region.
var regionTable = mustBuildRegionTable(memoryMap)

func mustBuildRegionTable(spans []span) *[0x10000]Region {
	table, err := buildRegionTable(spans)
	if err != nil {
		panic(err)
	}
	return table
}

// buildRegionTable lays the spans out over the 64K address space and fails
// if any address is claimed twice or left unmapped.
func buildRegionTable(spans []span) (*[0x10000]Region, error) {
	table := new([0x10000]Region)
	for i := range table {
		table[i] = regionNone
	}

	for _, s := range spans {
		if s.end < s.start {
			return nil, fmt.Errorf("memory map: %s span 0x%04X-0x%04X is inverted", s.region, s.start, s.end)
		}
		for a := int(s.start); a <= int(s.end); a++ {
			if prev := table[a]; prev != regionNone {
				return nil, fmt.Errorf("memory map: 0x%04X claimed by both %s and %s", a, prev, s.region)
			}
			table[a] = s.region
		}
	}

	for a, r := range table {
		if r == regionNone {
			return nil, fmt.Errorf("memory map: 0x%04X is unmapped", a)
		}
	}

	return table, nil
}
