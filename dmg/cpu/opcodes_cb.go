package cpu

import (
	"fmt"

	"github.com/valerio/go-dmg/dmg/bit"
)

var (
	// opcodesCB is the table reached through the 0xCB prefix. Every entry is
	// defined, costs include the prefix fetch.
	opcodesCB   [256]Opcode
	mnemonicsCB [256]string
)

func defineCBOp(op uint8, name string, fn Opcode) {
	opcodesCB[op] = fn
	mnemonicsCB[op] = name
}

// cbShifts are the rotate/shift group (0x00-0x3F), in encoding order.
var cbShifts = [8]struct {
	name string
	fn   func(c *CPU, value uint8) uint8
}{
	{"RLC", (*CPU).rlc},
	{"RRC", (*CPU).rrc},
	{"RL", (*CPU).rl},
	{"RR", (*CPU).rr},
	{"SLA", (*CPU).sla},
	{"SRA", (*CPU).sra},
	{"SWAP", (*CPU).swap},
	{"SRL", (*CPU).srl},
}

func defineCB() {
	for r := uint8(0); r < 8; r++ {
		r := r
		reg := regNames[r]
		cycles := regCost(r, 2, 4)

		//RLC/RRC/RL/RR/SLA/SRA/SWAP/SRL r
		//#0xCB 0x00-0x3F
		for s := uint8(0); s < 8; s++ {
			shift := cbShifts[s].fn
			defineCBOp(s<<3|r, cbShifts[s].name+" "+reg, func(c *CPU, bus Bus) int {
				c.writeReg(bus, r, shift(c, c.readReg(bus, r)))
				return cycles
			})
		}

		for b := uint8(0); b < 8; b++ {
			b := b
			//BIT b, r
			//#0xCB 0x40-0x7F
			defineCBOp(0x40|b<<3|r, fmt.Sprintf("BIT %d, %s", b, reg), func(c *CPU, bus Bus) int {
				c.testBit(b, c.readReg(bus, r))
				return cycles
			})

			//RES b, r
			//#0xCB 0x80-0xBF
			defineCBOp(0x80|b<<3|r, fmt.Sprintf("RES %d, %s", b, reg), func(c *CPU, bus Bus) int {
				c.writeReg(bus, r, bit.Reset(b, c.readReg(bus, r)))
				return cycles
			})

			//SET b, r
			//#0xCB 0xC0-0xFF
			defineCBOp(0xC0|b<<3|r, fmt.Sprintf("SET %d, %s", b, reg), func(c *CPU, bus Bus) int {
				c.writeReg(bus, r, bit.Set(b, c.readReg(bus, r)))
				return cycles
			})
		}
	}
}
