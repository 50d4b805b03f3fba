package cpu

import (
	"fmt"

	"github.com/valerio/go-dmg/dmg/bit"
)

// Opcode executes one decoded instruction and returns its cost in machine cycles.
type Opcode func(c *CPU, bus Bus) int

var (
	// opcodes is the primary decode table, a nil entry is an illegal opcode.
	opcodes   [256]Opcode
	mnemonics [256]string
)

// register operand indexes, as encoded in bits 0-2 and 3-5 of most opcodes
const (
	regB uint8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLIndirect
	regA
)

var regNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// condition codes, as encoded in bits 3-4 of branch opcodes
var condNames = [4]string{"NZ", "Z", "NC", "C"}

// register pairs, as encoded in bits 4-5 of 16 bit opcodes
var pairNames = [4]string{"BC", "DE", "HL", "SP"}

// Mnemonic returns the assembly name for an opcode, used for tracing.
func Mnemonic(opcode uint8, prefixed bool) string {
	if prefixed {
		return mnemonicsCB[opcode]
	}
	if name := mnemonics[opcode]; name != "" {
		return name
	}
	return fmt.Sprintf("ILLEGAL 0x%02X", opcode)
}

func define(op uint8, name string, fn Opcode) {
	if opcodes[op] != nil {
		panic(fmt.Sprintf("opcode 0x%02X defined twice (%s, %s)", op, mnemonics[op], name))
	}
	opcodes[op] = fn
	mnemonics[op] = name
}

func init() {
	defineLoads()
	defineArithmetic()
	defineJumps()
	defineMisc()
	defineCB()
}

// readReg reads one of the 8 register operands, index 6 being (HL).
func (c *CPU) readReg(bus Bus, index uint8) uint8 {
	switch index {
	case regB:
		return c.b
	case regC:
		return c.c
	case regD:
		return c.d
	case regE:
		return c.e
	case regH:
		return c.h
	case regL:
		return c.l
	case regHLIndirect:
		return bus.Read(c.getHL())
	default:
		return c.a
	}
}

// writeReg writes one of the 8 register operands, index 6 being (HL).
func (c *CPU) writeReg(bus Bus, index, value uint8) {
	switch index {
	case regB:
		c.b = value
	case regC:
		c.c = value
	case regD:
		c.d = value
	case regE:
		c.e = value
	case regH:
		c.h = value
	case regL:
		c.l = value
	case regHLIndirect:
		bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

func (c *CPU) getPair(index uint8) uint16 {
	switch index {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) setPair(index uint8, value uint16) {
	switch index {
	case 0:
		c.setBC(value)
	case 1:
		c.setDE(value)
	case 2:
		c.setHL(value)
	default:
		c.sp = value
	}
}

// condition evaluates one of NZ, Z, NC, C.
func (c *CPU) condition(index uint8) bool {
	switch index {
	case 0:
		return !c.isSetFlag(zeroFlag)
	case 1:
		return c.isSetFlag(zeroFlag)
	case 2:
		return !c.isSetFlag(carryFlag)
	default:
		return c.isSetFlag(carryFlag)
	}
}

// regCost returns base cycles, or indirect if the operand is (HL).
func regCost(index uint8, base, indirect int) int {
	if index == regHLIndirect {
		return indirect
	}
	return base
}

func defineLoads() {
	//LD r, r'
	//#0x40-0x7F (0x76 is HALT)
	for dst := uint8(0); dst < 8; dst++ {
		dst := dst
		for src := uint8(0); src < 8; src++ {
			src := src
			op := 0x40 | dst<<3 | src
			if op == 0x76 {
				continue
			}
			cycles := 1
			if dst == regHLIndirect || src == regHLIndirect {
				cycles = 2
			}
			define(op, fmt.Sprintf("LD %s, %s", regNames[dst], regNames[src]), func(c *CPU, bus Bus) int {
				c.writeReg(bus, dst, c.readReg(bus, src))
				return cycles
			})
		}
	}

	//LD r, n
	//#0x06, 0x0E, ... 0x3E
	for r := uint8(0); r < 8; r++ {
		r := r
		cycles := regCost(r, 2, 3)
		define(0x06|r<<3, fmt.Sprintf("LD %s, n", regNames[r]), func(c *CPU, bus Bus) int {
			c.writeReg(bus, r, c.readImmediate(bus))
			return cycles
		})
	}

	//LD rr, nn
	//#0x01, 0x11, 0x21, 0x31
	for p := uint8(0); p < 4; p++ {
		p := p
		define(0x01|p<<4, fmt.Sprintf("LD %s, nn", pairNames[p]), func(c *CPU, bus Bus) int {
			c.setPair(p, c.readImmediateWord(bus))
			return 3
		})
	}

	//PUSH rr / POP rr
	//#0xC5, 0xD5, 0xE5, 0xF5 / #0xC1, 0xD1, 0xE1, 0xF1
	for p := uint8(0); p < 4; p++ {
		p := p
		name := pairNames[p]
		if p == 3 {
			name = "AF"
		}
		define(0xC5|p<<4, "PUSH "+name, func(c *CPU, bus Bus) int {
			if p == 3 {
				c.pushStack(bus, c.getAF())
			} else {
				c.pushStack(bus, c.getPair(p))
			}
			return 4
		})
		define(0xC1|p<<4, "POP "+name, func(c *CPU, bus Bus) int {
			value := c.popStack(bus)
			if p == 3 {
				c.setAF(value)
			} else {
				c.setPair(p, value)
			}
			return 3
		})
	}

	define(0x02, "LD (BC), A", func(c *CPU, bus Bus) int {
		bus.Write(c.getBC(), c.a)
		return 2
	})
	define(0x12, "LD (DE), A", func(c *CPU, bus Bus) int {
		bus.Write(c.getDE(), c.a)
		return 2
	})
	define(0x0A, "LD A, (BC)", func(c *CPU, bus Bus) int {
		c.a = bus.Read(c.getBC())
		return 2
	})
	define(0x1A, "LD A, (DE)", func(c *CPU, bus Bus) int {
		c.a = bus.Read(c.getDE())
		return 2
	})
	define(0x22, "LDI (HL), A", func(c *CPU, bus Bus) int {
		bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() + 1)
		return 2
	})
	define(0x2A, "LDI A, (HL)", func(c *CPU, bus Bus) int {
		c.a = bus.Read(c.getHL())
		c.setHL(c.getHL() + 1)
		return 2
	})
	define(0x32, "LDD (HL), A", func(c *CPU, bus Bus) int {
		bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() - 1)
		return 2
	})
	define(0x3A, "LDD A, (HL)", func(c *CPU, bus Bus) int {
		c.a = bus.Read(c.getHL())
		c.setHL(c.getHL() - 1)
		return 2
	})
	define(0x08, "LD (nn), SP", func(c *CPU, bus Bus) int {
		address := c.readImmediateWord(bus)
		bus.Write(address, bit.Low(c.sp))
		bus.Write(address+1, bit.High(c.sp))
		return 5
	})
	define(0xE0, "LDH (n), A", func(c *CPU, bus Bus) int {
		bus.Write(0xFF00+uint16(c.readImmediate(bus)), c.a)
		return 3
	})
	define(0xF0, "LDH A, (n)", func(c *CPU, bus Bus) int {
		c.a = bus.Read(0xFF00 + uint16(c.readImmediate(bus)))
		return 3
	})
	define(0xE2, "LD (C), A", func(c *CPU, bus Bus) int {
		bus.Write(0xFF00+uint16(c.c), c.a)
		return 2
	})
	define(0xF2, "LD A, (C)", func(c *CPU, bus Bus) int {
		c.a = bus.Read(0xFF00 + uint16(c.c))
		return 2
	})
	define(0xEA, "LD (nn), A", func(c *CPU, bus Bus) int {
		bus.Write(c.readImmediateWord(bus), c.a)
		return 4
	})
	define(0xFA, "LD A, (nn)", func(c *CPU, bus Bus) int {
		c.a = bus.Read(c.readImmediateWord(bus))
		return 4
	})
	define(0xF8, "LD HL, SP+n", func(c *CPU, bus Bus) int {
		c.setHL(c.addSPSigned(c.readSignedImmediate(bus)))
		return 3
	})
	define(0xF9, "LD SP, HL", func(c *CPU, bus Bus) int {
		c.sp = c.getHL()
		return 2
	})
}

// aluOps are the 8 accumulator operations, in encoding order.
var aluOps = [8]struct {
	name string
	fn   func(c *CPU, value uint8)
}{
	{"ADD A,", func(c *CPU, v uint8) { c.addToA(v, false) }},
	{"ADC A,", func(c *CPU, v uint8) { c.addToA(v, true) }},
	{"SUB", func(c *CPU, v uint8) { c.sub(v, false) }},
	{"SBC A,", func(c *CPU, v uint8) { c.sub(v, true) }},
	{"AND", (*CPU).and},
	{"XOR", (*CPU).xor},
	{"OR", (*CPU).or},
	{"CP", (*CPU).cp},
}

func defineArithmetic() {
	//ADD/ADC/SUB/SBC/AND/XOR/OR/CP A, r
	//#0x80-0xBF
	for op := uint8(0); op < 8; op++ {
		alu := aluOps[op].fn
		for r := uint8(0); r < 8; r++ {
			r := r
			cycles := regCost(r, 1, 2)
			define(0x80|op<<3|r, fmt.Sprintf("%s %s", aluOps[op].name, regNames[r]), func(c *CPU, bus Bus) int {
				alu(c, c.readReg(bus, r))
				return cycles
			})
		}

		//ALU A, n
		//#0xC6, 0xCE, ... 0xFE
		define(0xC6|op<<3, aluOps[op].name+" n", func(c *CPU, bus Bus) int {
			alu(c, c.readImmediate(bus))
			return 2
		})
	}

	//INC r / DEC r
	//#0x04, 0x0C, ... 0x3C / #0x05, 0x0D, ... 0x3D
	for r := uint8(0); r < 8; r++ {
		r := r
		cycles := regCost(r, 1, 3)
		define(0x04|r<<3, "INC "+regNames[r], func(c *CPU, bus Bus) int {
			c.writeReg(bus, r, c.inc(c.readReg(bus, r)))
			return cycles
		})
		define(0x05|r<<3, "DEC "+regNames[r], func(c *CPU, bus Bus) int {
			c.writeReg(bus, r, c.dec(c.readReg(bus, r)))
			return cycles
		})
	}

	//INC rr / DEC rr / ADD HL, rr
	//#0x03 / #0x0B / #0x09, stepping by 0x10
	for p := uint8(0); p < 4; p++ {
		p := p
		define(0x03|p<<4, "INC "+pairNames[p], func(c *CPU, _ Bus) int {
			c.setPair(p, c.getPair(p)+1)
			return 2
		})
		define(0x0B|p<<4, "DEC "+pairNames[p], func(c *CPU, _ Bus) int {
			c.setPair(p, c.getPair(p)-1)
			return 2
		})
		define(0x09|p<<4, "ADD HL, "+pairNames[p], func(c *CPU, _ Bus) int {
			c.addToHL(c.getPair(p))
			return 2
		})
	}

	define(0xE8, "ADD SP, n", func(c *CPU, bus Bus) int {
		c.sp = c.addSPSigned(c.readSignedImmediate(bus))
		return 4
	})
	define(0x27, "DAA", func(c *CPU, _ Bus) int {
		c.daa()
		return 1
	})
	define(0x2F, "CPL", func(c *CPU, _ Bus) int {
		c.cpl()
		return 1
	})
	define(0x37, "SCF", func(c *CPU, _ Bus) int {
		c.scf()
		return 1
	})
	define(0x3F, "CCF", func(c *CPU, _ Bus) int {
		c.ccf()
		return 1
	})
	define(0x07, "RLCA", func(c *CPU, _ Bus) int {
		c.rotateA(c.rlc)
		return 1
	})
	define(0x0F, "RRCA", func(c *CPU, _ Bus) int {
		c.rotateA(c.rrc)
		return 1
	})
	define(0x17, "RLA", func(c *CPU, _ Bus) int {
		c.rotateA(c.rl)
		return 1
	})
	define(0x1F, "RRA", func(c *CPU, _ Bus) int {
		c.rotateA(c.rr)
		return 1
	})
}

func defineJumps() {
	define(0x18, "JR n", func(c *CPU, bus Bus) int {
		offset := c.readSignedImmediate(bus)
		c.pc += uint16(offset)
		return 3
	})
	define(0xC3, "JP nn", func(c *CPU, bus Bus) int {
		c.pc = c.readImmediateWord(bus)
		return 4
	})
	define(0xE9, "JP (HL)", func(c *CPU, _ Bus) int {
		c.pc = c.getHL()
		return 1
	})
	define(0xCD, "CALL nn", func(c *CPU, bus Bus) int {
		address := c.readImmediateWord(bus)
		c.Call(bus, address)
		return 6
	})
	define(0xC9, "RET", func(c *CPU, bus Bus) int {
		c.pc = c.popStack(bus)
		return 4
	})
	define(0xD9, "RETI", func(c *CPU, bus Bus) int {
		c.pc = c.popStack(bus)
		c.interruptsEnabled = true
		return 4
	})

	for cc := uint8(0); cc < 4; cc++ {
		cc := cc
		//JR cc, n
		//#0x20, 0x28, 0x30, 0x38
		define(0x20|cc<<3, "JR "+condNames[cc]+", n", func(c *CPU, bus Bus) int {
			offset := c.readSignedImmediate(bus)
			if !c.condition(cc) {
				return 2
			}
			c.pc += uint16(offset)
			return 3
		})

		//JP cc, nn
		//#0xC2, 0xCA, 0xD2, 0xDA
		define(0xC2|cc<<3, "JP "+condNames[cc]+", nn", func(c *CPU, bus Bus) int {
			address := c.readImmediateWord(bus)
			if !c.condition(cc) {
				return 3
			}
			c.pc = address
			return 4
		})

		//CALL cc, nn
		//#0xC4, 0xCC, 0xD4, 0xDC
		define(0xC4|cc<<3, "CALL "+condNames[cc]+", nn", func(c *CPU, bus Bus) int {
			address := c.readImmediateWord(bus)
			if !c.condition(cc) {
				return 3
			}
			c.Call(bus, address)
			return 6
		})

		//RET cc
		//#0xC0, 0xC8, 0xD0, 0xD8
		define(0xC0|cc<<3, "RET "+condNames[cc], func(c *CPU, bus Bus) int {
			if !c.condition(cc) {
				return 2
			}
			c.pc = c.popStack(bus)
			return 5
		})
	}

	//RST n
	//#0xC7, 0xCF, ... 0xFF
	for n := uint8(0); n < 8; n++ {
		vector := uint16(n) * 8
		define(0xC7|n<<3, fmt.Sprintf("RST %02XH", vector), func(c *CPU, bus Bus) int {
			c.Call(bus, vector)
			return 4
		})
	}
}

func defineMisc() {
	define(0x00, "NOP", func(_ *CPU, _ Bus) int {
		return 1
	})
	define(0x10, "STOP", func(c *CPU, bus Bus) int {
		c.readImmediate(bus)
		c.stopped = true
		return 1
	})
	define(0x76, "HALT", func(c *CPU, _ Bus) int {
		c.halted = true
		return 1
	})
	define(0xF3, "DI", func(c *CPU, _ Bus) int {
		c.interruptsEnabled = false
		return 1
	})
	define(0xFB, "EI", func(c *CPU, _ Bus) int {
		c.interruptsEnabled = true
		return 1
	})
	define(0xCB, "PREFIX CB", func(c *CPU, bus Bus) int {
		return opcodesCB[c.readImmediate(bus)](c, bus)
	})
}
