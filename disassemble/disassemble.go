// Package disassemble implements a disassembler for the documented
// 6502 opcodes.
package disassemble

import (
	"fmt"

	"github.com/apexdev/ya6502/memory"
)

const (
	kMODE_IMMEDIATE = iota
	kMODE_ZP
	kMODE_ZPX
	kMODE_ZPY
	kMODE_INDIRECTX
	kMODE_INDIRECTY
	kMODE_ABSOLUTE
	kMODE_ABSOLUTEX
	kMODE_ABSOLUTEY
	kMODE_INDIRECT
	kMODE_IMPLIED
	kMODE_ACCUMULATOR
	kMODE_RELATIVE
	kMODE_UNKNOWN
)

// implied names the explicitly matched one-byte opcodes.
var implied = map[uint8]string{
	0xEA: "NOP", 0x00: "BRK", 0x40: "RTI", 0x60: "RTS",
	0x18: "CLC", 0x38: "SEC", 0x58: "CLI", 0x78: "SEI",
	0xB8: "CLV", 0xD8: "CLD", 0xF8: "SED",
	0xA8: "TAY", 0x98: "TYA", 0xAA: "TAX", 0x8A: "TXA",
	0x9A: "TXS", 0xBA: "TSX",
	0x08: "PHP", 0x28: "PLP", 0x48: "PHA", 0x68: "PLA",
	0xC8: "INY", 0x88: "DEY", 0xE8: "INX", 0xCA: "DEX",
}

var groupOne = [8]string{"ORA", "AND", "EOR", "ADC", "STA", "LDA", "CMP", "SBC"}
var groupTwo = [8]string{"ASL", "ROL", "LSR", "ROR", "STX", "LDX", "DEC", "INC"}
var groupThree = [8]string{"", "BIT", "JMP", "JMP", "STY", "LDY", "CPY", "CPX"}
var branches = [8]string{"BPL", "BMI", "BVC", "BVS", "BCC", "BCS", "BNE", "BEQ"}

// modeTable maps (cc, bbb) the same way the CPU decodes, in the
// disassembler's own mode vocabulary.
var modeTable = [3][8]int{
	{kMODE_IMMEDIATE, kMODE_ZP, kMODE_UNKNOWN, kMODE_ABSOLUTE, kMODE_UNKNOWN, kMODE_ZPX, kMODE_UNKNOWN, kMODE_ABSOLUTEX},
	{kMODE_INDIRECTX, kMODE_ZP, kMODE_IMMEDIATE, kMODE_ABSOLUTE, kMODE_INDIRECTY, kMODE_ZPX, kMODE_ABSOLUTEY, kMODE_ABSOLUTEX},
	{kMODE_IMMEDIATE, kMODE_ZP, kMODE_ACCUMULATOR, kMODE_ABSOLUTE, kMODE_UNKNOWN, kMODE_ZPX, kMODE_UNKNOWN, kMODE_ABSOLUTEX},
}

// decode resolves an opcode byte to its mnemonic and addressing mode
// using the aaa/bbb/cc decomposition the CPU itself dispatches on.
func decode(o uint8) (string, int) {
	if op, ok := implied[o]; ok {
		return op, kMODE_IMPLIED
	}
	if o == 0x20 {
		return "JSR", kMODE_ABSOLUTE
	}

	aaa := (o & 0xE0) >> 5
	bbb := (o & 0x1C) >> 2
	cc := o & 0x03
	if cc == 0b11 {
		return "???", kMODE_UNKNOWN
	}
	mode := modeTable[cc][bbb]

	switch cc {
	case 0b01:
		return groupOne[aaa], mode
	case 0b10:
		if mode == kMODE_UNKNOWN {
			return "???", kMODE_UNKNOWN
		}
		op := groupTwo[aaa]
		// STX/LDX swap the index register on indexed modes.
		if op == "STX" || op == "LDX" {
			switch mode {
			case kMODE_ZPX:
				mode = kMODE_ZPY
			case kMODE_ZPY:
				mode = kMODE_ZPX
			}
			if op == "LDX" && mode == kMODE_ABSOLUTEX {
				mode = kMODE_ABSOLUTEY
			}
		}
		return op, mode
	}
	// cc == 0b00
	if bbb == 0b100 {
		return branches[aaa], kMODE_RELATIVE
	}
	op := groupThree[aaa]
	if op == "" {
		return "???", kMODE_UNKNOWN
	}
	if op == "JMP" && aaa == 0b011 {
		mode = kMODE_INDIRECT
	}
	return op, mode
}

// Step will take the given PC value and disassemble the instruction at
// that location, returning a string for the disassembly and the bytes
// forward the PC should move to get to the next instruction. This does
// not interpret the instructions, so a JMP disassembles in place and is
// not followed. This always reads up to two bytes past the current PC
// so make sure those addresses are valid.
func Step(pc uint16, m *memory.MMU) (string, int) {
	o := m.ReadByte(pc)
	pc1 := m.ReadByte(pc + 1)
	pc2 := m.ReadByte(pc + 2)
	// Sign extended so branch targets can be added to the PC.
	pc116 := uint16(int16(int8(pc1)))

	op, mode := decode(o)

	count := 2 // Default byte count, adjusted below.
	out := fmt.Sprintf("%.4X %.2X ", pc, o)
	switch mode {
	case kMODE_IMMEDIATE:
		out += fmt.Sprintf("%.2X      %s #%.2X       ", pc1, op, pc1)
	case kMODE_ZP:
		out += fmt.Sprintf("%.2X      %s %.2X        ", pc1, op, pc1)
	case kMODE_ZPX:
		out += fmt.Sprintf("%.2X      %s %.2X,X      ", pc1, op, pc1)
	case kMODE_ZPY:
		out += fmt.Sprintf("%.2X      %s %.2X,Y      ", pc1, op, pc1)
	case kMODE_INDIRECTX:
		out += fmt.Sprintf("%.2X      %s (%.2X,X)    ", pc1, op, pc1)
	case kMODE_INDIRECTY:
		out += fmt.Sprintf("%.2X      %s (%.2X),Y    ", pc1, op, pc1)
	case kMODE_ABSOLUTE:
		out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X      ", pc1, pc2, op, pc2, pc1)
		count++
	case kMODE_ABSOLUTEX:
		out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X,X    ", pc1, pc2, op, pc2, pc1)
		count++
	case kMODE_ABSOLUTEY:
		out += fmt.Sprintf("%.2X %.2X   %s %.2X%.2X,Y    ", pc1, pc2, op, pc2, pc1)
		count++
	case kMODE_INDIRECT:
		out += fmt.Sprintf("%.2X %.2X   %s (%.2X%.2X)    ", pc1, pc2, op, pc2, pc1)
		count++
	case kMODE_RELATIVE:
		out += fmt.Sprintf("%.2X      %s %.2X (%.4X) ", pc1, op, pc1, pc+pc116+2)
	case kMODE_ACCUMULATOR:
		out += fmt.Sprintf("        %s           ", op)
		count--
	default:
		// Implied and unknown encodings are a single byte.
		out += fmt.Sprintf("        %s           ", op)
		count--
	}
	return out, count
}
