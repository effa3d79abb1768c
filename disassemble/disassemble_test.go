package disassemble

import (
	"strings"
	"testing"

	"github.com/apexdev/ya6502/memory"
)

func setup(pc uint16, bytes ...uint8) *memory.MMU {
	m := memory.NewMMU()
	for i, b := range bytes {
		m.WriteByte(pc+uint16(i), b)
	}
	return m
}

func TestStep(t *testing.T) {
	tests := []struct {
		name      string
		bytes     []uint8
		want      string // mnemonic and operand, whitespace collapsed
		wantWidth int
	}{
		{"immediate", []uint8{0xA9, 0x42}, "LDA #42", 2},
		{"zero page", []uint8{0x65, 0x10}, "ADC 10", 2},
		{"zero page x", []uint8{0x75, 0x10}, "ADC 10,X", 2},
		{"ldx swaps to zp,y", []uint8{0xB6, 0x10}, "LDX 10,Y", 2},
		{"ldx swaps to a,y", []uint8{0xBE, 0x00, 0x20}, "LDX 2000,Y", 3},
		{"absolute", []uint8{0x8D, 0x34, 0x12}, "STA 1234", 3},
		{"absolute x", []uint8{0x1E, 0x00, 0x90}, "ASL 9000,X", 3},
		{"indexed indirect", []uint8{0x01, 0x20}, "ORA (20,X)", 2},
		{"indirect indexed", []uint8{0x91, 0x20}, "STA (20),Y", 2},
		{"jmp absolute", []uint8{0x4C, 0x00, 0x80}, "JMP 8000", 3},
		{"jmp indirect", []uint8{0x6C, 0xFF, 0x10}, "JMP (10FF)", 3},
		{"jsr", []uint8{0x20, 0x00, 0x90}, "JSR 9000", 3},
		{"implied", []uint8{0xEA}, "NOP", 1},
		{"accumulator", []uint8{0x4A}, "LSR", 1},
		{"bit", []uint8{0x2C, 0x00, 0x20}, "BIT 2000", 3},
		{"invalid cc=11", []uint8{0x03}, "???", 1},
		{"group three hole", []uint8{0x04}, "???", 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := setup(0x8000, test.bytes...)
			out, width := Step(0x8000, m)
			got := strings.Join(strings.Fields(out)[2+width-1:], " ")
			if got != test.want {
				t.Errorf("disassembly: got %q (full %q) want %q", got, out, test.want)
			}
			if width != test.wantWidth {
				t.Errorf("width: got %d want %d", width, test.wantWidth)
			}
		})
	}
}

func TestStepRelative(t *testing.T) {
	// BCS +4 from 0x8000 resolves against the following instruction.
	m := setup(0x8000, 0xB0, 0x04)
	out, width := Step(0x8000, m)
	if width != 2 {
		t.Errorf("width: got %d want 2", width)
	}
	if !strings.Contains(out, "BCS 04 (8006)") {
		t.Errorf("target not resolved: %q", out)
	}

	// Negative displacement.
	m = setup(0x8000, 0xD0, 0xFC)
	out, _ = Step(0x8000, m)
	if !strings.Contains(out, "BNE FC (7FFE)") {
		t.Errorf("backward target not resolved: %q", out)
	}
}
