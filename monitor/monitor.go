// Package monitor implements the interactive debugger shell driving a
// CPU/MMU pair: single stepping, free running, breakpoints, memory
// inspection, PC jumps and per-instruction logging. Commands are
// newline delimited and dispatched on their first character.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apexdev/ya6502/cpu"
	"github.com/apexdev/ya6502/disassemble"
	"github.com/apexdev/ya6502/memory"
)

// Monitor owns the REPL state around one chip.
type Monitor struct {
	cpu *cpu.Chip
	mem *memory.MMU
	in  *bufio.Scanner
	out io.Writer

	logPath string
	logFile io.WriteCloser
}

// New creates a monitor reading commands from in and writing to out.
func New(c *cpu.Chip, m *memory.MMU, in io.Reader, out io.Writer) *Monitor {
	return &Monitor{
		cpu: c,
		mem: m,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// SetLogPath arranges for each executed instruction to be logged to the
// given file. The file is created lazily on the first step.
func (m *Monitor) SetLogPath(path string) {
	m.logPath = path
}

// ParseLiteral parses the numeric literal forms the debugger accepts:
// decimal, 0x… and $… hex, and 0b… binary. Leading whitespace is fine.
func ParseLiteral(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "$"):
		base = 16
		s = s[1:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric input: %v", err)
	}
	return uint16(v), nil
}

// DumpState prints the register file, the instruction under the PC and
// the jump diagnostics.
func (m *Monitor) DumpState() {
	c := m.cpu
	inst := m.mem.ReadByte(c.PC)
	next := m.mem.ReadWord(c.PC + 1)
	dis, _ := disassemble.Step(c.PC, m.mem)
	fmt.Fprintf(m.out, "CPU State:\n")
	fmt.Fprintf(m.out, "Instruction: 0x%x (%s)\n", inst, strings.TrimSpace(dis))
	fmt.Fprintf(m.out, "Next Word: 0x%x\n", next)
	fmt.Fprintf(m.out, "A: 0x%x\n", c.A)
	fmt.Fprintf(m.out, "X: 0x%x\n", c.X)
	fmt.Fprintf(m.out, "Y: 0x%x\n", c.Y)
	fmt.Fprintf(m.out, "SP: 0x%x\n", c.S)
	fmt.Fprintf(m.out, "PC: 0x%x\n", c.PC)
	fmt.Fprintf(m.out, "SF: 0b%s\n\n", strconv.FormatUint(uint64(c.P), 2))
	fmt.Fprintf(m.out, "Last known good instruction was at 0x%x\n", c.LastGoodPC)
	fmt.Fprintf(m.out, "How did we get here? 0x%x jumped to 0x%x\n", c.LastJumpOrigin, c.LastJumpTarget)
}

// LogState renders the one line execution log entry for the instruction
// about to run: PC and opcode, 32 spaces, then the register file. All
// lowercase hex, zero padded.
func (m *Monitor) LogState() string {
	c := m.cpu
	inst := m.mem.ReadByte(c.PC)
	return fmt.Sprintf("%04x %02x%32sA:%02x X:%02x Y:%02x P:%02x", c.PC, inst, "", c.A, c.X, c.Y, c.P)
}

// logInstruction appends the log line for the upcoming instruction,
// opening the log file on first use. Logging is dropped (with a
// message) if the file cannot be created.
func (m *Monitor) logInstruction() {
	if m.logPath == "" {
		return
	}
	if m.logFile == nil {
		f, err := os.Create(m.logPath)
		if err != nil {
			fmt.Fprintf(m.out, "Could not open log file: %v\n", err)
			m.logPath = ""
			return
		}
		m.logFile = f
	}
	fmt.Fprintln(m.logFile, m.LogState())
}

// Run drives the REPL until quit or EOF. Returns only I/O errors from
// the command stream; CPU trouble pauses the loop instead of ending it.
func (m *Monitor) Run() error {
	defer func() {
		if m.logFile != nil {
			m.logFile.Close()
		}
	}()

	m.DumpState()
	fmt.Fprintf(m.out, "\nPress Enter to execute next instruction or 'q' to quit\n")

	paused := true
	for {
		bypassBreakpoints := false
		if paused {
			if !m.in.Scan() {
				// EOF on the command stream quits.
				return m.in.Err()
			}
			input := m.in.Text()
			parts := strings.Fields(input)

			cmd := byte(' ')
			if len(parts) > 0 {
				cmd = parts[0][0]
			} else if len(input) == 0 {
				bypassBreakpoints = true
			}

			switch cmd {
			case 'q', 'Q':
				fmt.Fprintf(m.out, "Quitting emulator...\n")
				return nil
			case 't', 'T':
				if len(parts) > 1 {
					var err error
					switch parts[1] {
					case "MOS":
						err = m.cpu.SetType(cpu.CPU_MOS)
					case "NES":
						err = m.cpu.SetType(cpu.CPU_NES)
					default:
						fmt.Fprintf(m.out, "Unknown type.\n")
						err = fmt.Errorf("unknown type")
					}
					if err == nil {
						fmt.Fprintf(m.out, "Successfully switched 6502 type.\n")
					}
				} else {
					fmt.Fprintf(m.out, "Specify the type of 6502.\n")
				}
				continue
			case 'l', 'L':
				if len(parts) > 1 {
					m.SetLogPath(parts[1])
					fmt.Fprintf(m.out, "Logging to '%s'\n", parts[1])
				} else {
					fmt.Fprintf(m.out, "Please specify a file path to log to.\n")
				}
				continue
			case 'j', 'J':
				if loc, err := m.parseArg(parts); err == nil {
					fmt.Fprintf(m.out, "Jumping to 0x%x\n", loc)
					m.cpu.PC = loc
				}
				continue
			case 'b', 'B':
				if loc, err := m.parseArg(parts); err == nil {
					fmt.Fprintf(m.out, "Breakpoint set at 0x%x\n", loc)
					m.cpu.AddBreakpoint(loc)
				}
				continue
			case 'r', 'R':
				fmt.Fprintf(m.out, "Running...\n")
				paused = false
			case 'i', 'I':
				if len(parts) > 1 {
					if loc, err := m.parseArg(parts); err == nil {
						fmt.Fprintf(m.out, "Value at 0x%x is 0x%x\n", loc, m.mem.ReadByte(loc))
					}
				} else {
					m.DumpState()
				}
				continue
			default:
				if cmd != ' ' || len(parts) > 0 {
					fmt.Fprintf(m.out, "Stepping one instruction.\n")
				}
			}
		}

		m.logInstruction()

		switch m.cpu.Step(bypassBreakpoints) {
		case cpu.HALT:
			m.DumpState()
			fmt.Fprintf(m.out, "A halt was detected!\n")
			paused = true
		case cpu.INVALID:
			m.DumpState()
			fmt.Fprintf(m.out, "The CPU encountered an invalid instruction!\n")
			fmt.Fprintf(m.out, "Execution may be resumed, but unexpected behavior could occur.\n")
			paused = true
		case cpu.BREAKPOINT:
			m.DumpState()
			fmt.Fprintf(m.out, "Breakpoint hit!\n")
			paused = true
		}
	}
}

// parseArg pulls the numeric argument out of a command, reporting parse
// trouble to the user.
func (m *Monitor) parseArg(parts []string) (uint16, error) {
	if len(parts) < 2 {
		err := fmt.Errorf("missing argument")
		fmt.Fprintf(m.out, "Invalid numeric input: %v\n", err)
		return 0, err
	}
	loc, err := ParseLiteral(parts[1])
	if err != nil {
		fmt.Fprintf(m.out, "Invalid numeric input: %v\n", err)
		return 0, err
	}
	return loc, nil
}
