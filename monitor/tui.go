package monitor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/apexdev/ya6502/cpu"
	"github.com/apexdev/ya6502/disassemble"
	"github.com/apexdev/ya6502/memory"
)

// The full screen front end is a plain view over the same chip the line
// monitor drives; stepping goes through the exact same Step call.

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	pcStyle    = lipgloss.NewStyle().Reverse(true)
)

// runCap bounds how many instructions one 'r' keypress executes so the
// UI stays responsive on free running programs.
const runCap = 1 << 20

type tuiModel struct {
	cpu    *cpu.Chip
	mem    *memory.MMU
	status cpu.Status
}

// Init implements tea.Model. There is no initial command.
func (m tuiModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model, mapping keys onto debugger actions.
func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "enter":
			m.status = m.cpu.Step(true)
		case "s":
			m.status = m.cpu.Step(false)
		case "r":
			for i := 0; i < runCap; i++ {
				m.status = m.cpu.Step(false)
				if m.status != cpu.CONTINUE {
					break
				}
			}
		}
	}
	return m, nil
}

// flagLine renders P as NV-BDIZC with cleared flags lowercased.
func (m tuiModel) flagLine() string {
	names := "NV-BDIZC"
	var sb strings.Builder
	for i, r := range names {
		if m.cpu.P&(0x80>>i) != 0 {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(rune(strings.ToLower(string(r))[0]))
		}
	}
	return sb.String()
}

func (m tuiModel) registers() string {
	c := m.cpu
	return fmt.Sprintf("%s\nA:  $%02X\nX:  $%02X\nY:  $%02X\nSP: $%02X\nPC: $%04X\nP:  %s\ncycles: %d",
		titleStyle.Render("CPU"), c.A, c.X, c.Y, c.S, c.PC, m.flagLine(), c.Cycles)
}

// memoryWindow renders 8 rows of 16 bytes surrounding the PC, with the
// PC byte highlighted.
func (m tuiModel) memoryWindow() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Memory"))
	start := m.cpu.PC &^ 0x000F
	if start >= 0x30 {
		start -= 0x30
	}
	for row := 0; row < 8; row++ {
		addr := start + uint16(row*16)
		sb.WriteString(fmt.Sprintf("\n$%04X:", addr))
		for col := 0; col < 16; col++ {
			a := addr + uint16(col)
			cell := fmt.Sprintf("%02X", m.mem.ReadByte(a))
			if a == m.cpu.PC {
				cell = pcStyle.Render(cell)
			}
			sb.WriteString(" " + cell)
		}
	}
	return sb.String()
}

func (m tuiModel) code() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Disassembly"))
	pc := m.cpu.PC
	for i := 0; i < 8; i++ {
		line, width := disassemble.Step(pc, m.mem)
		sb.WriteString("\n" + line)
		pc += uint16(width)
	}
	return sb.String()
}

func (m tuiModel) diagnostics() string {
	c := m.cpu
	return titleStyle.Render("Last step") + "\n" + spew.Sdump(struct {
		Status         string
		LastGoodPC     uint16
		LastJumpOrigin uint16
		LastJumpTarget uint16
	}{m.status.String(), c.LastGoodPC, c.LastJumpOrigin, c.LastJumpTarget})
}

// View implements tea.Model.
func (m tuiModel) View() string {
	top := lipgloss.JoinHorizontal(
		lipgloss.Top,
		panelStyle.Render(m.registers()),
		panelStyle.Render(m.memoryWindow()),
	)
	bottom := lipgloss.JoinHorizontal(
		lipgloss.Top,
		panelStyle.Render(m.code()),
		panelStyle.Render(m.diagnostics()),
	)
	help := "space/enter = step    s = step (honor breakpoints)    r = run    q = quit"
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, help)
}

// Debug starts the full screen debugger over the given chip and memory.
func Debug(c *cpu.Chip, mem *memory.MMU) error {
	_, err := tea.NewProgram(tuiModel{cpu: c, mem: mem}).Run()
	return err
}
