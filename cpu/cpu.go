// Package cpu defines the 6502 architecture and provides
// the methods needed to run the CPU and interface with it
// for emulation.
package cpu

import (
	"fmt"
	"sort"

	"github.com/apexdev/ya6502/memory"
)

// CPUType is an enumeration of the valid CPU types.
type CPUType int

const (
	CPU_UNIMPLEMENTED CPUType = iota // Start of valid cpu enumerations.
	CPU_MOS                          // Stock NMOS 6502 with BCD arithmetic.
	CPU_NES                          // Ricoh 2A03 variant used in the NES which is identical except BCD mode is unimplemented.
	CPU_MAX                          // End of CPU enumerations.
)

// String implements fmt.Stringer with the names the debugger accepts.
func (c CPUType) String() string {
	switch c {
	case CPU_MOS:
		return "MOS"
	case CPU_NES:
		return "NES"
	}
	return fmt.Sprintf("CPUType(%d)", int(c))
}

// Status is the result of executing one instruction.
type Status int

const (
	CONTINUE   Status = iota // Instruction completed, PC moved on.
	HALT                     // Instruction completed but left PC where it started.
	INVALID                  // Opcode's (cc, aaa) pair has no instruction. PC has advanced by one.
	BREAKPOINT               // PC sits on a breakpoint; nothing was executed.
)

// String implements fmt.Stringer for Status.
func (s Status) String() string {
	switch s {
	case CONTINUE:
		return "CONTINUE"
	case HALT:
		return "HALT"
	case INVALID:
		return "INVALID"
	case BREAKPOINT:
		return "BREAKPOINT"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

const (
	RESET_VECTOR = uint16(0xFFFC)
	IRQ_VECTOR   = uint16(0xFFFE)

	P_NEGATIVE  = uint8(0x80)
	P_OVERFLOW  = uint8(0x40)
	P_S1        = uint8(0x20) // Always 1 when pushed.
	P_B         = uint8(0x10) // Set on BRK/PHP pushes.
	P_DECIMAL   = uint8(0x8)
	P_INTERRUPT = uint8(0x4)
	P_ZERO      = uint8(0x2)
	P_CARRY     = uint8(0x1)
)

// microOp is one bus transaction type. Every cycle the CPU spends is
// one of these.
type microOp int

const (
	kUOP_NONE  microOp = iota // Idle cycle (internal stall).
	kUOP_FETCH                // Read mem[addrBus] into dataBus.
	kUOP_WRITE                // Write dataBus to mem[addrBus].
)

// addressMode is the resolved addressing mode of a grouped opcode.
type addressMode int

const (
	kMODE_INVALID addressMode = iota
	kMODE_IMM
	kMODE_ZPG
	kMODE_ZPX
	kMODE_ZPY
	kMODE_ABS
	kMODE_ABX
	kMODE_ABY
	kMODE_ACC
	kMODE_ZPXIND // (d,x) - indexed indirect
	kMODE_ZPYIND // (d),y - indirect indexed
)

// Opcodes decompose into aaa (operation), bbb (addressing) and cc
// (group) bit fields. The mode is a pure table lookup on (cc, bbb);
// cc == 0b11 never decodes.
var addrModeTable = [4][8]addressMode{
	{kMODE_IMM, kMODE_ZPG, kMODE_INVALID, kMODE_ABS, kMODE_INVALID, kMODE_ZPX, kMODE_INVALID, kMODE_ABX},
	{kMODE_ZPXIND, kMODE_ZPG, kMODE_IMM, kMODE_ABS, kMODE_ZPYIND, kMODE_ZPX, kMODE_ABY, kMODE_ABX},
	{kMODE_IMM, kMODE_ZPG, kMODE_ACC, kMODE_ABS, kMODE_INVALID, kMODE_ZPX, kMODE_INVALID, kMODE_ABX},
	{},
}

func decodeAddrMode(cc, bbb uint8) addressMode {
	return addrModeTable[cc][bbb]
}

func makeAddress(lo, hi uint8) uint16 {
	return uint16(lo) | (uint16(hi) << 8)
}

// Chip is one 6502 with its bus latches and cycle counter. It owns no
// memory of its own beyond the registers; all state lives behind the
// MMU it drives.
type Chip struct {
	A      uint8  // Accumulator register
	X      uint8  // X register
	Y      uint8  // Y register
	S      uint8  // Stack pointer (addresses page 1)
	P      uint8  // Status register
	PC     uint16 // Program counter
	Cycles uint64 // Cycle counter. Only runCycle advances it; Reset sets it to 7.

	// Diagnostics kept for the debugger: the PC of the last completed
	// instruction and where the last control transfer came from/went to.
	LastGoodPC     uint16
	LastJumpOrigin uint16
	LastJumpTarget uint16

	cpuType     CPUType
	mem         *memory.MMU
	addrBus     uint16   // Address of the most recent bus transaction.
	dataBus     uint8    // Byte just read or about to be written.
	breakpoints []uint16 // Sorted.
}

// InvalidCPUState represents an invalid CPU state in the emulator.
type InvalidCPUState struct {
	Reason string
}

// Error implements the interface for error types.
func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// ChipDef defines a 6502 processor.
type ChipDef struct {
	// Cpu is the distinct cpu type for this implementation (MOS or NES).
	Cpu CPUType
	// Mem is the MMU this chip drives.
	Mem *memory.MMU
}

// Init will create a new 6502 of the type requested and return it in
// reset state (PC loaded from the reset vector already in memory).
func Init(def *ChipDef) (*Chip, error) {
	if def.Cpu <= CPU_UNIMPLEMENTED || def.Cpu >= CPU_MAX {
		return nil, InvalidCPUState{fmt.Sprintf("CPU type value %d is invalid", def.Cpu)}
	}
	if def.Mem == nil {
		return nil, InvalidCPUState{"no memory attached"}
	}
	p := &Chip{
		cpuType: def.Cpu,
		mem:     def.Mem,
	}
	p.Reset()
	return p, nil
}

// Type returns the variant this chip emulates.
func (p *Chip) Type() CPUType {
	return p.cpuType
}

// SetType switches the variant at runtime (the debugger's t command).
func (p *Chip) SetType(t CPUType) error {
	if t <= CPU_UNIMPLEMENTED || t >= CPU_MAX {
		return InvalidCPUState{fmt.Sprintf("CPU type value %d is invalid", t)}
	}
	p.cpuType = t
	return nil
}

// Reset puts the chip back into its post-reset state: registers
// cleared, stack pointer moved as if PC/P had been pushed, interrupts
// disabled and the PC loaded from the reset vector. The hardware
// sequence costs 7 cycles so the counter starts there.
func (p *Chip) Reset() {
	p.A = 0
	p.X = 0
	p.Y = 0
	p.S = 0xFD
	p.P = P_INTERRUPT | P_S1
	p.PC = p.mem.ReadWord(RESET_VECTOR)
	p.Cycles = 7
}

// AddBreakpoint adds addr to the breakpoint set. Duplicates are dropped.
func (p *Chip) AddBreakpoint(addr uint16) {
	i := sort.Search(len(p.breakpoints), func(i int) bool { return p.breakpoints[i] >= addr })
	if i < len(p.breakpoints) && p.breakpoints[i] == addr {
		return
	}
	p.breakpoints = append(p.breakpoints, 0)
	copy(p.breakpoints[i+1:], p.breakpoints[i:])
	p.breakpoints[i] = addr
}

// Breakpoints returns the current breakpoint set in address order.
func (p *Chip) Breakpoints() []uint16 {
	out := make([]uint16, len(p.breakpoints))
	copy(out, p.breakpoints)
	return out
}

func (p *Chip) breakpointAt(addr uint16) bool {
	i := sort.Search(len(p.breakpoints), func(i int) bool { return p.breakpoints[i] >= addr })
	return i < len(p.breakpoints) && p.breakpoints[i] == addr
}

// runCycle performs one bus transaction through the latches and is the
// only place the cycle counter advances.
func (p *Chip) runCycle(op microOp) {
	switch op {
	case kUOP_FETCH:
		p.dataBus = p.mem.ReadByte(p.addrBus)
	case kUOP_WRITE:
		p.mem.WriteByte(p.addrBus, p.dataBus)
	}
	p.Cycles++
}

// stallCycles burns n idle cycles.
func (p *Chip) stallCycles(n int) {
	for i := 0; i < n; i++ {
		p.runCycle(kUOP_NONE)
	}
}

// fetchByte reads one byte through the bus, costing one cycle.
func (p *Chip) fetchByte(addr uint16) uint8 {
	p.addrBus = addr
	p.runCycle(kUOP_FETCH)
	return p.dataBus
}

// writeByte stores one byte through the bus, costing one cycle.
func (p *Chip) writeByte(addr uint16, val uint8) {
	p.addrBus = addr
	p.dataBus = val
	p.runCycle(kUOP_WRITE)
}

// pushStack pushes the given byte onto the stack and adjusts the stack
// pointer accordingly.
func (p *Chip) pushStack(val uint8) {
	p.writeByte(0x0100|uint16(p.S), val)
	p.S--
}

// popStack pops the top byte off the stack and adjusts the stack
// pointer accordingly.
func (p *Chip) popStack() uint8 {
	p.S++
	return p.fetchByte(0x0100 | uint16(p.S))
}

// pushStatus pushes P with B and the always-set bit forced on.
func (p *Chip) pushStatus() {
	p.pushStack(p.P | P_B | P_S1)
}

// popStatus pulls P from the stack. B and the always-set bit keep their
// prior in-register values; the stacked copies are ignored.
func (p *Chip) popStatus() {
	retain := P_B | P_S1
	p.P = (p.P & retain) | (p.popStack() &^ retain)
}

// setFlag sets or clears one status bit.
func (p *Chip) setFlag(flag uint8, on bool) {
	p.P &^= flag
	if on {
		p.P |= flag
	}
}

func (p *Chip) flagSet(flag uint8) bool {
	return p.P&flag != 0
}

// zeroCheck sets the Z flag based on the value.
func (p *Chip) zeroCheck(val uint8) {
	p.setFlag(P_ZERO, val == 0)
}

// negativeCheck sets the N flag based on bit 7 of the value.
func (p *Chip) negativeCheck(val uint8) {
	p.setFlag(P_NEGATIVE, val&0x80 != 0)
}

// overflowCheck sets the V flag if the ALU operation caused a two's
// complement sign change.
// Taken from http://www.righto.com/2012/12/the-6502-overflow-flag-explained.html
func (p *Chip) overflowCheck(reg uint8, arg uint8, res uint8) {
	p.setFlag(P_OVERFLOW, (reg^res)&(arg^res)&0x80 != 0)
}

// loadRegister takes the val and inserts it into the register passed
// in, then does Z and N checks against the new value.
func (p *Chip) loadRegister(reg *uint8, val uint8) {
	*reg = val
	p.zeroCheck(*reg)
	p.negativeCheck(*reg)
}

// compare implements the logic for all CMP/CPX/CPY instructions: C when
// the register is unsigned >= the operand, Z on equality, N from bit 7
// of the 8 bit difference.
func (p *Chip) compare(reg uint8, val uint8) {
	p.setFlag(P_CARRY, reg >= val)
	diff := reg - val
	p.zeroCheck(diff)
	p.negativeCheck(diff)
}

// decimalActive reports whether BCD adjustment applies. The Ricoh
// version didn't implement BCD (used in the NES) so D is ignored there.
func (p *Chip) decimalActive() bool {
	return p.flagSet(P_DECIMAL) && p.cpuType != CPU_NES
}

// nibbleAdd adds two nibbles plus a carry into a 5 bit intermediate.
// Carry out means >9 when BCD is active, >15 otherwise.
func (p *Chip) nibbleAdd(a, b, carry uint8) (uint8, bool) {
	sum := a + b + carry
	if p.decimalActive() {
		return sum, sum > 0x09
	}
	return sum, sum > 0x0F
}

// fullAdd implements ADC and sets all associated flags. SBC is the same
// operation on the ones complement of the operand.
// Flags are computed from the binary composition of the nibble results;
// the decimal adjust then reduces each 5 bit nibble intermediate modulo
// 10. With non-BCD operands in decimal mode the result is whatever the
// NMOS ALU would produce, which is not a meaningful number.
// BCD details - http://6502.org/tutorials/decimal_mode.html
func (p *Chip) fullAdd(operand uint8) {
	carry := p.P & P_CARRY

	loSum, halfCarry := p.nibbleAdd(p.A&0x0F, operand&0x0F, carry)
	hc := uint8(0)
	if halfCarry {
		hc = 1
	}
	hiSum, carryOut := p.nibbleAdd(p.A>>4, operand>>4, hc)

	res := (loSum & 0x0F) | (hiSum&0x0F)<<4
	p.setFlag(P_CARRY, carryOut)
	p.zeroCheck(res)
	p.overflowCheck(p.A, operand, res)
	p.negativeCheck(res)

	if p.decimalActive() {
		res = (loSum % 10) | (hiSum%10)<<4
	}
	p.A = res
}

// advancePC moves the PC past a grouped instruction according to its
// addressing mode. Invalid modes count as a single byte so execution
// can resume past them.
func (p *Chip) advancePC(mode addressMode) {
	switch mode {
	case kMODE_ACC, kMODE_INVALID:
		p.PC++
	case kMODE_IMM, kMODE_ZPG, kMODE_ZPX, kMODE_ZPY, kMODE_ZPXIND, kMODE_ZPYIND:
		p.PC += 2
	case kMODE_ABS, kMODE_ABX, kMODE_ABY:
		p.PC += 3
	}
}

// loadOperand resolves the addressing mode and fetches the operand
// byte, paying the bus cycles each mode costs. next is the byte after
// the opcode which has already been fetched.
func (p *Chip) loadOperand(mode addressMode, next uint8) uint8 {
	switch mode {
	case kMODE_IMM:
		return next
	case kMODE_ACC:
		return p.A
	case kMODE_ZPG:
		return p.fetchByte(uint16(next))
	case kMODE_ZPX:
		// The 6502 wastes a cycle reading the unindexed ZP address.
		_ = p.fetchByte(uint16(next))
		return p.fetchByte(uint16(next + p.X))
	case kMODE_ZPY:
		_ = p.fetchByte(uint16(next))
		return p.fetchByte(uint16(next + p.Y))
	case kMODE_ABS:
		hi := p.fetchByte(p.PC + 2)
		return p.fetchByte(makeAddress(next, hi))
	case kMODE_ABX:
		hi := p.fetchByte(p.PC + 2)
		// TODO(apexdev): crossing a page here costs the real chip an extra cycle.
		return p.fetchByte(makeAddress(next, hi) + uint16(p.X))
	case kMODE_ABY:
		hi := p.fetchByte(p.PC + 2)
		// TODO(apexdev): crossing a page here costs the real chip an extra cycle.
		return p.fetchByte(makeAddress(next, hi) + uint16(p.Y))
	case kMODE_ZPXIND:
		// The pointer table lives in the zero page, indexed by X with wrap.
		lo := p.fetchByte(uint16(next + p.X))
		hi := p.fetchByte(uint16(next + p.X + 1))
		return p.fetchByte(makeAddress(lo, hi))
	case kMODE_ZPYIND:
		// The zero page holds the base pointer; Y indexes after the
		// indirection.
		lo := p.fetchByte(uint16(next))
		hi := p.fetchByte(uint16(next + 1))
		// TODO(apexdev): crossing a page here costs the real chip an extra cycle.
		return p.fetchByte(makeAddress(lo, hi) + uint16(p.Y))
	}
	return 0
}

// storeOperand mirrors loadOperand with a terminal write in place of
// the final fetch. ACC mode writes the accumulator directly with no bus
// cycle.
func (p *Chip) storeOperand(mode addressMode, next uint8, val uint8) {
	switch mode {
	case kMODE_ACC:
		p.A = val
	case kMODE_ZPG:
		p.writeByte(uint16(next), val)
	case kMODE_ZPX:
		_ = p.fetchByte(uint16(next))
		p.writeByte(uint16(next+p.X), val)
	case kMODE_ZPY:
		_ = p.fetchByte(uint16(next))
		p.writeByte(uint16(next+p.Y), val)
	case kMODE_ABS:
		hi := p.fetchByte(p.PC + 2)
		p.writeByte(makeAddress(next, hi), val)
	case kMODE_ABX:
		hi := p.fetchByte(p.PC + 2)
		// TODO(apexdev): the real chip spends an extra cycle re-reading
		// the unindexed address on indexed stores.
		p.writeByte(makeAddress(next, hi)+uint16(p.X), val)
	case kMODE_ABY:
		hi := p.fetchByte(p.PC + 2)
		p.writeByte(makeAddress(next, hi)+uint16(p.Y), val)
	case kMODE_ZPXIND:
		lo := p.fetchByte(uint16(next + p.X))
		hi := p.fetchByte(uint16(next + p.X + 1))
		p.writeByte(makeAddress(lo, hi), val)
	case kMODE_ZPYIND:
		lo := p.fetchByte(uint16(next))
		hi := p.fetchByte(uint16(next + 1))
		p.writeByte(makeAddress(lo, hi)+uint16(p.Y), val)
	}
}

// Step executes one instruction and reports how it went. If the PC sits
// on a breakpoint and bypassBreakpoints is false nothing runs and no
// cycles elapse. An instruction that completes without moving the PC
// reports HALT; an opcode whose (cc, aaa) pair has no instruction
// (cc == 0b11, or the empty group-three row) reports INVALID with the
// PC advanced one byte so execution may resume on demand. Other
// undocumented encodings inside a valid row are not reported.
func (p *Chip) Step(bypassBreakpoints bool) Status {
	if !bypassBreakpoints && p.breakpointAt(p.PC) {
		return BREAKPOINT
	}

	oldPC := p.PC

	p.addrBus = p.PC
	p.runCycle(kUOP_FETCH)
	op := p.dataBus

	// All instructions pay a fetch of the following byte whether they
	// need one or not; one-byte instructions read it and ignore it.
	p.addrBus = p.PC + 1
	p.runCycle(kUOP_FETCH)
	next := p.dataBus

	aaa := (op & 0xE0) >> 5
	bbb := (op & 0x1C) >> 2
	cc := op & 0x03
	mode := decodeAddrMode(cc, bbb)

	// The stray one-byte opcodes (and JSR) come first; the grouped
	// decode below never sees them. Control transfers set PC to
	// target-1 so the shared PC++ lands on the target.
	if p.stepImplied(op, next) {
		p.PC++
		return p.finish(oldPC)
	}

	switch cc {
	case 0b01:
		p.stepGroupOne(aaa, mode, next)
	case 0b10:
		p.stepGroupTwo(aaa, mode, next)
	case 0b00:
		if done, status := p.stepGroupThree(aaa, bbb, mode, next); !done {
			return status
		}
	default:
		p.PC++
		return INVALID
	}

	return p.finish(oldPC)
}

// finish records the diagnostics for a completed instruction and turns
// "PC didn't move" into HALT.
func (p *Chip) finish(oldPC uint16) Status {
	p.LastGoodPC = oldPC
	if p.PC == oldPC {
		return HALT
	}
	return CONTINUE
}

// stepImplied executes op if it is one of the explicitly matched
// one-byte opcodes (or JSR) and returns true when it did. The caller
// applies the shared PC++ afterwards.
func (p *Chip) stepImplied(op uint8, next uint8) bool {
	switch op {
	case 0xEA:
		// NOP
	case 0x00:
		// BRK - pushes PC+2 and status with B set, disables interrupts
		// and vectors through 0xFFFE.
		ret := p.PC + 2
		p.pushStack(uint8(ret >> 8))
		p.pushStack(uint8(ret & 0xFF))
		p.pushStatus()
		p.P |= P_B | P_INTERRUPT
		vec := makeAddress(p.fetchByte(IRQ_VECTOR), p.fetchByte(IRQ_VECTOR+1))
		p.LastJumpOrigin = p.PC
		p.LastJumpTarget = vec
		p.PC = vec - 1
	case 0x40:
		// RTI - status first (B and the always-set bit stay as they
		// were), then the return address.
		p.popStatus()
		lo := p.popStack()
		hi := p.popStack()
		target := makeAddress(lo, hi)
		p.LastJumpOrigin = p.PC
		p.LastJumpTarget = target
		p.PC = target - 1
	case 0x60:
		// RTS - JSR pushed the return address minus one, so here the
		// shared PC++ is the correction rather than something to
		// compensate for.
		lo := p.popStack()
		hi := p.popStack()
		target := makeAddress(lo, hi)
		p.LastJumpOrigin = p.PC
		p.LastJumpTarget = target + 1
		p.PC = target
	case 0x20:
		// JSR - pushes PC+2 (the address of the next instruction minus
		// one) high byte first.
		ret := p.PC + 2
		p.pushStack(uint8(ret >> 8))
		p.pushStack(uint8(ret & 0xFF))
		target := makeAddress(next, p.fetchByte(p.PC+2))
		p.LastJumpOrigin = p.PC
		p.LastJumpTarget = target
		p.PC = target - 1

	case 0x18:
		// CLC
		p.setFlag(P_CARRY, false)
	case 0x38:
		// SEC
		p.setFlag(P_CARRY, true)
	case 0x58:
		// CLI
		p.setFlag(P_INTERRUPT, false)
	case 0x78:
		// SEI
		p.setFlag(P_INTERRUPT, true)
	case 0xB8:
		// CLV
		p.setFlag(P_OVERFLOW, false)
	case 0xD8:
		// CLD
		p.setFlag(P_DECIMAL, false)
	case 0xF8:
		// SED
		p.setFlag(P_DECIMAL, true)

	case 0xA8:
		// TAY
		p.loadRegister(&p.Y, p.A)
	case 0x98:
		// TYA
		p.loadRegister(&p.A, p.Y)
	case 0xAA:
		// TAX
		p.loadRegister(&p.X, p.A)
	case 0x8A:
		// TXA
		p.loadRegister(&p.A, p.X)
	case 0x9A:
		// TXS - no flags.
		p.S = p.X
	case 0xBA:
		// TSX
		p.loadRegister(&p.X, p.S)

	case 0x08:
		// PHP
		p.pushStatus()
	case 0x28:
		// PLP
		p.popStatus()
	case 0x48:
		// PHA
		p.pushStack(p.A)
	case 0x68:
		// PLA
		p.loadRegister(&p.A, p.popStack())

	case 0xC8:
		// INY
		p.loadRegister(&p.Y, p.Y+1)
	case 0x88:
		// DEY
		p.loadRegister(&p.Y, p.Y-1)
	case 0xE8:
		// INX
		p.loadRegister(&p.X, p.X+1)
	case 0xCA:
		// DEX
		p.loadRegister(&p.X, p.X-1)

	default:
		return false
	}
	return true
}

// stepGroupOne handles the cc == 01 opcodes: the accumulator ALU block.
func (p *Chip) stepGroupOne(aaa uint8, mode addressMode, next uint8) {
	switch aaa {
	case 0b000:
		// ORA
		p.loadRegister(&p.A, p.A|p.loadOperand(mode, next))
	case 0b001:
		// AND
		p.loadRegister(&p.A, p.A&p.loadOperand(mode, next))
	case 0b010:
		// EOR
		p.loadRegister(&p.A, p.A^p.loadOperand(mode, next))
	case 0b011:
		// ADC
		p.fullAdd(p.loadOperand(mode, next))
	case 0b100:
		// STA
		p.storeOperand(mode, next, p.A)
	case 0b101:
		// LDA
		p.loadRegister(&p.A, p.loadOperand(mode, next))
	case 0b110:
		// CMP
		p.compare(p.A, p.loadOperand(mode, next))
	case 0b111:
		// SBC - ADC of the ones complement, BCD quirks included.
		p.fullAdd(^p.loadOperand(mode, next))
	}
	p.advancePC(mode)
}

// stepGroupTwo handles the cc == 10 opcodes: shifts, rotates and the
// X register block. The would-be accumulator forms of STX/LDX/DEC/INC
// are TXA/TAX/DEX/NOP and were already taken by stepImplied.
func (p *Chip) stepGroupTwo(aaa uint8, mode addressMode, next uint8) {
	if mode == kMODE_INVALID {
		// Unassigned encoding inside a valid operation row: skip it
		// silently, touch no flags and move past the opcode byte.
		p.advancePC(mode)
		return
	}
	switch aaa {
	case 0b000:
		// ASL
		v := p.loadOperand(mode, next)
		p.setFlag(P_CARRY, v&0x80 != 0)
		v <<= 1
		p.zeroCheck(v)
		p.negativeCheck(v)
		p.storeOperand(mode, next, v)
	case 0b001:
		// ROL
		v := p.loadOperand(mode, next)
		oldCarry := p.P & P_CARRY
		p.setFlag(P_CARRY, v&0x80 != 0)
		v = v<<1 | oldCarry
		p.zeroCheck(v)
		p.negativeCheck(v)
		p.storeOperand(mode, next, v)
	case 0b010:
		// LSR
		v := p.loadOperand(mode, next)
		p.setFlag(P_CARRY, v&0x01 != 0)
		v >>= 1
		p.zeroCheck(v)
		p.negativeCheck(v)
		p.storeOperand(mode, next, v)
	case 0b011:
		// ROR
		v := p.loadOperand(mode, next)
		oldCarry := p.P & P_CARRY
		p.setFlag(P_CARRY, v&0x01 != 0)
		v = v>>1 | oldCarry<<7
		p.zeroCheck(v)
		p.negativeCheck(v)
		p.storeOperand(mode, next, v)
	case 0b100:
		// STX - the index register swaps the zero page index: d,x
		// encodings mean d,y. The absolute indexed encodings are
		// unassigned; the store is skipped and no flags move.
		m := mode
		switch m {
		case kMODE_ZPX:
			m = kMODE_ZPY
		case kMODE_ZPY:
			m = kMODE_ZPX
		}
		if m != kMODE_ABX && m != kMODE_ABY {
			p.storeOperand(m, next, p.X)
		}
	case 0b101:
		// LDX - same index swap, and a,x encodings mean a,y.
		m := mode
		switch m {
		case kMODE_ZPX:
			m = kMODE_ZPY
		case kMODE_ZPY:
			m = kMODE_ZPX
		case kMODE_ABX:
			m = kMODE_ABY
		case kMODE_ABY:
			m = kMODE_ABX
		}
		p.loadRegister(&p.X, p.loadOperand(m, next))
	case 0b110:
		// DEC
		v := p.loadOperand(mode, next) - 1
		p.zeroCheck(v)
		p.negativeCheck(v)
		p.storeOperand(mode, next, v)
	case 0b111:
		// INC
		v := p.loadOperand(mode, next) + 1
		p.zeroCheck(v)
		p.negativeCheck(v)
		p.storeOperand(mode, next, v)
	}
	p.advancePC(mode)
}

// stepGroupThree handles the cc == 00 opcodes: branches, BIT, jumps and
// the Y register block. It returns done == false with a status when the
// instruction doesn't complete normally (the lone INVALID row).
func (p *Chip) stepGroupThree(aaa, bbb uint8, mode addressMode, next uint8) (bool, Status) {
	if bbb == 0b100 {
		// All conditional branches: aaa is ffc where ff picks the flag
		// and c the polarity to branch on.
		var flag uint8
		switch aaa >> 1 {
		case 0:
			flag = P_NEGATIVE
		case 1:
			flag = P_OVERFLOW
		case 2:
			flag = P_CARRY
		case 3:
			flag = P_ZERO
		}
		want := aaa&1 != 0
		taken := p.flagSet(flag) == want
		if taken {
			p.LastJumpOrigin = p.PC
			// TODO(apexdev): a taken branch to a new page costs a
			// second idle cycle.
			p.stallCycles(1)
			p.PC += uint16(int16(int8(next)))
		}
		p.PC += 2
		if taken {
			p.LastJumpTarget = p.PC
		}
		return true, CONTINUE
	}

	switch aaa {
	case 0b001:
		// BIT - zero page or absolute only.
		addr := uint16(next)
		if bbb == 0b011 {
			addr |= uint16(p.fetchByte(p.PC+2)) << 8
			p.PC++
		}
		m := p.fetchByte(addr)
		p.zeroCheck(p.A & m)
		p.setFlag(P_OVERFLOW, m&P_OVERFLOW != 0)
		p.negativeCheck(m)
		p.PC += 2
	case 0b010:
		// JMP a
		target := makeAddress(next, p.fetchByte(p.PC+2))
		p.LastJumpOrigin = p.PC
		p.LastJumpTarget = target
		p.PC = target
	case 0b011:
		// JMP (a) - the NMOS pointer read never leaves its page, so a
		// pointer at 0xxxFF takes its high byte from 0xxx00.
		ptr := makeAddress(next, p.fetchByte(p.PC+2))
		lo := p.fetchByte(ptr)
		hiAddr := ptr + 1
		if next == 0xFF {
			hiAddr = ptr & 0xFF00
		}
		target := makeAddress(lo, p.fetchByte(hiAddr))
		p.LastJumpOrigin = p.PC
		p.LastJumpTarget = target
		p.PC = target
	case 0b100:
		// STY - the a,x encoding is unassigned; skipped like STX.
		if mode != kMODE_ABX {
			p.storeOperand(mode, next, p.Y)
		}
		p.advancePC(mode)
	case 0b101:
		// LDY
		p.loadRegister(&p.Y, p.loadOperand(mode, next))
		p.advancePC(mode)
	case 0b110:
		// CPY
		p.compare(p.Y, p.loadOperand(mode, next))
		p.advancePC(mode)
	case 0b111:
		// CPX
		p.compare(p.X, p.loadOperand(mode, next))
		p.advancePC(mode)
	default:
		p.PC++
		return false, INVALID
	}
	return true, CONTINUE
}
