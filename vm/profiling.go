package vm

import (
	"fmt"

	"github.com/eel-lang/eel/opcodes"
)

// ProfileStats accumulates cheap interpreter counters, the same kind of
// always-on instrumentation the teacher exposes through its VM stats
// struct rather than through an external metrics library: this is
// diagnostic bookkeeping, not a logging concern.
type ProfileStats struct {
	Instructions uint64
	Calls        uint64
}

const diagnosticRingSize = 64

// note appends a formatted diagnostic line to the VM's ring buffer when
// Debug is at least DebugErrors. Ring entries are for host-side
// inspection (e.g. a `eel_perror`-style dump), not stdout logging.
func (vm *VirtualMachine) note(format string, args ...interface{}) {
	if vm.Debug < DebugErrors {
		return
	}
	line := fmt.Sprintf(format, args...)
	vm.diagnostics = append(vm.diagnostics, line)
	if len(vm.diagnostics) > diagnosticRingSize {
		vm.diagnostics = vm.diagnostics[len(vm.diagnostics)-diagnosticRingSize:]
	}
}

// trace records one instruction's execution for DebugTrace-level runs and
// advances the cheap instruction counter unconditionally.
func (vm *VirtualMachine) trace(f *CallFrame, inst *opcodes.Instruction) {
	vm.Profile.Instructions++
	if vm.Debug < DebugTrace {
		return
	}
	vm.note("%s:%d %s", f.Function.Name, f.IP, inst.Opcode)
}

// Diagnostics returns a copy of the recent diagnostic ring, newest last.
func (vm *VirtualMachine) Diagnostics() []string {
	out := make([]string, len(vm.diagnostics))
	copy(out, vm.diagnostics)
	return out
}
