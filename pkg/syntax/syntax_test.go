package syntax

import (
	"testing"

	"github.com/limitlesswill/semblance/pkg/x86"
)

func TestFormatOperandImmNasm(t *testing.T) {
	instr, _ := x86.Decode([]byte{0xB8, 0x34, 0x12}, false)
	got := FormatOperand(NASM, Context{Instr: &instr}, instr.Op.Arg1, instr.Arg1)
	if got != "1234h" {
		t.Fatalf("got %q, want 1234h", got)
	}
}

func TestFormatOperandImmGas(t *testing.T) {
	instr, _ := x86.Decode([]byte{0xB8, 0x34, 0x12}, false)
	got := FormatOperand(GAS, Context{Instr: &instr}, instr.Op.Arg1, instr.Arg1)
	if got != "$0x1234" {
		t.Fatalf("got %q, want $0x1234", got)
	}
}

func TestFormatOperandRegDest(t *testing.T) {
	instr, _ := x86.Decode([]byte{0xB8, 0x34, 0x12}, false)
	got := FormatOperand(NASM, Context{Instr: &instr}, instr.Op.Arg0, 0)
	if got != "ax" {
		t.Fatalf("got %q, want ax", got)
	}
}

func TestMangleShlByOne(t *testing.T) {
	instr, _ := x86.Decode([]byte{0xD1, 0xE0}, false)
	got := MangleMnemonic(NASM, &instr, instr.Op.Name)
	if got != "shl" {
		t.Fatalf("got %q, want shl", got)
	}
}

func TestMangleCwdeUnderOp32(t *testing.T) {
	instr, _ := x86.Decode([]byte{0x66, 0x98}, false)
	got := MangleMnemonic(GAS, &instr, instr.Op.Name)
	if got != "cwde" {
		t.Fatalf("got %q, want cwde", got)
	}
}

func TestFormatOperandSeg16OutOfRange(t *testing.T) {
	// 8C C0 -> mov ax, es; the SEG16 value is then passed directly as 7, a
	// reg-field value past the six named segment registers.
	instr, _ := x86.Decode([]byte{0x8C, 0xC0}, false)
	got := FormatOperand(NASM, Context{Instr: &instr}, x86.SEG16, 7)
	if got != "seg7" {
		t.Fatalf("got %q, want placeholder %q, not a panic", got, "seg7")
	}
}

func TestFormatPushMemWordNasm(t *testing.T) {
	instr, _ := x86.Decode([]byte{0xFF, 0x36, 0x04, 0x00}, false)
	got := FormatOperand(NASM, Context{Instr: &instr}, instr.Op.Arg0, 0)
	if got != "word [0004h]" {
		t.Fatalf("got %q, want \"word [0004h]\"", got)
	}
}
