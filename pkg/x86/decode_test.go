package x86

import "testing"

func TestDecodeMovRegImm16(t *testing.T) {
	// B8 34 12 -> mov ax, 0x1234
	instr, n := Decode([]byte{0xB8, 0x34, 0x12}, false)
	if n != 3 {
		t.Fatalf("consumed = %d, want 3", n)
	}
	if instr.Op.Name != "mov" {
		t.Fatalf("name = %q, want mov", instr.Op.Name)
	}
	if instr.Op.Arg0 != AX || instr.Op.Arg1 != IMM {
		t.Fatalf("args = %v,%v want AX,IMM", instr.Op.Arg0, instr.Op.Arg1)
	}
	if instr.Arg1 != 0x1234 {
		t.Fatalf("imm = %#x, want 0x1234", instr.Arg1)
	}
}

func TestDecodeMovRegImm32UnderOp32(t *testing.T) {
	// 66 B8 78 56 34 12 -> o32 mov eax, 0x12345678
	instr, n := Decode([]byte{0x66, 0xB8, 0x78, 0x56, 0x34, 0x12}, false)
	if n != 6 {
		t.Fatalf("consumed = %d, want 6", n)
	}
	if instr.Op.Size != 32 {
		t.Fatalf("size = %d, want 32", instr.Op.Size)
	}
	if instr.Arg1 != 0x12345678 {
		t.Fatalf("imm = %#x, want 0x12345678", instr.Arg1)
	}
}

func TestDecodeCallRel16(t *testing.T) {
	instr, n := Decode([]byte{0xE8, 0x00, 0x00}, false)
	if n != 3 || instr.Op.Name != "call" || instr.Op.Arg0 != REL16 {
		t.Fatalf("got %+v, n=%d", instr, n)
	}
}

func TestDecodeShortJmp(t *testing.T) {
	instr, n := Decode([]byte{0xEB, 0xFE}, false)
	if n != 2 || instr.Op.Name != "jmp" || instr.Arg0 != 0xFFFFFFFE { // -2, sign-extended
		t.Fatalf("got %+v, n=%d", instr, n)
	}
}

func TestDecodeFarCallWithReloc(t *testing.T) {
	// 9A 34 12 02 00 -> call far 0002:1234
	instr, n := Decode([]byte{0x9A, 0x34, 0x12, 0x02, 0x00}, false)
	if n != 5 || instr.Op.Name != "call" || instr.Op.Flags&OpFar == 0 {
		t.Fatalf("got %+v, n=%d", instr, n)
	}
	if instr.Arg0 != 0x1234 || instr.FarSeg != 0x0002 {
		t.Fatalf("off=%#x seg=%#x, want 0x1234/0x0002", instr.Arg0, instr.FarSeg)
	}
}

func TestDecodePushMemWord(t *testing.T) {
	// FF 36 04 00 -> push word [0004h]  (opcode group /6, mod=0 rm=6 -> direct disp16)
	instr, n := Decode([]byte{0xFF, 0x36, 0x04, 0x00}, false)
	if n != 4 || instr.Op.Name != "push" || instr.Op.Flags&OpStack == 0 {
		t.Fatalf("got %+v, n=%d", instr, n)
	}
	if !instr.ModRM.IsMemory || !instr.ModRM.Mem.Direct || instr.ModRM.Mem.Disp != 0x0004 {
		t.Fatalf("modrm = %+v", instr.ModRM)
	}
}

func TestDecodeShlByOne(t *testing.T) {
	// D1 E0 -> shl ax, 1
	instr, n := Decode([]byte{0xD1, 0xE0}, false)
	if n != 2 || instr.Op.Name != "shl" || instr.Op.Arg1 != ONE {
		t.Fatalf("got %+v, n=%d", instr, n)
	}
	if instr.ModRM.IsMemory || instr.ModRM.Reg != 0 {
		t.Fatalf("modrm = %+v, want reg ax(0)", instr.ModRM)
	}
}

func TestDecodeAamTieBreak(t *testing.T) {
	instr, _ := Decode([]byte{0xD4, 0x0A}, false)
	if instr.Op.Name != "aam" || instr.Arg0 != 0 {
		t.Fatalf("got %+v", instr)
	}
}

func TestDecodeCwdeUnderOp32(t *testing.T) {
	instr, n := Decode([]byte{0x66, 0x98}, false)
	if n != 2 || instr.Op.Name != "cwde" {
		t.Fatalf("got %+v, n=%d", instr, n)
	}
}

func TestDecodeJecxzUnderAddr32(t *testing.T) {
	instr, n := Decode([]byte{0x67, 0xE3, 0x02}, false)
	if n != 3 || instr.Op.Name != "jecxz" {
		t.Fatalf("got %+v, n=%d", instr, n)
	}
}

func TestDecodeUnknownOpcodeResynchronizes(t *testing.T) {
	instr, n := Decode([]byte{0x0F, 0xFF}, false)
	if n != 2 {
		t.Fatalf("consumed = %d, want 2 (still past the two-byte opcode)", n)
	}
	if instr.Op.Name != "" {
		t.Fatalf("name = %q, want empty for unrecognized opcode", instr.Op.Name)
	}
}

func TestDecodeDuplicateSegmentPrefix(t *testing.T) {
	instr, _ := Decode([]byte{0x26, 0x2E, 0x90}, false)
	if instr.PrefixError == "" {
		t.Fatal("want a PrefixError for duplicate segment override")
	}
}

func TestDecodeRegFieldCarriesModRMReg(t *testing.T) {
	// 00 D8 -> add al, bl (reg field = 3 = bl)
	instr, n := Decode([]byte{0x00, 0xD8}, false)
	if n != 2 {
		t.Fatalf("consumed = %d, want 2", n)
	}
	if instr.Arg1 != 3 {
		t.Fatalf("reg field value = %d, want 3 (bl)", instr.Arg1)
	}
}

func TestDecodeMovzxByteSource(t *testing.T) {
	// 0F B6 C1 -> movzx ax, cl (reg field = 0 = ax, rm = 1 = cl; 16-bit default)
	instr, n := Decode([]byte{0x0F, 0xB6, 0xC1}, false)
	if n != 3 {
		t.Fatalf("consumed = %d, want 3", n)
	}
	if instr.Op.Name != "movzx" {
		t.Fatalf("name = %q, want movzx", instr.Op.Name)
	}
	if instr.Arg0 != 0 {
		t.Fatalf("dest reg field = %d, want 0 (ax)", instr.Arg0)
	}
	if instr.ModRM.IsMemory {
		t.Fatal("mod 3 should decode as register form")
	}
	if instr.ModRM.Reg != 1 {
		t.Fatalf("source reg = %d, want 1 (cl)", instr.ModRM.Reg)
	}
}
