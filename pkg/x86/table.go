package x86

// opEntry is a row of the one-byte opcode dispatch table. group, when
// non-empty, means the ModR/M reg field (bits 3-5) selects among the
// Op variants in that slice instead of Name/Arg0/Arg1/Flags being used
// directly — this is the standard x86 "opcode group" extension mechanism
// (e.g. 0x80 is add/or/adc/sbb/and/sub/xor/cmp selected by reg field).
type opEntry struct {
	Op
	group []Op // indexed by ModR/M reg field 0-7; nil if not a group opcode
}

// table is indexed by the raw opcode byte (after prefixes are consumed).
// Unpopulated entries carry Name == "" and Decode reports them as unknown
// without failing: the caller still advances by one byte so scanning can
// resynchronize.
var table [256]opEntry

// table0F is indexed by the second byte of a 0F xx two-byte opcode.
var table0F [256]opEntry

func init() {
	// Data transfer: mov reg8/16,reg8/16 and reg8/16,r/m8/16 and reverse.
	table[0x88] = opEntry{Op: Op{Name: "mov", Size: 8, Arg0: RM, Arg1: REG}}
	table[0x89] = opEntry{Op: Op{Name: "mov", Size: 16, Arg0: RM, Arg1: REG}}
	table[0x8A] = opEntry{Op: Op{Name: "mov", Size: 8, Arg0: REG, Arg1: RM}}
	table[0x8B] = opEntry{Op: Op{Name: "mov", Size: 16, Arg0: REG, Arg1: RM}}
	table[0x8C] = opEntry{Op: Op{Name: "mov", Size: 16, Arg0: RM, Arg1: SEG16}}
	table[0x8E] = opEntry{Op: Op{Name: "mov", Size: 16, Arg0: SEG16, Arg1: RM}}
	table[0x8D] = opEntry{Op: Op{Name: "lea", Size: 16, Arg0: REG32, Arg1: MEM}}

	// mov reg,imm (B0-BF): size and destination register depend on the low
	// nibble and bit 3; split into two runs rather than one formula so the
	// Arg0 role (AL..BH vs AX..DI) is explicit per entry.
	reg8 := []Arg{AL, CL, DL, BL, AH, CH, DH, BH}
	reg16 := []Arg{AX, CX, DX, BX, SP, BP, SI, DI}
	for i := 0; i < 8; i++ {
		table[0xB0+i] = opEntry{Op: Op{Name: "mov", Size: 8, Arg0: reg8[i], Arg1: IMM}}
		table[0xB8+i] = opEntry{Op: Op{Name: "mov", Size: 16, Arg0: reg16[i], Arg1: IMM}}
	}
	table[0xC6] = opEntry{Op: Op{Name: "mov", Size: 8, Arg0: RM, Arg1: IMM8}}
	table[0xC7] = opEntry{Op: Op{Name: "mov", Size: 16, Arg0: RM, Arg1: IMM}}
	table[0xA0] = opEntry{Op: Op{Name: "mov", Size: 8, Arg0: ALS, Arg1: MOFFS16}}
	table[0xA1] = opEntry{Op: Op{Name: "mov", Size: 16, Arg0: AXS, Arg1: MOFFS16}}
	table[0xA2] = opEntry{Op: Op{Name: "mov", Size: 8, Arg0: MOFFS16, Arg1: ALS}}
	table[0xA3] = opEntry{Op: Op{Name: "mov", Size: 16, Arg0: MOFFS16, Arg1: AXS}}

	// push/pop, stack-size-suffixed (w under 16-bit, l under 32-bit OP32).
	for i := 0; i < 8; i++ {
		table[0x50+i] = opEntry{Op: Op{Name: "push", Size: 16, Arg0: reg16[i], Flags: OpStack}}
		table[0x58+i] = opEntry{Op: Op{Name: "pop", Size: 16, Arg0: reg16[i], Flags: OpStack}}
	}
	table[0xFF] = opEntry{group: []Op{
		{Name: "inc", Size: 16, Arg0: RM},
		{Name: "dec", Size: 16, Arg0: RM},
		{Name: "call", Size: 16, Arg0: RM},
		{Name: "call", Size: 16, Arg0: MEM, Flags: OpFar},
		{Name: "jmp", Size: 16, Arg0: RM},
		{Name: "jmp", Size: 16, Arg0: MEM, Flags: OpFar},
		{Name: "push", Size: 16, Arg0: RM, Flags: OpStack},
		{},
	}}
	table[0x8F] = opEntry{Op: Op{Name: "pop", Size: 16, Arg0: RM, Flags: OpStack}}
	table[0x06] = opEntry{Op: Op{Name: "push", Size: 16, Arg0: ES, Flags: OpStack}}
	table[0x07] = opEntry{Op: Op{Name: "pop", Size: 16, Arg0: ES, Flags: OpStack}}
	table[0x0E] = opEntry{Op: Op{Name: "push", Size: 16, Arg0: CS, Flags: OpStack}}
	table[0x16] = opEntry{Op: Op{Name: "push", Size: 16, Arg0: SS, Flags: OpStack}}
	table[0x17] = opEntry{Op: Op{Name: "pop", Size: 16, Arg0: SS, Flags: OpStack}}
	table[0x1E] = opEntry{Op: Op{Name: "push", Size: 16, Arg0: DS, Flags: OpStack}}
	table[0x1F] = opEntry{Op: Op{Name: "pop", Size: 16, Arg0: DS, Flags: OpStack}}
	table[0x68] = opEntry{Op: Op{Name: "push", Size: 16, Arg0: IMM, Flags: OpStack}}
	table[0x6A] = opEntry{Op: Op{Name: "push", Size: 16, Arg0: IMM8, Flags: OpStack}}
	table[0x60] = opEntry{Op: Op{Name: "pusha", Flags: OpStack}}
	table[0x61] = opEntry{Op: Op{Name: "popa", Flags: OpStack}}
	table[0x9C] = opEntry{Op: Op{Name: "pushf", Flags: OpStack}}
	table[0x9D] = opEntry{Op: Op{Name: "popf", Flags: OpStack}}

	table[0x86] = opEntry{Op: Op{Name: "xchg", Size: 8, Arg0: RM, Arg1: REG}}
	table[0x87] = opEntry{Op: Op{Name: "xchg", Size: 16, Arg0: RM, Arg1: REG}}
	for i := 1; i < 8; i++ {
		table[0x90+i] = opEntry{Op: Op{Name: "xchg", Size: 16, Arg0: AXS, Arg1: reg16[i]}}
	}
	table[0x90] = opEntry{Op: Op{Name: "nop"}}

	// ALU family: add/or/adc/sbb/and/sub/xor/cmp, each with the standard
	// six forms (rm8,r8)(rm16,r16)(r8,rm8)(r16,rm16)(al,imm8)(ax,imm16).
	aluNames := []string{"add", "or", "adc", "sbb", "and", "sub", "xor", "cmp"}
	for i, name := range aluNames {
		base := uint16(i) * 8
		table[base+0x00] = opEntry{Op: Op{Name: name, Size: 8, Arg0: RM, Arg1: REG}}
		table[base+0x01] = opEntry{Op: Op{Name: name, Size: 16, Arg0: RM, Arg1: REG}}
		table[base+0x02] = opEntry{Op: Op{Name: name, Size: 8, Arg0: REG, Arg1: RM}}
		table[base+0x03] = opEntry{Op: Op{Name: name, Size: 16, Arg0: REG, Arg1: RM}}
		table[base+0x04] = opEntry{Op: Op{Name: name, Size: 8, Arg0: ALS, Arg1: IMM8}}
		table[base+0x05] = opEntry{Op: Op{Name: name, Size: 16, Arg0: AXS, Arg1: IMM}}
	}
	aluGroup := func(size uint8, arg1 Arg) []Op {
		g := make([]Op, 8)
		for i, name := range aluNames {
			g[i] = Op{Name: name, Size: size, Arg0: RM, Arg1: arg1}
		}
		return g
	}
	table[0x80] = opEntry{group: aluGroup(8, IMM8)}
	table[0x81] = opEntry{group: aluGroup(16, IMM)}
	table[0x83] = opEntry{group: aluGroup(16, IMM8)} // sign-extended imm8

	table[0x84] = opEntry{Op: Op{Name: "test", Size: 8, Arg0: RM, Arg1: REG}}
	table[0x85] = opEntry{Op: Op{Name: "test", Size: 16, Arg0: RM, Arg1: REG}}
	table[0xA8] = opEntry{Op: Op{Name: "test", Size: 8, Arg0: ALS, Arg1: IMM8}}
	table[0xA9] = opEntry{Op: Op{Name: "test", Size: 16, Arg0: AXS, Arg1: IMM}}
	table[0xF6] = opEntry{group: []Op{
		{Name: "test", Size: 8, Arg0: RM, Arg1: IMM8},
		{Name: "test", Size: 8, Arg0: RM, Arg1: IMM8},
		{Name: "not", Size: 8, Arg0: RM},
		{Name: "neg", Size: 8, Arg0: RM},
		{Name: "mul", Size: 8, Arg0: RM},
		{Name: "imul", Size: 8, Arg0: RM},
		{Name: "div", Size: 8, Arg0: RM},
		{Name: "idiv", Size: 8, Arg0: RM},
	}}
	table[0xF7] = opEntry{group: []Op{
		{Name: "test", Size: 16, Arg0: RM, Arg1: IMM},
		{Name: "test", Size: 16, Arg0: RM, Arg1: IMM},
		{Name: "not", Size: 16, Arg0: RM},
		{Name: "neg", Size: 16, Arg0: RM},
		{Name: "mul", Size: 16, Arg0: RM},
		{Name: "imul", Size: 16, Arg0: RM},
		{Name: "div", Size: 16, Arg0: RM},
		{Name: "idiv", Size: 16, Arg0: RM},
	}}

	for i := 0; i < 8; i++ {
		table[0x40+i] = opEntry{Op: Op{Name: "inc", Size: 16, Arg0: reg16[i]}}
		table[0x48+i] = opEntry{Op: Op{Name: "dec", Size: 16, Arg0: reg16[i]}}
	}

	// shift/rotate group, selected by reg field; Arg1 (count) is filled in
	// by Decode depending on the opcode byte (ONE / IMM8 / implicit CL).
	shiftNames := []string{"rol", "ror", "rcl", "rcr", "shl", "shr", "sal", "sar"}
	shiftGroup := func(size uint8) []Op {
		g := make([]Op, 8)
		for i, name := range shiftNames {
			g[i] = Op{Name: name, Size: size, Arg0: RM}
		}
		return g
	}
	table[0xD0] = opEntry{group: shiftGroup(8)}  // /, 1
	table[0xD1] = opEntry{group: shiftGroup(16)} // /, 1
	table[0xD2] = opEntry{group: shiftGroup(8)}  // /, cl
	table[0xD3] = opEntry{group: shiftGroup(16)} // /, cl
	table[0xC0] = opEntry{group: shiftGroup(8)}  // /, imm8
	table[0xC1] = opEntry{group: shiftGroup(16)} // /, imm8

	table[0x98] = opEntry{Op: Op{Name: "cbw"}}
	table[0x99] = opEntry{Op: Op{Name: "cwd"}}

	// control transfer
	table[0xE8] = opEntry{Op: Op{Name: "call", Size: 16, Arg0: REL16}}
	table[0xE9] = opEntry{Op: Op{Name: "jmp", Size: 16, Arg0: REL16}}
	table[0xEB] = opEntry{Op: Op{Name: "jmp", Size: 8, Arg0: REL8}}
	table[0x9A] = opEntry{Op: Op{Name: "call", Arg0: PTR32, Flags: OpFar}}
	table[0xEA] = opEntry{Op: Op{Name: "jmp", Arg0: PTR32, Flags: OpFar}}
	table[0xC3] = opEntry{Op: Op{Name: "ret"}}
	table[0xC2] = opEntry{Op: Op{Name: "ret", Arg0: IMM16}}
	table[0xCB] = opEntry{Op: Op{Name: "retf", Flags: OpFar}}
	table[0xCA] = opEntry{Op: Op{Name: "retf", Arg0: IMM16, Flags: OpFar}}
	table[0xCC] = opEntry{Op: Op{Name: "int3"}}
	table[0xCD] = opEntry{Op: Op{Name: "int", Arg0: IMM8}}
	table[0xCE] = opEntry{Op: Op{Name: "into"}}
	table[0xCF] = opEntry{Op: Op{Name: "iret"}}

	jcc := []string{"jo", "jno", "jb", "jae", "je", "jne", "jbe", "ja",
		"js", "jns", "jp", "jnp", "jl", "jge", "jle", "jg"}
	for i, name := range jcc {
		table[0x70+i] = opEntry{Op: Op{Name: name, Size: 8, Arg0: REL8}}
		table0F[0x80+i] = opEntry{Op: Op{Name: name, Size: 16, Arg0: REL16}}
	}
	table[0xE0] = opEntry{Op: Op{Name: "loopne", Size: 8, Arg0: REL8}}
	table[0xE1] = opEntry{Op: Op{Name: "loope", Size: 8, Arg0: REL8}}
	table[0xE2] = opEntry{Op: Op{Name: "loop", Size: 8, Arg0: REL8}}
	table[0xE3] = opEntry{Op: Op{Name: "jcxz", Size: 8, Arg0: REL8}}

	// string operations: size-suffixed outside GAS, DS:SI/ES:DI implicit.
	table[0xA4] = opEntry{Op: Op{Name: "movs", Size: 8, Arg0: ESDI, Arg1: DSSI, Flags: OpString | OpRepe}}
	table[0xA5] = opEntry{Op: Op{Name: "movs", Size: 16, Arg0: ESDI, Arg1: DSSI, Flags: OpString | OpRepe}}
	table[0xA6] = opEntry{Op: Op{Name: "cmps", Size: 8, Arg0: DSSI, Arg1: ESDI, Flags: OpString | OpRepe | OpRepne}}
	table[0xA7] = opEntry{Op: Op{Name: "cmps", Size: 16, Arg0: DSSI, Arg1: ESDI, Flags: OpString | OpRepe | OpRepne}}
	table[0xAA] = opEntry{Op: Op{Name: "stos", Size: 8, Arg0: ESDI, Arg1: ALS, Flags: OpString | OpRepe}}
	table[0xAB] = opEntry{Op: Op{Name: "stos", Size: 16, Arg0: ESDI, Arg1: AXS, Flags: OpString | OpRepe}}
	table[0xAC] = opEntry{Op: Op{Name: "lods", Size: 8, Arg0: ALS, Arg1: DSSI, Flags: OpString | OpRepe}}
	table[0xAD] = opEntry{Op: Op{Name: "lods", Size: 16, Arg0: AXS, Arg1: DSSI, Flags: OpString | OpRepe}}
	table[0xAE] = opEntry{Op: Op{Name: "scas", Size: 8, Arg0: ALS, Arg1: ESDI, Flags: OpString | OpRepe | OpRepne}}
	table[0xAF] = opEntry{Op: Op{Name: "scas", Size: 16, Arg0: AXS, Arg1: ESDI, Flags: OpString | OpRepe | OpRepne}}

	// flags / misc
	table[0xF4] = opEntry{Op: Op{Name: "hlt"}}
	table[0xF5] = opEntry{Op: Op{Name: "cmc"}}
	table[0xF8] = opEntry{Op: Op{Name: "clc"}}
	table[0xF9] = opEntry{Op: Op{Name: "stc"}}
	table[0xFA] = opEntry{Op: Op{Name: "cli"}}
	table[0xFB] = opEntry{Op: Op{Name: "sti"}}
	table[0xFC] = opEntry{Op: Op{Name: "cld"}}
	table[0xFD] = opEntry{Op: Op{Name: "std"}}
	table[0x27] = opEntry{Op: Op{Name: "daa"}}
	table[0x2F] = opEntry{Op: Op{Name: "das"}}
	table[0x37] = opEntry{Op: Op{Name: "aaa"}}
	table[0x3F] = opEntry{Op: Op{Name: "aas"}}
	table[0xD4] = opEntry{Op: Op{Name: "aam", Arg0: IMM8}}
	table[0xD5] = opEntry{Op: Op{Name: "aad", Arg0: IMM8}}
	table[0xD7] = opEntry{Op: Op{Name: "xlat"}}
	table[0x9B] = opEntry{Op: Op{Name: "wait"}}
	table[0xE4] = opEntry{Op: Op{Name: "in", Size: 8, Arg0: ALS, Arg1: IMM8}}
	table[0xE5] = opEntry{Op: Op{Name: "in", Size: 16, Arg0: AXS, Arg1: IMM8}}
	table[0xE6] = opEntry{Op: Op{Name: "out", Size: 8, Arg0: IMM8, Arg1: ALS}}
	table[0xE7] = opEntry{Op: Op{Name: "out", Size: 16, Arg0: IMM8, Arg1: AXS}}
	table[0xEC] = opEntry{Op: Op{Name: "in", Size: 8, Arg0: ALS, Arg1: DXS}}
	table[0xED] = opEntry{Op: Op{Name: "in", Size: 16, Arg0: AXS, Arg1: DXS}}
	table[0xEE] = opEntry{Op: Op{Name: "out", Size: 8, Arg0: DXS, Arg1: ALS}}
	table[0xEF] = opEntry{Op: Op{Name: "out", Size: 16, Arg0: DXS, Arg1: AXS}}

	table[0xC9] = opEntry{Op: Op{Name: "leave"}}
	table[0xC8] = opEntry{Op: Op{Name: "enter", Arg0: IMM16, Arg1: IMM8}}

	// two-byte 0F opcodes: movzx/movsx and group-6/7 system instructions
	// (LDT/GDT etc.) are out of scope for NE user-mode code; only the
	// forms that plausibly appear in 16-bit NE segments are populated.
	table0F[0xB6] = opEntry{Op: Op{Name: "movzx", Size: 16, Arg0: REG, Arg1: RM}}
	table0F[0xB7] = opEntry{Op: Op{Name: "movzx", Size: 16, Arg0: REG, Arg1: RM}}
	table0F[0xBE] = opEntry{Op: Op{Name: "movsx", Size: 16, Arg0: REG, Arg1: RM}}
	table0F[0xBF] = opEntry{Op: Op{Name: "movsx", Size: 16, Arg0: REG, Arg1: RM}}
}
