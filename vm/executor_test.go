package vm

import "testing"

func newTestCore() *Core {
	return NewCore(false)
}

// program builds a raw binary image from a list of pre-encoded words.
func program(words ...uint32) []byte {
	data := make([]byte, len(words)*4)
	for i, w := range words {
		data[i*4] = byte(w)
		data[i*4+1] = byte(w >> 8)
		data[i*4+2] = byte(w >> 16)
		data[i*4+3] = byte(w >> 24)
	}
	return data
}

func mustLoad(t *testing.T, c *Core, words ...uint32) {
	t.Helper()
	if err := c.LoadBinary(program(words...)); err != nil {
		t.Fatalf("LoadBinary: %v", err)
	}
}

func TestAddiThenEnd(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c, encodeI(OpALUI, 5, Funct3ADDI, 0, 42), OpOther)
	report, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.Int.Get(5); got != 42 {
		t.Fatalf("expected x5=42, got %d", got)
	}
	if report.InstructionCount != 2 {
		t.Fatalf("expected 2 instructions executed, got %d", report.InstructionCount)
	}
}

func TestBranchTakenShiftsImmediateByTwo(t *testing.T) {
	c := newTestCore()
	// beq x0,x0,+2 (word offset) skips the next instruction (addi x1,x0,1),
	// landing on the addi x2,x0,2 that follows it.
	mustLoad(t, c,
		encodeB(OpBr, Funct3BEQ, 0, 0, 2),
		encodeI(OpALUI, 1, Funct3ADDI, 0, 1),
		encodeI(OpALUI, 2, Funct3ADDI, 0, 2),
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Int.Get(1) != int32(InstructionMemorySize) {
		t.Fatalf("expected x1 untouched (skipped), got %d", c.Int.Get(1))
	}
	if c.Int.Get(2) != 2 {
		t.Fatalf("expected x2=2, got %d", c.Int.Get(2))
	}
}

func TestBranchNotTakenFallsThrough(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c,
		encodeB(OpBr, Funct3BNE, 0, 0, 2), // x0 == x0, bne not taken
		encodeI(OpALUI, 1, Funct3ADDI, 0, 1),
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Int.Get(1) != 1 {
		t.Fatalf("expected x1=1 (fall through executed), got %d", c.Int.Get(1))
	}
}

func TestJALSetsLinkAndShiftsTarget(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c,
		encodeJ(OpJAL, 1, 2), // jump forward 2 words, past the addi
		encodeI(OpALUI, 2, Funct3ADDI, 0, 99),
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Int.Get(1) != 4 {
		t.Fatalf("expected link register x1=4 (pc+4), got %d", c.Int.Get(1))
	}
	if c.Int.Get(2) != int32(DataMemorySize) {
		t.Fatalf("expected x2 untouched (jumped over), got %d", c.Int.Get(2))
	}
}

func TestJALRTargetsRs1PlusShiftedImm(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c,
		encodeI(OpALUI, 3, Funct3ADDI, 0, 4), // x3 = 4
		encodeI(OpJALR, 1, 0, 3, 2),          // jalr x1, 2(x3) -> pc = 4 + 2*4 = 12
		encodeI(OpALUI, 4, Funct3ADDI, 0, 7), // skipped (at pc=8)
		encodeI(OpALUI, 5, Funct3ADDI, 0, 9), // landed on (at pc=12)
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Int.Get(4) != 0 {
		t.Fatalf("expected x4 untouched, got %d", c.Int.Get(4))
	}
	if c.Int.Get(5) != 9 {
		t.Fatalf("expected x5=9, got %d", c.Int.Get(5))
	}
}

func TestALURAddSub(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c,
		encodeI(OpALUI, 1, Funct3ADDI, 0, 10),
		encodeI(OpALUI, 2, Funct3ADDI, 0, 3),
		encodeR(OpALUR, 3, Funct3ADDSUB, 1, 2, 0),
		encodeR(OpALUR, 4, Funct3ADDSUB, 1, 2, ALUAltBit),
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Int.Get(3) != 13 {
		t.Fatalf("expected add result 13, got %d", c.Int.Get(3))
	}
	if c.Int.Get(4) != 7 {
		t.Fatalf("expected sub result 7, got %d", c.Int.Get(4))
	}
}

func TestOutcharAndOutintAppendOutput(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c,
		encodeI(OpALUI, 1, Funct3ADDI, 0, 'A'),
		encodeI(OpIO, 0, Funct3OutChar, 1, 0),
		encodeI(OpALUI, 2, Funct3ADDI, 0, 7),
		encodeI(OpIO, 0, Funct3OutInt, 2, 0),
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(c.Output) != "A7" {
		t.Fatalf("expected output %q, got %q", "A7", string(c.Output))
	}
}

func TestInConsumesTokenAndFatalOnExhaustion(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c,
		encodeI(OpIO, 1, Funct3In, 0, 0),
		OpOther,
	)
	c.LoadInput([]string{"123"})
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Int.Get(1) != 123 {
		t.Fatalf("expected x1=123, got %d", c.Int.Get(1))
	}

	c2 := newTestCore()
	mustLoad(t, c2, encodeI(OpIO, 1, Funct3In, 0, 0), OpOther)
	if _, err := c2.Run(); err == nil {
		t.Fatalf("expected error on exhausted input stream")
	}
}

func TestLoadUseStallCountsOneCycle(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c,
		encodeI(OpLW, 1, 0, 0, 0),
		encodeR(OpALUR, 2, Funct3ADDSUB, 1, 1, 0), // reads x1 immediately after the load
		OpOther,
	)
	report, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.LoadStallCounter != 1 {
		t.Fatalf("expected one load-use stall, got %d", report.LoadStallCounter)
	}
}

func TestFADDIncrementsFPUStall(t *testing.T) {
	c := newTestCore()
	mustLoad(t, c,
		encodeR(OpFALU, 3, 0, 1, 2, Funct7FADD),
		OpOther,
	)
	report, err := c.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FPUStallCounter != FAddStall {
		t.Fatalf("expected fpu stall %d, got %d", FAddStall, report.FPUStallCounter)
	}
}

func TestUnknownOpcodeIsFatal(t *testing.T) {
	c := newTestCore()
	// opcode 11 is unassigned.
	mustLoad(t, c, uint32(11))
	if _, err := c.Run(); err == nil {
		t.Fatalf("expected fatal error on unrecognized opcode")
	}
}

func TestCFGRecordsTakenEdgesOnly(t *testing.T) {
	c := newTestCore()
	c.TakeCFG = true
	mustLoad(t, c,
		encodeB(OpBr, Funct3BEQ, 0, 0, 2), // taken: pc 0 -> 8
		encodeI(OpALUI, 1, Funct3ADDI, 0, 1),
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(c.CFGEdges) != 1 {
		t.Fatalf("expected exactly one recorded edge, got %d", len(c.CFGEdges))
	}
	if c.CFGEdges[cfgEdge{from: 0, to: 8}] != 1 {
		t.Fatalf("expected edge 0->8 recorded once, got %+v", c.CFGEdges)
	}
}
