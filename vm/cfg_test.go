package vm

import (
	"strings"
	"testing"
)

func TestWriteCFGDotUsesLabelsWhenAvailable(t *testing.T) {
	c := newTestCore()
	c.TakeCFG = true
	mustLoad(t, c,
		encodeB(OpBr, Funct3BEQ, 0, 0, 2),
		encodeI(OpALUI, 1, Funct3ADDI, 0, 1),
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	labels := map[uint32]string{0: "start", 8: "skip_target"}
	var sb strings.Builder
	if err := c.WriteCFGDot(&sb, labels); err != nil {
		t.Fatalf("WriteCFGDot: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "digraph cfg {") {
		t.Fatalf("expected digraph header, got %q", out)
	}
	if !strings.Contains(out, `"start" -> "skip_target"`) {
		t.Fatalf("expected labeled edge in output, got %q", out)
	}
}

func TestWriteCFGDotFallsBackToHexAddress(t *testing.T) {
	c := newTestCore()
	c.TakeCFG = true
	mustLoad(t, c,
		encodeB(OpBr, Funct3BEQ, 0, 0, 2),
		encodeI(OpALUI, 1, Funct3ADDI, 0, 1),
		OpOther,
	)
	if _, err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var sb strings.Builder
	if err := c.WriteCFGDot(&sb, nil); err != nil {
		t.Fatalf("WriteCFGDot: %v", err)
	}
	if !strings.Contains(sb.String(), `"0x00000000" -> "0x00000008"`) {
		t.Fatalf("expected hex-address edge, got %q", sb.String())
	}
}
