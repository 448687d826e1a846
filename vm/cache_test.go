package vm

import "testing"

func TestCacheMissThenHit(t *testing.T) {
	c := &Cache{}
	addr := uint32(0x1000)
	if _, result := c.GetWord(addr); result != ResultMiss {
		t.Fatalf("expected miss on empty cache, got %v", result)
	}
	if _, err := c.SetLine(lineAddrOf(addr), [CacheLineWords]int32{1, 2, 3, 4}); err != nil {
		t.Fatalf("SetLine: %v", err)
	}
	word, result := c.GetWord(addr)
	if result != ResultHitWord {
		t.Fatalf("expected hit after install, got %v", result)
	}
	if word != 1 {
		t.Fatalf("expected word 1 at line offset 0, got %d", word)
	}
}

func TestCacheSetWordMarksDirty(t *testing.T) {
	c := &Cache{}
	addr := uint32(0)
	if _, err := c.SetLine(lineAddrOf(addr), [CacheLineWords]int32{0, 0, 0, 0}); err != nil {
		t.Fatalf("SetLine: %v", err)
	}
	if result := c.SetWord(addr, 99); result != ResultHitSet {
		t.Fatalf("expected hit-set result, got %v", result)
	}
	word, _ := c.GetWord(addr)
	if word != 99 {
		t.Fatalf("expected 99, got %d", word)
	}
}

func TestCacheEvictionWritesBackDirtyLine(t *testing.T) {
	c := &Cache{}
	// Fill all four ways of set 0 with dirty lines, then force a fifth
	// install to evict one of them.
	for way := 0; way < CacheWays; way++ {
		addr := uint32(way) << (indexBits + offsetBits)
		if _, err := c.SetLine(lineAddrOf(addr), [CacheLineWords]int32{int32(way), 0, 0, 0}); err != nil {
			t.Fatalf("SetLine way %d: %v", way, err)
		}
		if result := c.SetWord(addr, int32(way)+100); result != ResultHitSet {
			t.Fatalf("expected hit-set, got %v", result)
		}
	}
	fifthAddr := uint32(CacheWays) << (indexBits + offsetBits)
	evicted, err := c.SetLine(lineAddrOf(fifthAddr), [CacheLineWords]int32{9, 9, 9, 9})
	if err != nil {
		t.Fatalf("SetLine fifth: %v", err)
	}
	if evicted == nil {
		t.Fatalf("expected a dirty line to be evicted when the set is full")
	}
}

func TestCacheSetLineRejectsAlreadyResidentTag(t *testing.T) {
	c := &Cache{}
	addr := uint32(0)
	if _, err := c.SetLine(lineAddrOf(addr), [CacheLineWords]int32{0, 0, 0, 0}); err != nil {
		t.Fatalf("SetLine: %v", err)
	}
	if _, err := c.SetLine(lineAddrOf(addr), [CacheLineWords]int32{1, 1, 1, 1}); err == nil {
		t.Fatalf("expected error installing an already-resident tag")
	}
}
