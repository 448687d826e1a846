package vm

import (
	"fmt"
	"strconv"
	"time"
)

// Core is the simulation driver: it owns every piece of architectural
// state and the fetch loop that steps through pre-decoded instructions.
// Grounded on the reference driver's run loop (instruction_count/PC
// rotation/cache miss sequencing), generalized to the authoritative
// termination formula and the explicit in/out I/O opcodes.
type Core struct {
	Int   IntRegisters
	Float FloatRegisters

	InstMem InstructionMemory
	Data    Memory
	Cache   *Cache // nil when the cache is disabled
	Decoded []DecodedInstruction

	Inv  *InvMap
	Sqrt *SqrtMap

	PC               uint32
	InstructionCount uint64
	FlushCounter     uint64
	CacheHitCount    uint64
	CacheMissCount   uint64
	FPUStallCounter  uint64
	LoadStallCounter uint64
	LoadDest         *RegRef
	beforeLoadDest   *RegRef
	loadUseStalled   bool

	input      []string
	inputPos   int
	Output     []byte

	TakeInstStats bool
	TakePCStats   bool
	InstCounts    map[string]uint64
	PCCounts      [InstructionWordCount]uint64

	// TakeCFG records one edge per taken control-flow transfer (branch
	// taken, jal, jalr) for the optional DOT graph export; unconditional
	// fall-through is not recorded, since the graph exists to show control
	// flow decisions rather than straight-line blocks.
	TakeCFG  bool
	CFGEdges map[cfgEdge]uint64

	// Progress is notified of run progress every ProgressStep instructions.
	// Left nil, progress reporting is skipped entirely.
	Progress     ProgressReporter
	ProgressStep uint64

	halted bool
}

// ProgressReporter receives periodic run-progress updates. Defined here
// (rather than importing the progress package) so vm has no dependency on
// the terminal-drawing layer; progress.Bar and progress.Periodic both
// satisfy this interface structurally.
type ProgressReporter interface {
	Update(done, total uint64)
	Finish()
}

// NewCore constructs a core with freshly built FPU lookup tables and
// register 1/register 2 initialized to the startup convention: register 1
// (return address) holds the instruction memory size, register 2 (stack
// pointer) holds the data memory size.
func NewCore(useCache bool) *Core {
	c := &Core{
		Inv:        BuildInvMap(),
		Sqrt:       BuildSqrtMap(),
		InstCounts: make(map[string]uint64),
	}
	if useCache {
		c.Cache = &Cache{}
	}
	c.Int.Set(1, int32(InstructionMemorySize))
	c.Int.Set(2, int32(DataMemorySize))
	return c
}

// LoadBinary loads the program image and pre-decodes every slot.
func (c *Core) LoadBinary(data []byte) error {
	if err := c.InstMem.LoadBinary(data); err != nil {
		return err
	}
	c.Decoded = make([]DecodedInstruction, InstructionWordCount)
	for i := 0; i < InstructionWordCount; i++ {
		c.Decoded[i] = Decode(c.InstMem.Load(uint32(i)))
	}
	return nil
}

// LoadInput sets the whitespace-tokenized input stream consumed by in/fin.
func (c *Core) LoadInput(tokens []string) {
	c.input = tokens
}

func (c *Core) nextToken(kind string) (string, error) {
	if c.inputPos >= len(c.input) {
		return "", fmt.Errorf("%s: input stream exhausted", kind)
	}
	tok := c.input[c.inputPos]
	c.inputPos++
	return tok, nil
}

// ReadIntRegister reads an integer register, applying the one-cycle
// load-use stall when this register was the destination of the previous
// cycle's load.
func (c *Core) ReadIntRegister(i uint8) int32 {
	c.checkLoadUseStall(RegRef{Bank: BankInt, Index: i})
	return c.Int.Get(i)
}

func (c *Core) ReadFloatRegister(i uint8) FloatingPoint {
	c.checkLoadUseStall(RegRef{Bank: BankFloat, Index: i})
	return c.Float.Get(i)
}

// checkLoadUseStall charges at most one bubble per executed instruction:
// an instruction reading its load-use hazard register in two source slots
// (e.g. add rd, rN, rN) must still only cost one stall cycle.
func (c *Core) checkLoadUseStall(ref RegRef) {
	if c.loadUseStalled {
		return
	}
	if c.beforeLoadDest != nil && *c.beforeLoadDest == ref {
		c.LoadStallCounter++
		c.loadUseStalled = true
	}
}

// loadWord reads a data word through the cache (if enabled) or directly
// from memory, sequencing the miss handler exactly as the driver
// specifies: fetch the line from memory, install it, write back any
// evicted dirty line.
func (c *Core) loadWord(addr uint32) (int32, error) {
	if c.Cache == nil {
		return c.Data.LoadWord(addr), nil
	}
	word, result := c.Cache.GetWord(addr)
	switch result {
	case ResultHitWord:
		c.CacheHitCount++
		return word, nil
	case ResultMiss:
		c.CacheMissCount++
		if err := c.handleCacheMiss(addr); err != nil {
			return 0, err
		}
		w, result := c.Cache.GetWord(addr)
		if result != ResultHitWord {
			return 0, fmt.Errorf("cache: invalid access result after fill")
		}
		return w, nil
	default:
		return 0, fmt.Errorf("cache: invalid access result %v on load", result)
	}
}

func (c *Core) storeWord(addr uint32, value int32) error {
	if c.Cache == nil {
		c.Data.StoreWord(addr, value)
		return nil
	}
	result := c.Cache.SetWord(addr, value)
	switch result {
	case ResultHitSet:
		c.CacheHitCount++
		return nil
	case ResultMiss:
		c.CacheMissCount++
		c.Data.StoreWord(addr, value)
		if err := c.handleCacheMiss(addr); err != nil {
			return err
		}
		return nil
	default:
		return fmt.Errorf("cache: invalid access result %v on store", result)
	}
}

func (c *Core) handleCacheMiss(addr uint32) error {
	lineAddr := lineAddrOf(addr)
	line := c.Data.Line(lineAddr)
	evicted, err := c.Cache.SetLine(lineAddr, line)
	if err != nil {
		return err
	}
	if evicted != nil {
		c.Data.SetLine(*evicted)
	}
	return nil
}

// Run executes the fetch loop until `end` or PC overflow, then returns the
// final statistics report.
func (c *Core) Run() (*Report, error) {
	start := time.Now()
	for {
		c.beforeLoadDest = c.LoadDest
		c.LoadDest = nil
		c.loadUseStalled = false
		if c.PC >= InstructionMemorySize || c.halted {
			break
		}
		fetchedPC := c.PC
		decoded := c.Decoded[fetchedPC>>2]
		name, err := c.execute(decoded)
		if err != nil {
			return nil, fmt.Errorf("pc=0x%08x: %w", fetchedPC, err)
		}
		if c.TakeInstStats {
			c.InstCounts[name]++
		}
		if c.TakePCStats {
			c.PCCounts[fetchedPC>>2]++
		}
		c.InstructionCount++
		if c.Progress != nil && c.ProgressStep != 0 && c.InstructionCount%c.ProgressStep == 0 {
			c.Progress.Update(c.InstructionCount, InstructionWordCount)
		}
	}
	if c.Progress != nil {
		c.Progress.Finish()
	}
	return c.report(time.Since(start)), nil
}

func (c *Core) report(wallClock time.Duration) *Report {
	predictedCycles := c.InstructionCount +
		c.FlushCounter*FlushStall +
		c.CacheMissCount*MissStall +
		c.CacheHitCount*HitStall +
		c.FPUStallCounter
	predictedSeconds := float64(predictedCycles)*CycleSeconds +
		float64(len(c.Output))*ByteSeconds + TimeConstant
	report := &Report{
		InstructionCount: c.InstructionCount,
		FlushCounter:     c.FlushCounter,
		CacheHitCount:    c.CacheHitCount,
		CacheMissCount:   c.CacheMissCount,
		FPUStallCounter:  c.FPUStallCounter,
		LoadStallCounter: c.LoadStallCounter,
		PredictedCycles:  predictedCycles,
		PredictedSeconds: predictedSeconds,
		OutputBytes:      uint64(len(c.Output)),
		WallClock:        wallClock,
	}
	if c.TakeInstStats {
		report.InstructionCounts = c.InstCounts
	}
	if c.TakePCStats {
		report.PCCounts = &c.PCCounts
	}
	return report
}

// cfgEdge is one taken control-flow transfer, keyed by source and
// destination PC.
type cfgEdge struct {
	from, to uint32
}

func (c *Core) recordEdge(from, to uint32) {
	if !c.TakeCFG {
		return
	}
	if c.CFGEdges == nil {
		c.CFGEdges = make(map[cfgEdge]uint64)
	}
	c.CFGEdges[cfgEdge{from: from, to: to}]++
}

func parseToken(tok string) (int32, error) {
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer token %q: %w", tok, err)
	}
	return int32(v), nil
}

func parseFloatToken(tok string) (FloatingPoint, error) {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return FloatingPoint{}, fmt.Errorf("invalid float token %q: %w", tok, err)
	}
	return FromFloat32(float32(v)), nil
}
