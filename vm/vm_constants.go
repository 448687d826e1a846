package vm

// ============================================================================
// Memory and instruction-store sizing
// ============================================================================
const (
	InstructionMemorySize = 4 * 1024 * 1024  // bytes; 1,048,576 pre-decoded slots
	InstructionWordCount  = InstructionMemorySize / 4
	DataMemorySize        = 128 * 1024 * 1024 // bytes
	DataWordCount          = DataMemorySize / 4
	RegisterBankSize       = 64
)

// ============================================================================
// Cache geometry
// ============================================================================
const (
	CacheSets      = 2048
	CacheWays      = 4
	CacheLineWords = 4
	CacheLineBytes = CacheLineWords * 4
	CacheSizeBytes = CacheSets * CacheWays * CacheLineBytes // 128 KiB
)

// ============================================================================
// FPU lookup-table sizing
// ============================================================================
const (
	InvMapEntries       = 1024
	SqrtMapEntriesPerHalf = 512
)

// ============================================================================
// Stall model coefficients (§4.6 cycle/time formula)
// ============================================================================
const (
	FlushStall = 3 // fixed bubble on every branch/jump
	HitStall   = 1
	MissStall  = 108 * 120

	FAddStall   = 2
	FSubStall   = 2
	FMulStall   = 2
	FDivStall   = 10
	FSqrtStall  = 7
	FCvtStall   = 1
	FCmpStall   = 0

	CycleSeconds = 1.0 / 120_000_000.0
	ByteSeconds  = 8.0 / 115200.0
	TimeConstant = 0.0
)

// StatusPrintInterval is the instruction-count period at which the raw
// periodic progress line is emitted when no fractional progress bar is
// requested.
const StatusPrintInterval = 10_000_000
