package vm

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// Report is the final statistics snapshot produced by Core.Run, exported in
// the same three formats as the driver's performance statistics: JSON, CSV,
// and a plain text summary.
type Report struct {
	InstructionCount uint64
	FlushCounter     uint64
	CacheHitCount    uint64
	CacheMissCount   uint64
	FPUStallCounter  uint64
	LoadStallCounter uint64
	PredictedCycles  uint64
	PredictedSeconds float64
	OutputBytes      uint64

	WallClock time.Duration

	InstructionCounts map[string]uint64
	PCCounts          *[InstructionWordCount]uint64
}

// MIPS reports measured millions of instructions executed per second of
// wall-clock time, distinct from the predicted cycle/time figures above.
func (r *Report) MIPS() float64 {
	if r.WallClock <= 0 {
		return 0
	}
	return float64(r.InstructionCount) / r.WallClock.Seconds() / 1e6
}

// instCount is one row of the instruction-mix breakdown, sorted by count.
type instCount struct {
	Mnemonic string
	Count    uint64
}

func (r *Report) topInstructions() []instCount {
	rows := make([]instCount, 0, len(r.InstructionCounts))
	for m, n := range r.InstructionCounts {
		rows = append(rows, instCount{Mnemonic: m, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Mnemonic < rows[j].Mnemonic
	})
	return rows
}

// pcHotspot is one row of the PC-hotspot breakdown.
type pcHotspot struct {
	PC    uint32
	Count uint64
}

func (r *Report) topPCs(n int) []pcHotspot {
	if r.PCCounts == nil {
		return nil
	}
	rows := make([]pcHotspot, 0)
	for i, count := range r.PCCounts {
		if count == 0 {
			continue
		}
		rows = append(rows, pcHotspot{PC: uint32(i) * 4, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].PC < rows[j].PC
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// ExportJSON writes the report as a single JSON object.
func (r *Report) ExportJSON(w io.Writer) error {
	data := map[string]interface{}{
		"instruction_count":  r.InstructionCount,
		"flush_counter":      r.FlushCounter,
		"cache_hit_count":    r.CacheHitCount,
		"cache_miss_count":   r.CacheMissCount,
		"fpu_stall_counter":  r.FPUStallCounter,
		"load_stall_counter": r.LoadStallCounter,
		"predicted_cycles":   r.PredictedCycles,
		"predicted_seconds":  r.PredictedSeconds,
		"output_bytes":       r.OutputBytes,
		"wall_clock_ms":      r.WallClock.Milliseconds(),
		"mips":               r.MIPS(),
	}
	if r.InstructionCounts != nil {
		data["instruction_counts"] = r.topInstructions()
	}
	if r.PCCounts != nil {
		data["pc_hotspots"] = r.topPCs(50)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the summary metrics followed by the instruction-mix
// breakdown and the PC-hotspot breakdown, each section present only when
// its counts were collected.
func (r *Report) ExportCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	rows := [][]string{
		{"Instruction Count", fmt.Sprintf("%d", r.InstructionCount)},
		{"Flush Counter", fmt.Sprintf("%d", r.FlushCounter)},
		{"Cache Hit Count", fmt.Sprintf("%d", r.CacheHitCount)},
		{"Cache Miss Count", fmt.Sprintf("%d", r.CacheMissCount)},
		{"FPU Stall Counter", fmt.Sprintf("%d", r.FPUStallCounter)},
		{"Load Stall Counter", fmt.Sprintf("%d", r.LoadStallCounter)},
		{"Predicted Cycles", fmt.Sprintf("%d", r.PredictedCycles)},
		{"Predicted Seconds", fmt.Sprintf("%.6f", r.PredictedSeconds)},
		{"Output Bytes", fmt.Sprintf("%d", r.OutputBytes)},
		{"Wall Clock (ms)", fmt.Sprintf("%d", r.WallClock.Milliseconds())},
		{"MIPS", fmt.Sprintf("%.3f", r.MIPS())},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	if r.InstructionCounts != nil {
		writer.Write([]string{})
		writer.Write([]string{"Instruction", "Count"})
		for _, row := range r.topInstructions() {
			if err := writer.Write([]string{row.Mnemonic, fmt.Sprintf("%d", row.Count)}); err != nil {
				return err
			}
		}
	}

	if r.PCCounts != nil {
		writer.Write([]string{})
		writer.Write([]string{"PC", "Count"})
		for _, row := range r.topPCs(0) {
			if err := writer.Write([]string{fmt.Sprintf("0x%08x", row.PC), fmt.Sprintf("%d", row.Count)}); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders the plain-text summary printed to stdout by default.
func (r *Report) String() string {
	s := fmt.Sprintf(
		"instructions=%d  predicted_cycles=%d  predicted_seconds=%.6f  output_bytes=%d\n"+
			"flush=%d  cache_hit=%d  cache_miss=%d  fpu_stall=%d  load_stall=%d\n"+
			"wall_clock=%s  mips=%.3f",
		r.InstructionCount, r.PredictedCycles, r.PredictedSeconds, r.OutputBytes,
		r.FlushCounter, r.CacheHitCount, r.CacheMissCount, r.FPUStallCounter, r.LoadStallCounter,
		r.WallClock, r.MIPS(),
	)
	if r.InstructionCounts != nil {
		s += "\n\ntop instructions:"
		for i, row := range r.topInstructions() {
			if i >= 10 {
				break
			}
			s += fmt.Sprintf("\n  %-10s %d", row.Mnemonic, row.Count)
		}
	}
	if r.PCCounts != nil {
		s += "\n\ntop PCs:"
		for _, row := range r.topPCs(10) {
			s += fmt.Sprintf("\n  0x%08x %d", row.PC, row.Count)
		}
	}
	return s
}
