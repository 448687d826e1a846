package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rn86222/risc-sim/config"
	"github.com/rn86222/risc-sim/loader"
	"github.com/rn86222/risc-sim/profiler"
	"github.com/rn86222/risc-sim/progress"
	"github.com/rn86222/risc-sim/vm"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var (
	binPath         string
	sldPath         string
	ppmPath         string
	noCache         bool
	instStats       bool
	pcStats         bool
	showOutput      bool
	progressBarSize int
	profPath        string
	labelMapPath    string
	configPath      string
	showVersion     bool
)

func main() {
	root := &cobra.Command{
		Use:          "risc-sim",
		Short:        "Cycle-accurate functional simulator for the contest RISC core",
		SilenceUsage: true,
		RunE:         run,
	}

	root.Flags().StringVar(&binPath, "bin", "main.bin", "program binary to load")
	root.Flags().StringVar(&sldPath, "sld", filepath.Join("sld", "contest.sld"), "input stream (SLD) file")
	root.Flags().StringVar(&ppmPath, "ppm", "", "output PPM file (default: bin path with .bin -> .ppm)")
	root.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache; all loads/stores go straight to memory")
	root.Flags().BoolVar(&instStats, "inst-stats", false, "tally per-opcode counts")
	root.Flags().BoolVar(&pcStats, "pc-stats", false, "tally per-PC counts")
	root.Flags().BoolVar(&showOutput, "show-output", false, "dump the output buffer at termination")
	root.Flags().IntVar(&progressBarSize, "progress-bar-size", 0, "fractional progress bar width; 0 prints periodic status instead")
	root.Flags().StringVar(&profPath, "prof", "", "CPU profile output path")
	root.Flags().StringVar(&labelMapPath, "label-map", "", "label map file; enables control-flow graph emission as a DOT file next to the binary")
	root.Flags().StringVar(&configPath, "config", "", "configuration file (default: platform config dir)")
	root.Flags().BoolVar(&showVersion, "version", false, "show version information")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Printf("risc-sim %s (commit %s, built %s)\n", Version, Commit, Date)
		return nil
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.GetConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	binData, err := loader.LoadBinaryFile(binPath)
	if err != nil {
		return err
	}

	useCache := cfg.Cache.Enabled && !noCache
	core := vm.NewCore(useCache)

	if err := core.LoadBinary(binData); err != nil {
		return fmt.Errorf("failed to load binary %s: %w", binPath, err)
	}

	core.LoadInput(loader.LoadSLDFile(sldPath))

	core.TakeInstStats = instStats || cfg.Statistics.Instructions
	core.TakePCStats = pcStats || cfg.Statistics.PC

	var labels map[uint32]string
	if labelMapPath != "" {
		labels = loader.LoadLabelMapFile(labelMapPath)
		core.TakeCFG = true
	}

	barSize := progressBarSize
	if barSize == 0 {
		barSize = cfg.Progress.BarSize
	}
	if barSize > 0 {
		bar := progress.NewBar(barSize)
		core.Progress = bar
		core.ProgressStep = vm.InstructionWordCount / 1000
	} else {
		core.Progress = &progress.Periodic{Interval: vm.StatusPrintInterval}
		core.ProgressStep = vm.StatusPrintInterval
	}

	prof, err := profiler.Start(profPath)
	if err != nil {
		return err
	}

	report, err := core.Run()
	profErr := prof.Stop()
	if err != nil {
		return err
	}
	if profErr != nil {
		return profErr
	}

	if err := writePPM(binPath, ppmPath, core.Output); err != nil {
		return err
	}

	if labelMapPath != "" {
		if err := writeCFG(binPath, core, labels); err != nil {
			return err
		}
	}

	if showOutput {
		os.Stdout.Write(core.Output)
	}

	if err := writeStatistics(cfg, report); err != nil {
		return err
	}

	return nil
}

// writePPM writes the accumulated output buffer to the PPM sink. The default
// path mirrors the binary's name with its extension swapped to .ppm.
func writePPM(binPath, ppmPath string, output []byte) error {
	path := ppmPath
	if path == "" {
		path = defaultSiblingPath(binPath, ".bin", ".ppm")
	}
	if err := os.WriteFile(path, output, 0o644); err != nil {
		return fmt.Errorf("failed to write ppm output %s: %w", path, err)
	}
	return nil
}

func writeCFG(binPath string, core *vm.Core, labels map[uint32]string) error {
	path := defaultSiblingPath(binPath, ".bin", ".dot")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create control-flow graph file %s: %w", path, err)
	}
	defer f.Close()
	return core.WriteCFGDot(f, labels)
}

func defaultSiblingPath(base, oldExt, newExt string) string {
	if strings.HasSuffix(base, oldExt) {
		return strings.TrimSuffix(base, oldExt) + newExt
	}
	return base + newExt
}

func writeStatistics(cfg *config.Config, report *vm.Report) error {
	var w *os.File
	if cfg.Statistics.OutputFile != "" {
		f, err := os.Create(cfg.Statistics.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create statistics output %s: %w", cfg.Statistics.OutputFile, err)
		}
		defer f.Close()
		w = f
	}

	switch cfg.Statistics.Format {
	case "json":
		if w != nil {
			return report.ExportJSON(w)
		}
		return report.ExportJSON(os.Stdout)
	case "csv":
		if w != nil {
			return report.ExportCSV(w)
		}
		return report.ExportCSV(os.Stdout)
	default:
		if w != nil {
			_, err := fmt.Fprintln(w, report.String())
			return err
		}
		fmt.Println(report.String())
		return nil
	}
}
