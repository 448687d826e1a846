package loader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadBinaryFile reads a program image from disk. The caller is responsible
// for rejecting a length that is not a multiple of 4; InstructionMemory's
// own LoadBinary already does this.
func LoadBinaryFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binary %s: %w", path, err)
	}
	return data, nil
}

// LoadSLDFile tokenizes a whitespace-separated input stream file for in/fin
// consumption. A missing file is not fatal — it is only a problem if the
// program actually tries to consume from an empty stream, so this just
// warns and returns an empty token list.
func LoadSLDFile(path string) []string {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open sld file %s (ignore if unneeded)\n", path)
		return nil
	}
	defer f.Close()

	var tokens []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		tokens = append(tokens, strings.Fields(scanner.Text())...)
	}
	return tokens
}

// LoadLabelMapFile parses "LABEL ADDRESS" lines into a PC -> label lookup
// used to name the nodes of the control-flow graph export. A label is truncated at its first
// '.' so per-block suffixes (e.g. "loop.3") collapse to their base name.
// A missing file is not fatal.
func LoadLabelMapFile(path string) map[uint32]string {
	labels := make(map[uint32]string)
	if path == "" {
		return labels
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open label map file %s (ignore if unneeded)\n", path)
		return labels
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		sep := strings.IndexByte(line, ' ')
		if sep < 0 {
			continue
		}
		label := line[:sep]
		if dot := strings.IndexByte(label, '.'); dot >= 0 {
			label = label[:dot]
		}
		addrStr := strings.TrimSpace(line[sep+1:])
		addr, err := strconv.ParseUint(addrStr, 10, 32)
		if err != nil {
			continue
		}
		labels[uint32(addr)] = label
	}
	return labels
}
