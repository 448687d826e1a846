// Package profiler wraps runtime/pprof around a run. No third-party
// flamegraph or profiling library appears anywhere in the retrieval pack,
// so this is the one ambient concern carried on the standard library.
package profiler

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// Session is an open CPU profile; Stop must be called to flush it.
type Session struct {
	file *os.File
}

// Start begins CPU profiling to path. An empty path disables profiling and
// returns a no-op session.
func Start(path string) (*Session, error) {
	if path == "" {
		return &Session{}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile output %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to start cpu profile: %w", err)
	}
	return &Session{file: f}, nil
}

// Stop flushes and closes the profile, if one was started.
func (s *Session) Stop() error {
	if s.file == nil {
		return nil
	}
	pprof.StopCPUProfile()
	return s.file.Close()
}
