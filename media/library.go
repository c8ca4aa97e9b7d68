package media

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"sipalert/global"
	"sipalert/system"
)

// Prompt describes a validated audio file of the media directory.
type Prompt struct {
	Name     string
	Path     string
	Duration time.Duration
}

// Library indexes the prompts of one directory by file name and by
// name without extension.
type Library struct {
	dir     string
	mu      sync.RWMutex
	prompts map[string]Prompt
}

func dropExtension(fn string) string {
	return strings.TrimSuffix(fn, filepath.Ext(fn))
}

func LoadLibrary(dir string) (*Library, error) {
	lib := &Library{dir: dir, prompts: make(map[string]Prompt)}
	if err := lib.Reload(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Reload rescans the directory. Files that cannot be opened as mono
// 16 kHz prompts are skipped with a warning.
func (lib *Library) Reload() error {
	dentries, err := os.ReadDir(lib.dir)
	if err != nil {
		return global.NewError(global.ErrOpenFailed, err)
	}
	prompts := make(map[string]Prompt)
	for _, dentry := range dentries {
		if dentry.IsDir() {
			continue
		}
		filename := dentry.Name()
		if !Supported(filename) {
			system.LogDebug(system.LTPlayback, fmt.Sprintf("Filename: %s - Unsupported extension - Skipped", filename))
			continue
		}
		fullpath := filepath.Join(lib.dir, filename)
		d, err := measure(fullpath)
		if err != nil {
			system.LogWarning(system.LTPlayback, fmt.Sprintf("Filename: %s - %v - Skipped", filename, err))
			continue
		}
		prompts[filename] = Prompt{Name: filename, Path: fullpath, Duration: d}
		system.LogInfo(system.LTPlayback, fmt.Sprintf("Filename: %s, Duration: %s", filename, formattedTime(d)))
	}
	lib.mu.Lock()
	lib.prompts = prompts
	lib.mu.Unlock()
	return nil
}

func measure(path string) (time.Duration, error) {
	src, err := OpenPrompt(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	buf := make([]int16, global.FrameSamples)
	total := 0
	for {
		n, err := src.Read(buf)
		total += n
		if err != nil {
			return 0, err
		}
		if n < len(buf) {
			break
		}
	}
	return time.Duration(total) * time.Second / global.PcmSamplingRate, nil
}

func formattedTime(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, milliseconds)
}

// Resolve maps a prompt name to its path. Absolute paths and paths
// that exist on disk are returned as they are.
func (lib *Library) Resolve(name string) (string, bool) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if p, ok := lib.prompts[name]; ok {
		return p.Path, true
	}
	for _, p := range lib.prompts {
		if dropExtension(p.Name) == name {
			return p.Path, true
		}
	}
	if _, err := os.Stat(name); err == nil {
		return name, true
	}
	return "", false
}

func (lib *Library) Prompts() []Prompt {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	out := make([]Prompt, 0, len(lib.prompts))
	for _, p := range lib.prompts {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Prompt) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (lib *Library) Count() int {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return len(lib.prompts)
}
