// Package secrets reads long-lived gateway secrets from a KEY=value file.
//
// The file is parsed once and cached. The cache is dropped by Invalidate,
// by Upsert, and by the fsnotify watcher when the file changes on disk.
package secrets

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidKey   = errors.New("secrets: invalid key")
	ErrInvalidValue = errors.New("secrets: value cannot be stored")
)

// Source is the read/write view of the secret file used by services.
type Source interface {
	// Lookup returns the value for key. Empty values report ok=false.
	Lookup(key string) (string, bool)

	// Upsert replaces or appends key, then drops the cache.
	Upsert(key, value string) error

	// Invalidate drops the cache so the next Lookup re-reads the file.
	Invalidate()
}

// FileSource is a Source backed by a single file.
type FileSource struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	cache  map[string]string
	loaded bool

	writeMu sync.Mutex
}

// NewFileSource returns a source for path. Nothing is read until the first
// lookup.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, logger: logger, now: time.Now}
}

// Path returns the backing file.
func (s *FileSource) Path() string { return s.path }

// Check reports whether the file can be read and parsed.
func (s *FileSource) Check() error {
	_, err := s.read()
	return err
}

// Lookup implements Source. A file that cannot be read behaves as empty, so
// every consumer fails closed.
func (s *FileSource) Lookup(key string) (string, bool) {
	s.mu.RLock()
	if s.loaded {
		v, ok := s.cache[key]
		s.mu.RUnlock()
		return v, ok && v != ""
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		values, err := s.read()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("failed to read secrets file", "path", s.path, "err", err)
		}
		s.cache = values
		s.loaded = true
	}
	v, ok := s.cache[key]
	return v, ok && v != ""
}

// Get returns the value for key, or "".
func (s *FileSource) Get(key string) string {
	v, _ := s.Lookup(key)
	return v
}

// Invalidate implements Source.
func (s *FileSource) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.loaded = false
	s.mu.Unlock()
}

func (s *FileSource) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}, err
	}
	return Parse(data), nil
}

// Parse reads KEY=value lines. Blank lines and # comments are skipped and a
// single pair of matching surrounding quotes is trimmed from values. Lines
// without '=' are ignored.
func Parse(data []byte) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, ok := parseLine(sc.Text())
		if ok {
			out[key] = value
		}
	}
	return out
}

func parseLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(value)), true
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// Upsert implements Source. An existing KEY line is replaced in place;
// otherwise the pair is appended under an "Auto-saved" comment. The file is
// rewritten through a temp file and rename, so readers never see a partial
// write. Writing the same pair twice leaves the file unchanged.
func (s *FileSource) Upsert(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=#\r\n \t") {
		return ErrInvalidKey
	}
	if strings.ContainsAny(value, "\"\r\n") {
		return ErrInvalidValue
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	defer s.Invalidate()

	mode := fs.FileMode(0o600)
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if st, statErr := os.Stat(s.path); statErr == nil {
			mode = st.Mode().Perm()
		}
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	default:
		return fmt.Errorf("read secrets file: %w", err)
	}

	entry := fmt.Sprintf("%s=\"%s\"", key, value)
	lines := strings.Split(string(data), "\n")
	replaced := false
	for i, line := range lines {
		if k, _, ok := parseLine(line); ok && k == key {
			lines[i] = entry
			replaced = true
		}
	}

	var out string
	if replaced {
		out = strings.Join(lines, "\n")
	} else {
		out = string(data)
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += fmt.Sprintf("\n# Auto-saved by OAuth callback - %s\n%s\n", s.now().UTC().Format("2006-01-02 15:04:05"), entry)
	}

	return writeAtomic(s.path, []byte(out), mode)
}

func writeAtomic(path string, data []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp secrets file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp secrets file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp secrets file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp secrets file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp secrets file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace secrets file: %w", err)
	}
	return nil
}
