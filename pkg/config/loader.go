package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader reads named YAML configuration files from a directory.
//
// Get("database") reads <dir>/database.yaml and then
// <dir>/<environment>/database.yaml; top-level keys of the environment file
// override the base file. Results are cached per name.
type Loader struct {
	fsys        fs.FS
	environment string

	mu    sync.RWMutex
	cache map[string]map[string]any
}

// NewLoader returns a loader for dir on disk.
func NewLoader(dir, environment string) *Loader {
	return NewFSLoader(os.DirFS(dir), environment)
}

// NewFSLoader returns a loader reading from fsys.
func NewFSLoader(fsys fs.FS, environment string) *Loader {
	return &Loader{
		fsys:        fsys,
		environment: environment,
		cache:       make(map[string]map[string]any),
	}
}

func (l *Loader) Environment() string {
	return l.environment
}

// Get returns the merged configuration for name. The returned map is a copy.
func (l *Loader) Get(name string) (map[string]any, error) {
	l.mu.RLock()
	cfg, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return maps.Clone(cfg), nil
	}

	cfg, err := l.load(name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = cfg
	l.mu.Unlock()
	return maps.Clone(cfg), nil
}

// Decode unmarshals the merged configuration for name into v.
func (l *Loader) Decode(name string, v any) error {
	cfg, err := l.Get(name)
	if err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Join(ErrDecode, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// Reset drops all cached configurations.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.cache)
}

func (l *Loader) load(name string) (map[string]any, error) {
	if name == "" || !fs.ValidPath(name) || strings.Contains(name, "..") {
		return nil, errors.Join(ErrInvalidName, fmt.Errorf("%q", name))
	}

	cfg, foundBase, err := l.read(name)
	if err != nil {
		return nil, err
	}

	foundEnv := false
	if l.environment != "" {
		var override map[string]any
		override, foundEnv, err = l.read(path.Join(l.environment, name))
		if err != nil {
			return nil, err
		}
		maps.Copy(cfg, override)
	}

	if !foundBase && !foundEnv {
		return nil, errors.Join(ErrNotFound, fmt.Errorf("%q", name))
	}
	return cfg, nil
}

// read decodes <name>.yaml or <name>.yml. An empty file is an empty mapping.
func (l *Loader) read(name string) (map[string]any, bool, error) {
	cfg := make(map[string]any)
	for _, ext := range []string{".yaml", ".yml"} {
		data, err := fs.ReadFile(l.fsys, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, false, errors.Join(ErrInvalidFile, fmt.Errorf("%s: %w", name+ext, err))
		}
		if cfg == nil {
			cfg = make(map[string]any)
		}
		return cfg, true, nil
	}
	return cfg, false, nil
}
