package sources

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source is one syndication feed to harvest.
type Source struct {
	ID      string            `json:"id" yaml:"id"`
	URL     string            `json:"url" yaml:"url"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
	Headers map[string]string `json:"headers" yaml:"headers"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (s Source) EnabledValue() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// configFile represents the structure of a YAML/JSON sources file.
type configFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry materializes feed sources loaded from config files.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	idx     map[string]Source
}

// Load reads feed sources from path. A ".txt" file is treated as a plain
// list (one URL per line, '#' comments); anything else is decoded as a
// YAML/JSON sources file with env-var expansion.
func Load(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return loadList(path)
	}
	return loadRegistry(path)
}

// loadList reads a plain one-URL-per-line feed list.
func loadList(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources list: %w", err)
	}
	defer f.Close()

	var srcs []Source
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		srcs = append(srcs, Source{ID: listSourceID(line), URL: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sources list: %w", err)
	}

	return build(srcs)
}

// listSourceID derives a stable id for a bare URL line.
func listSourceID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	id := u.Host
	if p := strings.Trim(u.Path, "/"); p != "" {
		id += "/" + p
	}
	return id
}

// loadRegistry loads a structured YAML/JSON sources file.
func loadRegistry(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	cfg, err := parseConfig(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(cfg.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	return build(cfg.Sources)
}

// parseConfig attempts to decode the sources file content.
func parseConfig(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cfg configFile
		if err := d.fn(data, &cfg); err == nil {
			return cfg, nil
		}
	}

	return configFile{}, errors.New("sources file format not recognized (expected YAML, JSON, or a .txt list)")
}

// build sanitizes, validates, and indexes the sources.
func build(srcs []Source) (*Registry, error) {
	reg := &Registry{
		sources: make([]Source, len(srcs)),
		idx:     make(map[string]Source, len(srcs)),
	}

	for i := range srcs {
		src := sanitize(srcs[i])
		if err := validate(src); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[src.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		reg.sources[i] = src
		reg.idx[src.ID] = src
	}

	return reg, nil
}

// sanitize trims and normalizes the source fields.
func sanitize(src Source) Source {
	src.ID = strings.TrimSpace(src.ID)
	src.URL = strings.TrimSpace(src.URL)
	if src.ID == "" && src.URL != "" {
		src.ID = listSourceID(src.URL)
	}
	if len(src.Headers) > 0 {
		out := make(map[string]string, len(src.Headers))
		for k, v := range src.Headers {
			key := strings.TrimSpace(k)
			val := strings.TrimSpace(v)
			if key == "" || val == "" {
				continue
			}
			out[key] = val
		}
		if len(out) == 0 {
			out = nil
		}
		src.Headers = out
	}
	return src
}

// validate checks that required fields are present.
func validate(src Source) error {
	if src.ID == "" {
		return errors.New("id is required")
	}
	if src.URL == "" {
		return fmt.Errorf("url is required for source %q", src.ID)
	}
	u, err := url.Parse(src.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q is not absolute for source %q", src.URL, src.ID)
	}
	return nil
}

// ByID returns the source config by id.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.idx[id]
	return src, ok
}

// All returns all configured sources.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Enabled returns sources that are enabled.
func (r *Registry) Enabled() []Source {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Source, 0, len(all))
	for _, src := range all {
		if src.EnabledValue() {
			out = append(out, src)
		}
	}
	return out
}
