package mission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/wricardo/roversim/logging"
)

var (
	ErrMissionNotFound = errors.New("mission not found")
	ErrInvalidMission  = errors.New("invalid mission")
)

// extensions lists the supported file formats in lookup order
var extensions = []string{".json", ".toml"}

// Catalog handles mission loading and caching
type Catalog struct {
	dir      string
	logger   logging.Logger
	missions map[string]*Mission
	mu       sync.RWMutex
}

// NewCatalog creates a catalog over an existing directory
func NewCatalog(dir string, logger logging.Logger) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("missions directory does not exist: %s", dir)
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	return &Catalog{
		dir:      dir,
		logger:   logger,
		missions: make(map[string]*Mission),
	}, nil
}

// Dir returns the catalog directory
func (c *Catalog) Dir() string {
	return c.dir
}

// Load loads a mission by id (file name without extension)
func (c *Catalog) Load(id string) (*Mission, error) {
	id = missionID(id)

	c.mu.RLock()
	if m, ok := c.missions[id]; ok {
		c.mu.RUnlock()
		return m, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if m, ok := c.missions[id]; ok {
		return m, nil
	}

	m, err := c.readMission(id)
	if err != nil {
		return nil, err
	}

	c.missions[id] = m
	return m, nil
}

func (c *Catalog) readMission(id string) (*Mission, error) {
	for _, ext := range extensions {
		path := filepath.Join(c.dir, id+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read mission file: %w", err)
		}

		m, err := decode(ext, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMission, filepath.Base(path), err)
		}
		if err := Validate(m); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMission, filepath.Base(path), err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMissionNotFound, id)
}

func decode(ext string, data []byte) (*Mission, error) {
	var m Mission
	switch ext {
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}
	return &m, nil
}

// List returns information about every valid mission, sorted by id.
// Invalid files are skipped and logged.
func (c *Catalog) List() ([]*Info, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read missions directory: %w", err)
	}

	var infos []*Info
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}

		id := missionID(entry.Name())
		if seen[id] {
			continue
		}
		seen[id] = true

		m, err := c.Load(id)
		if err != nil {
			c.logger.Warn("skipping mission", logging.String("file", entry.Name()), logging.Err(err))
			continue
		}

		symbols, _ := m.Symbols()
		infos = append(infos, &Info{
			Filename:     entry.Name(),
			MissionID:    id,
			Name:         m.Name,
			Description:  m.Description,
			Instructions: len(symbols),
			HasExpect:    m.Expect != nil,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].MissionID < infos[j].MissionID })
	return infos, nil
}

// IDs returns the id of every mission file in the directory, valid or not
func (c *Catalog) IDs() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read missions directory: %w", err)
	}

	var ids []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		id := missionID(entry.Name())
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Save validates a mission and writes it as JSON
func (c *Catalog) Save(id string, m *Mission) error {
	if err := Validate(m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMission, err)
	}

	id = missionID(id)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: bad mission id %q", ErrInvalidMission, id)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mission: %w", err)
	}

	path := filepath.Join(c.dir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mission file: %w", err)
	}

	c.mu.Lock()
	c.missions[id] = m
	c.mu.Unlock()

	c.logger.Info("mission saved", logging.String("mission", id))
	return nil
}

// Refresh drops every cached mission
func (c *Catalog) Refresh() {
	c.mu.Lock()
	c.missions = make(map[string]*Mission)
	c.mu.Unlock()
}

// evict drops one cached mission
func (c *Catalog) evict(id string) {
	c.mu.Lock()
	delete(c.missions, id)
	c.mu.Unlock()
}

// Watch drops cached missions whose files change, until ctx is done.
// ready, if non-nil, is closed once the watcher is registered.
func (c *Catalog) Watch(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.dir, err)
	}
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if !supported(name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			c.evict(missionID(name))
			c.logger.Debug("mission cache invalidated",
				logging.String("file", name),
				logging.String("op", event.Op.String()),
			)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("mission watcher error", logging.Err(err))
		}
	}
}

func supported(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func missionID(name string) string {
	if supported(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
