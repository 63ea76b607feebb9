// Repost history
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	historyFile   = "repost_history.json"
	historyDBFile = "repost_history.db"
)

// historyStore remembers which notifications were already alerted
type historyStore interface {
	Seen(id string) bool
	Add(id string) error
	Len() int
	Close() error
}

// Seen reposts, set up by main
var history historyStore

// openHistory opens the store selected by driver in dir
func openHistory(driver, dir string) (historyStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "json":
		h, err := openJSONHistory(filepath.Join(dir, historyFile))
		if err != nil {
			return nil, err
		}
		return h, nil
	case "sqlite", "sqlite3":
		h, err := openSQLiteHistory(filepath.Join(dir, historyDBFile))
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, errors.New("unknown history driver: " + driver)
	}
}

// jsonHistory keeps the set in memory and rewrites a JSON array on every add
type jsonHistory struct {
	mu   sync.Mutex
	path string
	seen map[string]struct{}
}

func openJSONHistory(path string) (*jsonHistory, error) {
	h := &jsonHistory{path: path, seen: make(map[string]struct{})}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		lPrintWarn("The content of "+filepath.Base(path)+" is broken, starting with an empty history:", err)
		return h, nil
	}
	for _, id := range ids {
		h.seen[id] = struct{}{}
	}
	return h, nil
}

func (h *jsonHistory) Seen(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.seen[id]
	return ok
}

func (h *jsonHistory) Add(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.seen[id]; ok {
		return nil
	}
	h.seen[id] = struct{}{}
	return h.saveLocked()
}

func (h *jsonHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func (h *jsonHistory) Close() error {
	return nil
}

func (h *jsonHistory) saveLocked() error {
	ids := make([]string, 0, len(h.seen))
	for id := range h.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
