// Package host models the editor application the bridge drives: scenes,
// game objects, assets, scripts, console, and editor state.
//
// Host is deliberately unsynchronized. Every method must run on the
// privileged goroutine; callers marshal access through the dispatcher and
// the tick loop (see Loop).
package host

import (
	"fmt"
	"strings"
	"time"
)

// ConsoleEntry is one line of the editor console.
type ConsoleEntry struct {
	Type       string    `json:"type"` // "log", "warning", "error"
	Message    string    `json:"message"`
	Stacktrace string    `json:"stacktrace,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Host holds all editor-owned state.
type Host struct {
	playing    bool
	paused     bool
	activeTool string
	tags       []string
	layers     []string

	scenes      map[string]*Scene
	activeScene string

	assets  map[string]*Asset
	scripts map[string]*Script

	console []ConsoleEntry
	menus   map[string]func(h *Host) error

	now func() time.Time
}

// New creates a host with the stock editor defaults: one active sample
// scene, the built-in tags and layers, and the standard menu table.
func New() *Host {
	h := &Host{
		activeTool: "move",
		tags:       []string{"Untagged", "Player", "MainCamera", "EditorOnly"},
		layers:     []string{"Default", "TransparentFX", "UI", "Water"},
		scenes:     make(map[string]*Scene),
		assets:     make(map[string]*Asset),
		scripts:    make(map[string]*Script),
		now:        time.Now,
	}
	h.menus = builtinMenus()

	sample := newScene("SampleScene", "Assets/Scenes/SampleScene.unity")
	sample.addObject(newGameObject("Main Camera", "MainCamera", "Default"))
	sample.addObject(newGameObject("Directional Light", "Untagged", "Default"))
	h.scenes[sample.Name] = sample
	h.activeScene = sample.Name
	return h
}

// Log appends a console entry.
func (h *Host) Log(entryType, message string) {
	h.console = append(h.console, ConsoleEntry{
		Type:      entryType,
		Message:   message,
		Timestamp: h.now(),
	})
}

// ConsoleFilter narrows what Console returns.
type ConsoleFilter struct {
	Types      []string // empty or containing "all" means every type
	FilterText string
	Count      int // 0 means unlimited; otherwise the most recent n
}

// Console returns entries matching the filter, oldest first.
func (h *Host) Console(f ConsoleFilter) []ConsoleEntry {
	wantType := func(entryType string) bool {
		if len(f.Types) == 0 {
			return true
		}
		for _, t := range f.Types {
			if t == "all" || t == entryType {
				return true
			}
		}
		return false
	}

	matched := make([]ConsoleEntry, 0, len(h.console))
	for _, e := range h.console {
		if !wantType(e.Type) {
			continue
		}
		if f.FilterText != "" && !strings.Contains(e.Message, f.FilterText) {
			continue
		}
		matched = append(matched, e)
	}

	if f.Count > 0 && len(matched) > f.Count {
		matched = matched[len(matched)-f.Count:]
	}
	return matched
}

// ClearConsole drops all console entries and returns how many were dropped.
func (h *Host) ClearConsole() int {
	n := len(h.console)
	h.console = nil
	return n
}

// ExecuteMenuItem runs the menu entry at path, e.g. "File/Save Project".
func (h *Host) ExecuteMenuItem(path string) error {
	item, exists := h.menus[path]
	if !exists {
		return fmt.Errorf("menu item %q not found", path)
	}
	if err := item(h); err != nil {
		return err
	}
	h.Log("log", fmt.Sprintf("Executed menu item %q", path))
	return nil
}

// MenuItems returns the registered menu paths.
func (h *Host) MenuItems() []string {
	paths := make([]string, 0, len(h.menus))
	for p := range h.menus {
		paths = append(paths, p)
	}
	return paths
}

func builtinMenus() map[string]func(h *Host) error {
	return map[string]func(h *Host) error{
		"File/Save Project": func(h *Host) error {
			for _, s := range h.scenes {
				s.Dirty = false
			}
			return nil
		},
		"File/New Scene": func(h *Host) error {
			_, err := h.CreateScene("Untitled", "Assets/Scenes/")
			return err
		},
		"Edit/Play": func(h *Host) error {
			return h.Play()
		},
		"Edit/Pause": func(h *Host) error {
			return h.Pause()
		},
		"Assets/Refresh": func(h *Host) error {
			return nil
		},
	}
}
