package host

import "fmt"

var knownTools = map[string]bool{
	"view":   true,
	"move":   true,
	"rotate": true,
	"scale":  true,
	"rect":   true,
}

// EditorState is the queryable snapshot of the editor's mode and settings.
type EditorState struct {
	Playing     bool     `json:"playing"`
	Paused      bool     `json:"paused"`
	ActiveTool  string   `json:"active_tool"`
	ActiveScene string   `json:"active_scene"`
	Tags        []string `json:"tags"`
	Layers      []string `json:"layers"`
}

// State returns the current editor state.
func (h *Host) State() EditorState {
	return EditorState{
		Playing:     h.playing,
		Paused:      h.paused,
		ActiveTool:  h.activeTool,
		ActiveScene: h.activeScene,
		Tags:        append([]string(nil), h.tags...),
		Layers:      append([]string(nil), h.layers...),
	}
}

// Play enters play mode.
func (h *Host) Play() error {
	if h.playing {
		return fmt.Errorf("already in play mode")
	}
	h.playing = true
	h.paused = false
	h.Log("log", "Entered play mode")
	return nil
}

// Pause pauses play mode.
func (h *Host) Pause() error {
	if !h.playing {
		return fmt.Errorf("not in play mode")
	}
	if h.paused {
		return fmt.Errorf("already paused")
	}
	h.paused = true
	h.Log("log", "Paused play mode")
	return nil
}

// Stop leaves play mode.
func (h *Host) Stop() error {
	if !h.playing {
		return fmt.Errorf("not in play mode")
	}
	h.playing = false
	h.paused = false
	h.Log("log", "Exited play mode")
	return nil
}

// SetActiveTool switches the active scene tool.
func (h *Host) SetActiveTool(name string) error {
	if !knownTools[name] {
		return fmt.Errorf("unknown tool %q", name)
	}
	h.activeTool = name
	return nil
}

// AddTag registers a new tag; duplicates are rejected.
func (h *Host) AddTag(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	for _, t := range h.tags {
		if t == name {
			return fmt.Errorf("tag %q already exists", name)
		}
	}
	h.tags = append(h.tags, name)
	return nil
}

// AddLayer registers a new layer; duplicates are rejected.
func (h *Host) AddLayer(name string) error {
	if name == "" {
		return fmt.Errorf("layer name is required")
	}
	for _, l := range h.layers {
		if l == name {
			return fmt.Errorf("layer %q already exists", name)
		}
	}
	h.layers = append(h.layers, name)
	return nil
}

// HasTag reports whether the tag is registered.
func (h *Host) HasTag(name string) bool {
	for _, t := range h.tags {
		if t == name {
			return true
		}
	}
	return false
}

// HasLayer reports whether the layer is registered.
func (h *Host) HasLayer(name string) bool {
	for _, l := range h.layers {
		if l == name {
			return true
		}
	}
	return false
}
