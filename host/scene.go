package host

import (
	"fmt"
	"path"
	"strings"
)

// Scene is one editor scene: a named asset plus its root object tree.
type Scene struct {
	Name  string
	Path  string
	Dirty bool
	roots []*GameObject
}

func newScene(name, scenePath string) *Scene {
	return &Scene{Name: name, Path: scenePath}
}

func (s *Scene) addObject(obj *GameObject) {
	s.roots = append(s.roots, obj)
	s.Dirty = true
}

// ObjectNode is one node of a hierarchy snapshot.
type ObjectNode struct {
	Name     string       `json:"name"`
	Tag      string       `json:"tag"`
	Layer    string       `json:"layer"`
	Active   bool         `json:"active"`
	Children []ObjectNode `json:"children,omitempty"`
}

// Hierarchy returns the scene's object tree as a nested snapshot.
func (s *Scene) Hierarchy() []ObjectNode {
	nodes := make([]ObjectNode, 0, len(s.roots))
	for _, obj := range s.roots {
		nodes = append(nodes, obj.node())
	}
	return nodes
}

// CreateScene creates a new scene and makes it active.
func (h *Host) CreateScene(name, dir string) (*Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("scene name is required")
	}
	if _, exists := h.scenes[name]; exists {
		return nil, fmt.Errorf("scene %q already exists", name)
	}
	if dir == "" {
		dir = "Assets/"
	}

	s := newScene(name, path.Join(dir, name+".unity"))
	h.scenes[name] = s
	h.activeScene = name
	h.Log("log", fmt.Sprintf("Created scene %q", name))
	return s, nil
}

// LoadScene makes an existing scene active.
func (h *Host) LoadScene(name string) error {
	if _, exists := h.scenes[name]; !exists {
		return fmt.Errorf("scene %q not found", name)
	}
	h.activeScene = name
	h.Log("log", fmt.Sprintf("Loaded scene %q", name))
	return nil
}

// SaveScene marks the active scene clean.
func (h *Host) SaveScene() error {
	s := h.ActiveScene()
	if s == nil {
		return fmt.Errorf("no active scene")
	}
	s.Dirty = false
	h.Log("log", fmt.Sprintf("Saved scene %q", s.Name))
	return nil
}

// ActiveScene returns the active scene, or nil when none is loaded.
func (h *Host) ActiveScene() *Scene {
	return h.scenes[h.activeScene]
}

// SceneNames returns the names of all known scenes.
func (h *Host) SceneNames() []string {
	names := make([]string, 0, len(h.scenes))
	for name := range h.scenes {
		names = append(names, name)
	}
	return names
}

// findByPath resolves a slash-separated object path ("Parent/Child") within
// the scene.
func (s *Scene) findByPath(objPath string) *GameObject {
	segments := strings.Split(objPath, "/")
	current := s.roots
	var found *GameObject
	for _, seg := range segments {
		found = nil
		for _, obj := range current {
			if obj.Name == seg {
				found = obj
				break
			}
		}
		if found == nil {
			return nil
		}
		current = found.Children
	}
	return found
}

// findByName returns the first object with the given name, depth-first.
func (s *Scene) findByName(name string) *GameObject {
	var walk func(objs []*GameObject) *GameObject
	walk = func(objs []*GameObject) *GameObject {
		for _, obj := range objs {
			if obj.Name == name {
				return obj
			}
			if hit := walk(obj.Children); hit != nil {
				return hit
			}
		}
		return nil
	}
	return walk(s.roots)
}

// collect returns every object in the scene for which keep returns true.
func (s *Scene) collect(keep func(*GameObject) bool) []*GameObject {
	var out []*GameObject
	var walk func(objs []*GameObject)
	walk = func(objs []*GameObject) {
		for _, obj := range objs {
			if keep(obj) {
				out = append(out, obj)
			}
			walk(obj.Children)
		}
	}
	walk(s.roots)
	return out
}

// removeObject detaches the object from wherever it sits in the tree.
func (s *Scene) removeObject(target *GameObject) bool {
	remove := func(objs []*GameObject) ([]*GameObject, bool) {
		for i, obj := range objs {
			if obj == target {
				return append(objs[:i], objs[i+1:]...), true
			}
		}
		return objs, false
	}

	var ok bool
	if s.roots, ok = remove(s.roots); ok {
		s.Dirty = true
		return true
	}

	var walk func(objs []*GameObject) bool
	walk = func(objs []*GameObject) bool {
		for _, obj := range objs {
			var removed bool
			if obj.Children, removed = remove(obj.Children); removed {
				return true
			}
			if walk(obj.Children) {
				return true
			}
		}
		return false
	}
	if walk(s.roots) {
		s.Dirty = true
		return true
	}
	return false
}
