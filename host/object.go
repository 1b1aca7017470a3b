package host

import (
	"fmt"
	"strings"
)

// Vec3 is a 3-component vector as it appears on the wire.
type Vec3 [3]float64

// GameObject is one object in a scene's hierarchy.
type GameObject struct {
	Name       string
	Tag        string
	Layer      string
	Active     bool
	Position   Vec3
	Rotation   Vec3
	Scale      Vec3
	Components map[string]map[string]any
	Children   []*GameObject
}

func newGameObject(name, tag, layer string) *GameObject {
	return &GameObject{
		Name:       name,
		Tag:        tag,
		Layer:      layer,
		Active:     true,
		Scale:      Vec3{1, 1, 1},
		Components: map[string]map[string]any{"Transform": {}},
	}
}

func (g *GameObject) node() ObjectNode {
	n := ObjectNode{
		Name:   g.Name,
		Tag:    g.Tag,
		Layer:  g.Layer,
		Active: g.Active,
	}
	for _, child := range g.Children {
		n.Children = append(n.Children, child.node())
	}
	return n
}

// propKind classifies the value a component property accepts.
type propKind int

const (
	kindFloat propKind = iota
	kindBool
	kindString
	kindVec3
)

func (k propKind) String() string {
	switch k {
	case kindFloat:
		return "number"
	case kindBool:
		return "bool"
	case kindString:
		return "string"
	case kindVec3:
		return "vec3"
	default:
		return "unknown"
	}
}

// componentSchemas lists the attachable component kinds and, per kind, the
// properties that may be set and the value type each accepts. Property
// mutation goes through this table only; there is no by-string-path
// traversal of arbitrary host objects.
var componentSchemas = map[string]map[string]propKind{
	"Transform": {
		"position": kindVec3,
		"rotation": kindVec3,
		"scale":    kindVec3,
	},
	"Rigidbody": {
		"mass":        kindFloat,
		"useGravity":  kindBool,
		"isKinematic": kindBool,
	},
	"MeshRenderer": {
		"material": kindString,
		"enabled":  kindBool,
	},
	"BoxCollider": {
		"isTrigger": kindBool,
		"size":      kindVec3,
	},
	"Light": {
		"intensity": kindFloat,
		"range":     kindFloat,
		"type":      kindString,
	},
	"Camera": {
		"fieldOfView":  kindFloat,
		"orthographic": kindBool,
	},
	"AudioSource": {
		"volume": kindFloat,
		"loop":   kindBool,
		"clip":   kindString,
	},
}

// CreateObjectOptions carries the optional initial settings for CreateObject.
type CreateObjectOptions struct {
	Tag      string
	Layer    string
	Parent   string // object path; empty means scene root
	Position *Vec3
	Rotation *Vec3
	Scale    *Vec3
}

// CreateObject creates a game object in the active scene.
func (h *Host) CreateObject(name string, opts CreateObjectOptions) (*GameObject, error) {
	if name == "" {
		return nil, fmt.Errorf("object name is required")
	}
	scene := h.ActiveScene()
	if scene == nil {
		return nil, fmt.Errorf("no active scene")
	}

	tag := opts.Tag
	if tag == "" {
		tag = "Untagged"
	}
	if !h.HasTag(tag) {
		return nil, fmt.Errorf("tag %q is not defined", tag)
	}
	layer := opts.Layer
	if layer == "" {
		layer = "Default"
	}
	if !h.HasLayer(layer) {
		return nil, fmt.Errorf("layer %q is not defined", layer)
	}

	obj := newGameObject(name, tag, layer)
	if opts.Position != nil {
		obj.Position = *opts.Position
	}
	if opts.Rotation != nil {
		obj.Rotation = *opts.Rotation
	}
	if opts.Scale != nil {
		obj.Scale = *opts.Scale
	}

	if opts.Parent != "" {
		parent := scene.findByPath(opts.Parent)
		if parent == nil {
			return nil, fmt.Errorf("parent %q not found", opts.Parent)
		}
		parent.Children = append(parent.Children, obj)
		scene.Dirty = true
	} else {
		scene.addObject(obj)
	}

	h.Log("log", fmt.Sprintf("Created object %q", name))
	return obj, nil
}

// FindObject resolves target by path when it contains a slash, otherwise by
// name anywhere in the active scene.
func (h *Host) FindObject(target string) (*GameObject, error) {
	scene := h.ActiveScene()
	if scene == nil {
		return nil, fmt.Errorf("no active scene")
	}

	var obj *GameObject
	if strings.Contains(target, "/") {
		obj = scene.findByPath(target)
	} else {
		obj = scene.findByName(target)
	}
	if obj == nil {
		return nil, fmt.Errorf("object %q not found", target)
	}
	return obj, nil
}

// FindObjects returns every object matching the search term by exact name
// or, when substring is set, by substring match.
func (h *Host) FindObjects(term string, substring, includeInactive bool) ([]*GameObject, error) {
	scene := h.ActiveScene()
	if scene == nil {
		return nil, fmt.Errorf("no active scene")
	}
	return scene.collect(func(obj *GameObject) bool {
		if !includeInactive && !obj.Active {
			return false
		}
		if substring {
			return strings.Contains(obj.Name, term)
		}
		return obj.Name == term
	}), nil
}

// ModifyObjectOptions carries the mutations ModifyObject applies. Nil fields
// are left untouched.
type ModifyObjectOptions struct {
	Name      *string
	Tag       *string
	Layer     *string
	SetActive *bool
	Position  *Vec3
	Rotation  *Vec3
	Scale     *Vec3
}

// ModifyObject applies the given mutations to the target object.
func (h *Host) ModifyObject(target string, opts ModifyObjectOptions) error {
	obj, err := h.FindObject(target)
	if err != nil {
		return err
	}

	if opts.Tag != nil && !h.HasTag(*opts.Tag) {
		return fmt.Errorf("tag %q is not defined", *opts.Tag)
	}
	if opts.Layer != nil && !h.HasLayer(*opts.Layer) {
		return fmt.Errorf("layer %q is not defined", *opts.Layer)
	}

	if opts.Name != nil {
		obj.Name = *opts.Name
	}
	if opts.Tag != nil {
		obj.Tag = *opts.Tag
	}
	if opts.Layer != nil {
		obj.Layer = *opts.Layer
	}
	if opts.SetActive != nil {
		obj.Active = *opts.SetActive
	}
	if opts.Position != nil {
		obj.Position = *opts.Position
	}
	if opts.Rotation != nil {
		obj.Rotation = *opts.Rotation
	}
	if opts.Scale != nil {
		obj.Scale = *opts.Scale
	}

	h.ActiveScene().Dirty = true
	return nil
}

// DeleteObject removes the target object and its children from the scene.
func (h *Host) DeleteObject(target string) error {
	obj, err := h.FindObject(target)
	if err != nil {
		return err
	}
	if !h.ActiveScene().removeObject(obj) {
		return fmt.Errorf("object %q not found", target)
	}
	h.Log("log", fmt.Sprintf("Deleted object %q", obj.Name))
	return nil
}

// AddComponent attaches a component of the given kind to the target.
func (h *Host) AddComponent(target, component string) error {
	obj, err := h.FindObject(target)
	if err != nil {
		return err
	}
	if _, known := componentSchemas[component]; !known {
		return fmt.Errorf("unknown component type %q", component)
	}
	if _, attached := obj.Components[component]; attached {
		return fmt.Errorf("component %q already attached to %q", component, obj.Name)
	}
	obj.Components[component] = map[string]any{}
	h.ActiveScene().Dirty = true
	return nil
}

// RemoveComponent detaches a component from the target. Transform cannot be
// removed.
func (h *Host) RemoveComponent(target, component string) error {
	obj, err := h.FindObject(target)
	if err != nil {
		return err
	}
	if component == "Transform" {
		return fmt.Errorf("Transform cannot be removed")
	}
	if _, attached := obj.Components[component]; !attached {
		return fmt.Errorf("component %q not attached to %q", component, obj.Name)
	}
	delete(obj.Components, component)
	h.ActiveScene().Dirty = true
	return nil
}

// SetComponentProperty sets one property on an attached component. The
// component kind and property must exist in the schema table and the value
// must match the declared type; each failure mode is reported distinctly.
func (h *Host) SetComponentProperty(target, component, property string, value any) error {
	obj, err := h.FindObject(target)
	if err != nil {
		return err
	}

	schema, known := componentSchemas[component]
	if !known {
		return fmt.Errorf("unknown component type %q", component)
	}
	props, attached := obj.Components[component]
	if !attached {
		return fmt.Errorf("component %q not attached to %q", component, obj.Name)
	}
	kind, settable := schema[property]
	if !settable {
		return fmt.Errorf("component %q has no settable property %q", component, property)
	}

	coerced, err := coerceValue(kind, value)
	if err != nil {
		return fmt.Errorf("property %s.%s: %w", component, property, err)
	}
	props[property] = coerced
	h.ActiveScene().Dirty = true
	return nil
}

func coerceValue(kind propKind, value any) (any, error) {
	switch kind {
	case kindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
	case kindBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case kindString:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case kindVec3:
		if v, err := ParseVec3(value); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", kind, value)
}

// ParseVec3 converts a decoded JSON array of three numbers into a Vec3.
func ParseVec3(value any) (Vec3, error) {
	var out Vec3
	switch arr := value.(type) {
	case []any:
		if len(arr) != 3 {
			return out, fmt.Errorf("expected 3 elements, got %d", len(arr))
		}
		for i, elem := range arr {
			f, ok := elem.(float64)
			if !ok {
				return out, fmt.Errorf("element %d is %T, not a number", i, elem)
			}
			out[i] = f
		}
		return out, nil
	case []float64:
		if len(arr) != 3 {
			return out, fmt.Errorf("expected 3 elements, got %d", len(arr))
		}
		copy(out[:], arr)
		return out, nil
	case Vec3:
		return arr, nil
	}
	return out, fmt.Errorf("expected an array of 3 numbers, got %T", value)
}

// ComponentNames returns the components attached to the target.
func (h *Host) ComponentNames(target string) ([]string, error) {
	obj, err := h.FindObject(target)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(obj.Components))
	for name := range obj.Components {
		names = append(names, name)
	}
	return names, nil
}
