// Package functions implements the bridge's function catalog: the named
// capabilities a connected automation client may invoke. Every handler
// marshals its host access through the dispatcher so that editor state is
// only ever touched on the privileged goroutine.
package functions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/isekream/WindsurfUnityMCP/dispatch"
	"github.com/isekream/WindsurfUnityMCP/host"
	"github.com/isekream/WindsurfUnityMCP/registry"
)

// Catalog binds the editor host and its dispatcher into registry handlers.
type Catalog struct {
	host       *host.Host
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger
}

// NewCatalog creates a catalog over the given host and dispatcher.
func NewCatalog(h *host.Host, d *dispatch.Dispatcher, logger zerolog.Logger) *Catalog {
	return &Catalog{
		host:       h,
		dispatcher: d,
		logger:     logger.With().Str("component", "functions").Logger(),
	}
}

// RegisterAll registers every function the bridge exposes.
func (c *Catalog) RegisterAll(r *registry.Registry) {
	r.MustRegister("execute_menu_item", c.ExecuteMenuItem)
	r.MustRegister("manage_script", c.ManageScript)
	r.MustRegister("manage_editor", c.ManageEditor)
	r.MustRegister("manage_scene", c.ManageScene)
	r.MustRegister("manage_asset", c.ManageAsset)
	r.MustRegister("manage_gameobject", c.ManageGameObject)
	r.MustRegister("read_console", c.ReadConsole)
}

// onHost runs fn on the privileged goroutine and waits for its outcome.
// Cancellation abandons the wait; the queued action still runs on a later
// tick but its result goes nowhere.
func (c *Catalog) onHost(ctx context.Context, fn func(h *host.Host) (any, error)) (any, error) {
	resultCh := c.dispatcher.RunAsync(func() (any, error) {
		return fn(c.host)
	})
	select {
	case res := <-resultCh:
		return res.Value, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// trace records one inbound invocation once its action is known.
func (c *Catalog) trace(function, action string) {
	c.logger.Debug().Str("function", function).Str("action", action).Msg("Handling function")
}

// ExecuteMenuItem triggers an editor menu entry by its path.
func (c *Catalog) ExecuteMenuItem(ctx context.Context, params map[string]any) (registry.Result, error) {
	action, _, err := stringParam(params, "action")
	if err != nil {
		return registry.Result{}, err
	}
	c.trace("execute_menu_item", action)

	if action == "get_available_menus" {
		items, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.MenuItems(), nil
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Available menu items retrieved", Data: items}, nil
	}

	menuPath, err := requireString(params, "menu_path")
	if err != nil {
		return registry.Result{}, err
	}
	_, err = c.onHost(ctx, func(h *host.Host) (any, error) {
		return nil, h.ExecuteMenuItem(menuPath)
	})
	if err != nil {
		return registry.Result{}, err
	}
	return registry.Result{Text: fmt.Sprintf("Executed menu item %q", menuPath)}, nil
}

// ManageScript handles script CRUD: create, read, update, delete.
func (c *Catalog) ManageScript(ctx context.Context, params map[string]any) (registry.Result, error) {
	action, err := requireString(params, "action")
	if err != nil {
		return registry.Result{}, err
	}
	name, err := requireString(params, "name")
	if err != nil {
		return registry.Result{}, err
	}
	c.trace("manage_script", action)

	switch action {
	case "create":
		dir, _, _ := stringParam(params, "path")
		contents, _, _ := stringParam(params, "contents")
		scriptType, _, _ := stringParam(params, "script_type")
		namespace, _, _ := stringParam(params, "namespace")
		script, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.CreateScript(name, dir, contents, scriptType, namespace)
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Created script %q", name), Data: script}, nil

	case "read":
		script, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.ReadScript(name)
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Read script %q", name), Data: script}, nil

	case "update":
		contents, err := requireString(params, "contents")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.UpdateScript(name, contents)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Updated script %q", name)}, nil

	case "delete":
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.DeleteScript(name)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Deleted script %q", name)}, nil
	}
	return registry.Result{}, fmt.Errorf("unknown manage_script action %q", action)
}

// ManageEditor controls editor mode and settings: play, pause, stop,
// get_state, set_active_tool, add_tag, add_layer.
func (c *Catalog) ManageEditor(ctx context.Context, params map[string]any) (registry.Result, error) {
	action, err := requireString(params, "action")
	if err != nil {
		return registry.Result{}, err
	}
	c.trace("manage_editor", action)

	switch action {
	case "play":
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) { return nil, h.Play() }); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Entered play mode"}, nil

	case "pause":
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) { return nil, h.Pause() }); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Paused play mode"}, nil

	case "stop":
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) { return nil, h.Stop() }); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Exited play mode"}, nil

	case "get_state":
		state, err := c.onHost(ctx, func(h *host.Host) (any, error) { return h.State(), nil })
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Editor state retrieved", Data: state}, nil

	case "set_active_tool":
		tool, err := requireString(params, "tool_name")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.SetActiveTool(tool)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Active tool set to %q", tool)}, nil

	case "add_tag":
		tag, err := requireString(params, "tag_name")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.AddTag(tag)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Added tag %q", tag)}, nil

	case "add_layer":
		layer, err := requireString(params, "layer_name")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.AddLayer(layer)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Added layer %q", layer)}, nil
	}
	return registry.Result{}, fmt.Errorf("unknown manage_editor action %q", action)
}

// ManageScene handles scene operations: create, load, save, get_hierarchy,
// get_active, list.
func (c *Catalog) ManageScene(ctx context.Context, params map[string]any) (registry.Result, error) {
	action, err := requireString(params, "action")
	if err != nil {
		return registry.Result{}, err
	}
	c.trace("manage_scene", action)

	switch action {
	case "create":
		name, err := requireString(params, "name")
		if err != nil {
			return registry.Result{}, err
		}
		dir, _, _ := stringParam(params, "path")
		scene, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			s, err := h.CreateScene(name, dir)
			if err != nil {
				return nil, err
			}
			return map[string]any{"name": s.Name, "path": s.Path}, nil
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Created scene %q", name), Data: scene}, nil

	case "load":
		name, err := requireString(params, "name")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.LoadScene(name)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Loaded scene %q", name)}, nil

	case "save":
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.SaveScene()
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Saved active scene"}, nil

	case "get_hierarchy":
		hierarchy, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			s := h.ActiveScene()
			if s == nil {
				return nil, fmt.Errorf("no active scene")
			}
			return s.Hierarchy(), nil
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Scene hierarchy retrieved", Data: hierarchy}, nil

	case "get_active":
		active, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			s := h.ActiveScene()
			if s == nil {
				return nil, fmt.Errorf("no active scene")
			}
			return map[string]any{"name": s.Name, "path": s.Path, "dirty": s.Dirty}, nil
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Active scene retrieved", Data: active}, nil

	case "list":
		names, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.SceneNames(), nil
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Scenes listed", Data: names}, nil
	}
	return registry.Result{}, fmt.Errorf("unknown manage_scene action %q", action)
}

// ManageAsset handles asset operations: create, get_info, modify, delete,
// duplicate, move, search.
func (c *Catalog) ManageAsset(ctx context.Context, params map[string]any) (registry.Result, error) {
	action, err := requireString(params, "action")
	if err != nil {
		return registry.Result{}, err
	}
	c.trace("manage_asset", action)

	switch action {
	case "create":
		assetPath, err := requireString(params, "path")
		if err != nil {
			return registry.Result{}, err
		}
		assetType, err := requireString(params, "asset_type")
		if err != nil {
			return registry.Result{}, err
		}
		properties, _, err := mapParam(params, "properties")
		if err != nil {
			return registry.Result{}, err
		}
		asset, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.CreateAsset(assetPath, assetType, properties)
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Created asset %q", assetPath), Data: asset}, nil

	case "get_info":
		assetPath, err := requireString(params, "path")
		if err != nil {
			return registry.Result{}, err
		}
		asset, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.AssetInfo(assetPath)
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Asset %q retrieved", assetPath), Data: asset}, nil

	case "modify":
		assetPath, err := requireString(params, "path")
		if err != nil {
			return registry.Result{}, err
		}
		properties, present, err := mapParam(params, "properties")
		if err != nil {
			return registry.Result{}, err
		}
		if !present {
			return registry.Result{}, fmt.Errorf("parameter %q is required", "properties")
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.ModifyAsset(assetPath, properties)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Modified asset %q", assetPath)}, nil

	case "delete":
		assetPath, err := requireString(params, "path")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.DeleteAsset(assetPath)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Deleted asset %q", assetPath)}, nil

	case "duplicate":
		assetPath, err := requireString(params, "path")
		if err != nil {
			return registry.Result{}, err
		}
		destination, _, _ := stringParam(params, "destination")
		dup, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.DuplicateAsset(assetPath, destination)
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Duplicated asset %q", assetPath), Data: dup}, nil

	case "move", "rename":
		assetPath, err := requireString(params, "path")
		if err != nil {
			return registry.Result{}, err
		}
		destination, err := requireString(params, "destination")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.MoveAsset(assetPath, destination)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Moved asset %q to %q", assetPath, destination)}, nil

	case "search":
		pattern, _, err := stringParam(params, "search_pattern")
		if err != nil {
			return registry.Result{}, err
		}
		filterType, _, err := stringParam(params, "filter_type")
		if err != nil {
			return registry.Result{}, err
		}
		pageNumber, _, err := intParam(params, "page_number")
		if err != nil {
			return registry.Result{}, err
		}
		pageSize, _, err := intParam(params, "page_size")
		if err != nil {
			return registry.Result{}, err
		}
		page, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.SearchAssets(host.AssetSearch{
				Pattern:    pattern,
				FilterType: filterType,
				PageNumber: pageNumber,
				PageSize:   pageSize,
			})
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: "Asset search complete", Data: page}, nil
	}
	return registry.Result{}, fmt.Errorf("unknown manage_asset action %q", action)
}

// ManageGameObject handles object operations in the active scene: create,
// modify, delete, find, add_component, remove_component,
// set_component_property, get_components.
func (c *Catalog) ManageGameObject(ctx context.Context, params map[string]any) (registry.Result, error) {
	action, err := requireString(params, "action")
	if err != nil {
		return registry.Result{}, err
	}
	c.trace("manage_gameobject", action)

	switch action {
	case "create":
		name, err := requireString(params, "name")
		if err != nil {
			return registry.Result{}, err
		}
		opts := host.CreateObjectOptions{}
		if opts.Tag, _, err = stringParam(params, "tag"); err != nil {
			return registry.Result{}, err
		}
		if opts.Layer, _, err = stringParam(params, "layer"); err != nil {
			return registry.Result{}, err
		}
		if opts.Parent, _, err = stringParam(params, "parent"); err != nil {
			return registry.Result{}, err
		}
		if opts.Position, err = vec3Param(params, "position"); err != nil {
			return registry.Result{}, err
		}
		if opts.Rotation, err = vec3Param(params, "rotation"); err != nil {
			return registry.Result{}, err
		}
		if opts.Scale, err = vec3Param(params, "scale"); err != nil {
			return registry.Result{}, err
		}
		obj, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			created, err := h.CreateObject(name, opts)
			if err != nil {
				return nil, err
			}
			return objectInfo(created), nil
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Created object %q", name), Data: obj}, nil

	case "modify":
		target, err := requireString(params, "target")
		if err != nil {
			return registry.Result{}, err
		}
		opts := host.ModifyObjectOptions{}
		if opts.Name, err = stringPtrParam(params, "name"); err != nil {
			return registry.Result{}, err
		}
		if opts.Tag, err = stringPtrParam(params, "tag"); err != nil {
			return registry.Result{}, err
		}
		if opts.Layer, err = stringPtrParam(params, "layer"); err != nil {
			return registry.Result{}, err
		}
		if opts.SetActive, err = boolPtrParam(params, "set_active"); err != nil {
			return registry.Result{}, err
		}
		if opts.Position, err = vec3Param(params, "position"); err != nil {
			return registry.Result{}, err
		}
		if opts.Rotation, err = vec3Param(params, "rotation"); err != nil {
			return registry.Result{}, err
		}
		if opts.Scale, err = vec3Param(params, "scale"); err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.ModifyObject(target, opts)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Modified object %q", target)}, nil

	case "delete":
		target, err := requireString(params, "target")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.DeleteObject(target)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Deleted object %q", target)}, nil

	case "find":
		term, err := requireString(params, "search_term")
		if err != nil {
			return registry.Result{}, err
		}
		substring, _, err := boolParam(params, "substring_match")
		if err != nil {
			return registry.Result{}, err
		}
		includeInactive, _, err := boolParam(params, "include_inactive")
		if err != nil {
			return registry.Result{}, err
		}
		found, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			objs, err := h.FindObjects(term, substring, includeInactive)
			if err != nil {
				return nil, err
			}
			infos := make([]map[string]any, 0, len(objs))
			for _, obj := range objs {
				infos = append(infos, objectInfo(obj))
			}
			return infos, nil
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Found objects matching %q", term), Data: found}, nil

	case "add_component":
		target, err := requireString(params, "target")
		if err != nil {
			return registry.Result{}, err
		}
		component, err := requireString(params, "component_name")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.AddComponent(target, component)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Added %s to %q", component, target)}, nil

	case "remove_component":
		target, err := requireString(params, "target")
		if err != nil {
			return registry.Result{}, err
		}
		component, err := requireString(params, "component_name")
		if err != nil {
			return registry.Result{}, err
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return nil, h.RemoveComponent(target, component)
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Removed %s from %q", component, target)}, nil

	case "set_component_property":
		target, err := requireString(params, "target")
		if err != nil {
			return registry.Result{}, err
		}
		component, err := requireString(params, "component_name")
		if err != nil {
			return registry.Result{}, err
		}
		properties, present, err := mapParam(params, "properties")
		if err != nil {
			return registry.Result{}, err
		}
		if !present || len(properties) == 0 {
			return registry.Result{}, fmt.Errorf("parameter %q is required", "properties")
		}
		if _, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			for property, value := range properties {
				if err := h.SetComponentProperty(target, component, property, value); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}); err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Set %d properties on %s of %q", len(properties), component, target)}, nil

	case "get_components":
		target, err := requireString(params, "target")
		if err != nil {
			return registry.Result{}, err
		}
		names, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.ComponentNames(target)
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Components of %q retrieved", target), Data: names}, nil
	}
	return registry.Result{}, fmt.Errorf("unknown manage_gameobject action %q", action)
}

// ReadConsole returns or clears editor console entries.
func (c *Catalog) ReadConsole(ctx context.Context, params map[string]any) (registry.Result, error) {
	action, _, err := stringParam(params, "action")
	if err != nil {
		return registry.Result{}, err
	}
	c.trace("read_console", action)

	if action == "clear" {
		dropped, err := c.onHost(ctx, func(h *host.Host) (any, error) {
			return h.ClearConsole(), nil
		})
		if err != nil {
			return registry.Result{}, err
		}
		return registry.Result{Text: fmt.Sprintf("Cleared %d console entries", dropped)}, nil
	}

	types, _, err := stringSliceParam(params, "types")
	if err != nil {
		return registry.Result{}, err
	}
	filterText, _, err := stringParam(params, "filter_text")
	if err != nil {
		return registry.Result{}, err
	}
	count, _, err := intParam(params, "count")
	if err != nil {
		return registry.Result{}, err
	}

	entries, err := c.onHost(ctx, func(h *host.Host) (any, error) {
		return h.Console(host.ConsoleFilter{
			Types:      types,
			FilterText: filterText,
			Count:      count,
		}), nil
	})
	if err != nil {
		return registry.Result{}, err
	}
	return registry.Result{Text: "Console entries retrieved", Data: entries}, nil
}

// objectInfo flattens a game object into the wire shape clients get back.
func objectInfo(obj *host.GameObject) map[string]any {
	components := make([]string, 0, len(obj.Components))
	for name := range obj.Components {
		components = append(components, name)
	}
	return map[string]any{
		"name":       obj.Name,
		"tag":        obj.Tag,
		"layer":      obj.Layer,
		"active":     obj.Active,
		"position":   obj.Position,
		"rotation":   obj.Rotation,
		"scale":      obj.Scale,
		"components": components,
	}
}
