package host

import (
	"fmt"
	"path"
)

// Script is one C# script artifact managed by name.
type Script struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Contents  string `json:"contents"`
	Type      string `json:"script_type,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// CreateScript creates a script. When contents is empty a skeleton matching
// the script type and namespace is generated.
func (h *Host) CreateScript(name, dir, contents, scriptType, namespace string) (*Script, error) {
	if name == "" {
		return nil, fmt.Errorf("script name is required")
	}
	if _, exists := h.scripts[name]; exists {
		return nil, fmt.Errorf("script %q already exists", name)
	}
	if dir == "" {
		dir = "Assets/"
	}
	if scriptType == "" {
		scriptType = "MonoBehaviour"
	}
	if contents == "" {
		contents = scriptSkeleton(name, scriptType, namespace)
	}

	s := &Script{
		Name:      name,
		Path:      path.Join(dir, name+".cs"),
		Contents:  contents,
		Type:      scriptType,
		Namespace: namespace,
	}
	h.scripts[name] = s
	h.Log("log", fmt.Sprintf("Created script %q at %s", name, s.Path))
	return s, nil
}

// ReadScript returns the script registered under name.
func (h *Host) ReadScript(name string) (*Script, error) {
	s, exists := h.scripts[name]
	if !exists {
		return nil, fmt.Errorf("script %q not found", name)
	}
	return s, nil
}

// UpdateScript replaces the script's contents.
func (h *Host) UpdateScript(name, contents string) error {
	s, exists := h.scripts[name]
	if !exists {
		return fmt.Errorf("script %q not found", name)
	}
	if contents == "" {
		return fmt.Errorf("contents are required for update")
	}
	s.Contents = contents
	h.Log("log", fmt.Sprintf("Updated script %q", name))
	return nil
}

// DeleteScript removes the script registered under name.
func (h *Host) DeleteScript(name string) error {
	if _, exists := h.scripts[name]; !exists {
		return fmt.Errorf("script %q not found", name)
	}
	delete(h.scripts, name)
	h.Log("log", fmt.Sprintf("Deleted script %q", name))
	return nil
}

func scriptSkeleton(name, scriptType, namespace string) string {
	body := fmt.Sprintf("using UnityEngine;\n\npublic class %s : %s\n{\n    void Start()\n    {\n    }\n\n    void Update()\n    {\n    }\n}\n", name, scriptType)
	if namespace == "" {
		return body
	}
	return fmt.Sprintf("using UnityEngine;\n\nnamespace %s\n{\n    public class %s : %s\n    {\n        void Start()\n        {\n        }\n\n        void Update()\n        {\n        }\n    }\n}\n", namespace, name, scriptType)
}
