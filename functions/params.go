package functions

import (
	"fmt"

	"github.com/isekream/WindsurfUnityMCP/host"
)

// The handlers below work on freshly decoded JSON, so params values are the
// usual any-typed shapes: string, bool, float64, []any, map[string]any.

func stringParam(params map[string]any, key string) (string, bool, error) {
	v, present := params[key]
	if !present || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("parameter %q must be a string, got %T", key, v)
	}
	return s, true, nil
}

func requireString(params map[string]any, key string) (string, error) {
	s, present, err := stringParam(params, key)
	if err != nil {
		return "", err
	}
	if !present || s == "" {
		return "", fmt.Errorf("parameter %q is required", key)
	}
	return s, nil
}

func boolParam(params map[string]any, key string) (bool, bool, error) {
	v, present := params[key]
	if !present || v == nil {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, fmt.Errorf("parameter %q must be a bool, got %T", key, v)
	}
	return b, true, nil
}

func intParam(params map[string]any, key string) (int, bool, error) {
	v, present := params[key]
	if !present || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), true, nil
	case int:
		return n, true, nil
	}
	return 0, false, fmt.Errorf("parameter %q must be a number, got %T", key, v)
}

func mapParam(params map[string]any, key string) (map[string]any, bool, error) {
	v, present := params[key]
	if !present || v == nil {
		return nil, false, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("parameter %q must be an object, got %T", key, v)
	}
	return m, true, nil
}

func stringSliceParam(params map[string]any, key string) ([]string, bool, error) {
	v, present := params[key]
	if !present || v == nil {
		return nil, false, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false, fmt.Errorf("parameter %q must be an array of strings, got %T", key, v)
	}
	out := make([]string, 0, len(arr))
	for i, elem := range arr {
		s, ok := elem.(string)
		if !ok {
			return nil, false, fmt.Errorf("parameter %q element %d must be a string, got %T", key, i, elem)
		}
		out = append(out, s)
	}
	return out, true, nil
}

func vec3Param(params map[string]any, key string) (*host.Vec3, error) {
	v, present := params[key]
	if !present || v == nil {
		return nil, nil
	}
	vec, err := host.ParseVec3(v)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", key, err)
	}
	return &vec, nil
}

func stringPtrParam(params map[string]any, key string) (*string, error) {
	s, present, err := stringParam(params, key)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return &s, nil
}

func boolPtrParam(params map[string]any, key string) (*bool, error) {
	b, present, err := boolParam(params, key)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return &b, nil
}
