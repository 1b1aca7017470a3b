package host

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// Asset is one project asset addressed by its project-relative path.
type Asset struct {
	Path       string         `json:"path"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Created    time.Time      `json:"created"`
}

// CreateAsset creates an asset at the given path.
func (h *Host) CreateAsset(assetPath, assetType string, properties map[string]any) (*Asset, error) {
	if assetPath == "" {
		return nil, fmt.Errorf("asset path is required")
	}
	if assetType == "" {
		return nil, fmt.Errorf("asset type is required for create")
	}
	if _, exists := h.assets[assetPath]; exists {
		return nil, fmt.Errorf("asset %q already exists", assetPath)
	}

	a := &Asset{
		Path:       assetPath,
		Type:       assetType,
		Properties: properties,
		Created:    h.now(),
	}
	h.assets[assetPath] = a
	h.Log("log", fmt.Sprintf("Created %s asset %q", assetType, assetPath))
	return a, nil
}

// AssetInfo returns the asset at path.
func (h *Host) AssetInfo(assetPath string) (*Asset, error) {
	a, exists := h.assets[assetPath]
	if !exists {
		return nil, fmt.Errorf("asset %q not found", assetPath)
	}
	return a, nil
}

// ModifyAsset merges properties into an existing asset.
func (h *Host) ModifyAsset(assetPath string, properties map[string]any) error {
	a, exists := h.assets[assetPath]
	if !exists {
		return fmt.Errorf("asset %q not found", assetPath)
	}
	if a.Properties == nil {
		a.Properties = make(map[string]any)
	}
	for k, v := range properties {
		a.Properties[k] = v
	}
	return nil
}

// DeleteAsset removes the asset at path.
func (h *Host) DeleteAsset(assetPath string) error {
	if _, exists := h.assets[assetPath]; !exists {
		return fmt.Errorf("asset %q not found", assetPath)
	}
	delete(h.assets, assetPath)
	h.Log("log", fmt.Sprintf("Deleted asset %q", assetPath))
	return nil
}

// DuplicateAsset copies the asset to destination.
func (h *Host) DuplicateAsset(assetPath, destination string) (*Asset, error) {
	src, exists := h.assets[assetPath]
	if !exists {
		return nil, fmt.Errorf("asset %q not found", assetPath)
	}
	if destination == "" {
		ext := path.Ext(assetPath)
		destination = strings.TrimSuffix(assetPath, ext) + " Copy" + ext
	}
	if _, exists := h.assets[destination]; exists {
		return nil, fmt.Errorf("asset %q already exists", destination)
	}

	dup := &Asset{
		Path:       destination,
		Type:       src.Type,
		Properties: cloneProperties(src.Properties),
		Created:    h.now(),
	}
	h.assets[destination] = dup
	return dup, nil
}

// MoveAsset relocates (or renames) an asset.
func (h *Host) MoveAsset(assetPath, destination string) error {
	src, exists := h.assets[assetPath]
	if !exists {
		return fmt.Errorf("asset %q not found", assetPath)
	}
	if destination == "" {
		return fmt.Errorf("destination is required")
	}
	if _, exists := h.assets[destination]; exists {
		return fmt.Errorf("asset %q already exists", destination)
	}
	delete(h.assets, assetPath)
	src.Path = destination
	h.assets[destination] = src
	return nil
}

// AssetSearch narrows SearchAssets results.
type AssetSearch struct {
	Pattern    string // glob matched against the asset file name, e.g. "*.mat"
	FilterType string
	PageNumber int // 1-based; 0 means first page
	PageSize   int // 0 means everything
}

// AssetPage is one page of search results.
type AssetPage struct {
	Assets     []*Asset `json:"assets"`
	TotalCount int      `json:"total_count"`
	PageNumber int      `json:"page_number"`
	PageSize   int      `json:"page_size,omitempty"`
}

// SearchAssets returns assets matching the search, sorted by path.
func (h *Host) SearchAssets(q AssetSearch) (*AssetPage, error) {
	var matched []*Asset
	for _, a := range h.assets {
		if q.FilterType != "" && a.Type != q.FilterType {
			continue
		}
		if q.Pattern != "" {
			ok, err := path.Match(q.Pattern, path.Base(a.Path))
			if err != nil {
				return nil, fmt.Errorf("bad search pattern %q: %w", q.Pattern, err)
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Path < matched[j].Path })

	page := &AssetPage{TotalCount: len(matched), PageNumber: 1, PageSize: q.PageSize}
	if q.PageNumber > 1 {
		page.PageNumber = q.PageNumber
	}
	if q.PageSize > 0 {
		start := (page.PageNumber - 1) * q.PageSize
		if start >= len(matched) {
			matched = nil
		} else {
			end := start + q.PageSize
			if end > len(matched) {
				end = len(matched)
			}
			matched = matched[start:end]
		}
	}
	page.Assets = matched
	return page, nil
}

func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
