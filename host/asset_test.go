package host

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets_CRUD(t *testing.T) {
	h := New()

	a, err := h.CreateAsset("Assets/Materials/Red.mat", "Material", map[string]any{"color": "red"})
	require.NoError(t, err)
	assert.Equal(t, "Material", a.Type)

	_, err = h.CreateAsset("Assets/Materials/Red.mat", "Material", nil)
	assert.Error(t, err, "duplicate path must fail")
	_, err = h.CreateAsset("Assets/Materials/Blue.mat", "", nil)
	assert.Error(t, err, "type is required")

	info, err := h.AssetInfo("Assets/Materials/Red.mat")
	require.NoError(t, err)
	assert.Equal(t, "red", info.Properties["color"])

	require.NoError(t, h.ModifyAsset("Assets/Materials/Red.mat", map[string]any{"shader": "Standard"}))
	info, _ = h.AssetInfo("Assets/Materials/Red.mat")
	assert.Equal(t, "Standard", info.Properties["shader"])

	require.NoError(t, h.DeleteAsset("Assets/Materials/Red.mat"))
	_, err = h.AssetInfo("Assets/Materials/Red.mat")
	assert.Error(t, err)
	assert.Error(t, h.DeleteAsset("Assets/Materials/Red.mat"))
}

func TestAssets_DuplicateAndMove(t *testing.T) {
	h := New()

	_, err := h.CreateAsset("Assets/Materials/Red.mat", "Material", map[string]any{"color": "red"})
	require.NoError(t, err)

	dup, err := h.DuplicateAsset("Assets/Materials/Red.mat", "")
	require.NoError(t, err)
	assert.Equal(t, "Assets/Materials/Red Copy.mat", dup.Path)

	// Duplicated properties are independent of the source.
	require.NoError(t, h.ModifyAsset(dup.Path, map[string]any{"color": "crimson"}))
	src, _ := h.AssetInfo("Assets/Materials/Red.mat")
	assert.Equal(t, "red", src.Properties["color"])

	require.NoError(t, h.MoveAsset(dup.Path, "Assets/Materials/Crimson.mat"))
	_, err = h.AssetInfo(dup.Path)
	assert.Error(t, err)
	moved, err := h.AssetInfo("Assets/Materials/Crimson.mat")
	require.NoError(t, err)
	assert.Equal(t, "Assets/Materials/Crimson.mat", moved.Path)

	assert.Error(t, h.MoveAsset("Assets/Materials/Crimson.mat", "Assets/Materials/Red.mat"),
		"moving onto an existing asset must fail")
}

func TestSearchAssets_FilterAndPagination(t *testing.T) {
	h := New()

	for i := 0; i < 5; i++ {
		_, err := h.CreateAsset(fmt.Sprintf("Assets/Materials/M%d.mat", i), "Material", nil)
		require.NoError(t, err)
	}
	_, err := h.CreateAsset("Assets/Prefabs/Enemy.prefab", "Prefab", nil)
	require.NoError(t, err)

	byPattern, err := h.SearchAssets(AssetSearch{Pattern: "*.mat"})
	require.NoError(t, err)
	assert.Equal(t, 5, byPattern.TotalCount)

	byType, err := h.SearchAssets(AssetSearch{FilterType: "Prefab"})
	require.NoError(t, err)
	require.Len(t, byType.Assets, 1)
	assert.Equal(t, "Assets/Prefabs/Enemy.prefab", byType.Assets[0].Path)

	page2, err := h.SearchAssets(AssetSearch{Pattern: "*.mat", PageNumber: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page2.TotalCount)
	require.Len(t, page2.Assets, 2)
	assert.Equal(t, "Assets/Materials/M2.mat", page2.Assets[0].Path)

	beyond, err := h.SearchAssets(AssetSearch{Pattern: "*.mat", PageNumber: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond.Assets)

	_, err = h.SearchAssets(AssetSearch{Pattern: "[bad"})
	assert.Error(t, err)
}

func TestScripts_CRUD(t *testing.T) {
	h := New()

	s, err := h.CreateScript("PlayerController", "Assets/Scripts", "", "MonoBehaviour", "Game")
	require.NoError(t, err)
	assert.Equal(t, "Assets/Scripts/PlayerController.cs", s.Path)
	assert.Contains(t, s.Contents, "namespace Game")
	assert.Contains(t, s.Contents, "public class PlayerController : MonoBehaviour")

	_, err = h.CreateScript("PlayerController", "", "", "", "")
	assert.Error(t, err, "duplicate name must fail")

	read, err := h.ReadScript("PlayerController")
	require.NoError(t, err)
	assert.Same(t, s, read)

	require.NoError(t, h.UpdateScript("PlayerController", "// rewritten"))
	read, _ = h.ReadScript("PlayerController")
	assert.Equal(t, "// rewritten", read.Contents)
	assert.Error(t, h.UpdateScript("PlayerController", ""), "empty update rejected")

	require.NoError(t, h.DeleteScript("PlayerController"))
	_, err = h.ReadScript("PlayerController")
	assert.Error(t, err)
}

func TestScriptSkeleton_NoNamespace(t *testing.T) {
	h := New()
	s, err := h.CreateScript("Spinner", "", "", "", "")
	require.NoError(t, err)
	assert.Contains(t, s.Contents, "public class Spinner : MonoBehaviour")
	assert.NotContains(t, s.Contents, "namespace")
}
