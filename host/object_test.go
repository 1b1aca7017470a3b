package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateObject_Validation(t *testing.T) {
	h := New()

	_, err := h.CreateObject("", CreateObjectOptions{})
	assert.Error(t, err)

	_, err = h.CreateObject("Cube", CreateObjectOptions{Tag: "NoSuchTag"})
	assert.Error(t, err)

	_, err = h.CreateObject("Cube", CreateObjectOptions{Layer: "NoSuchLayer"})
	assert.Error(t, err)

	_, err = h.CreateObject("Cube", CreateObjectOptions{Parent: "NoSuchParent"})
	assert.Error(t, err)
}

func TestCreateObject_Placement(t *testing.T) {
	h := New()

	pos := Vec3{1, 2, 3}
	obj, err := h.CreateObject("Cube", CreateObjectOptions{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, pos, obj.Position)
	assert.Equal(t, Vec3{1, 1, 1}, obj.Scale, "scale defaults to identity")
	assert.True(t, obj.Active)
	assert.Contains(t, obj.Components, "Transform")
}

func TestFindObject_ByNameAndPath(t *testing.T) {
	h := New()

	_, err := h.CreateObject("Player", CreateObjectOptions{Tag: "Player"})
	require.NoError(t, err)
	_, err = h.CreateObject("Weapon", CreateObjectOptions{Parent: "Player"})
	require.NoError(t, err)

	byName, err := h.FindObject("Weapon")
	require.NoError(t, err)
	assert.Equal(t, "Weapon", byName.Name)

	byPath, err := h.FindObject("Player/Weapon")
	require.NoError(t, err)
	assert.Same(t, byName, byPath)

	_, err = h.FindObject("Ghost")
	assert.Error(t, err)
}

func TestFindObjects_SubstringAndInactive(t *testing.T) {
	h := New()

	_, err := h.CreateObject("Enemy A", CreateObjectOptions{})
	require.NoError(t, err)
	_, err = h.CreateObject("Enemy B", CreateObjectOptions{})
	require.NoError(t, err)

	inactive := false
	require.NoError(t, h.ModifyObject("Enemy B", ModifyObjectOptions{SetActive: &inactive}))

	active, err := h.FindObjects("Enemy", true, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := h.FindObjects("Enemy", true, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	exact, err := h.FindObjects("Enemy A", false, true)
	require.NoError(t, err)
	assert.Len(t, exact, 1)
}

func TestModifyObject(t *testing.T) {
	h := New()

	_, err := h.CreateObject("Cube", CreateObjectOptions{})
	require.NoError(t, err)

	newName := "Box"
	tag := "Player"
	require.NoError(t, h.ModifyObject("Cube", ModifyObjectOptions{Name: &newName, Tag: &tag}))

	obj, err := h.FindObject("Box")
	require.NoError(t, err)
	assert.Equal(t, "Player", obj.Tag)

	badTag := "NoSuchTag"
	assert.Error(t, h.ModifyObject("Box", ModifyObjectOptions{Tag: &badTag}))
}

func TestDeleteObject_RemovesSubtree(t *testing.T) {
	h := New()

	_, err := h.CreateObject("Player", CreateObjectOptions{Tag: "Player"})
	require.NoError(t, err)
	_, err = h.CreateObject("Weapon", CreateObjectOptions{Parent: "Player"})
	require.NoError(t, err)

	require.NoError(t, h.DeleteObject("Player"))
	_, err = h.FindObject("Player")
	assert.Error(t, err)
	_, err = h.FindObject("Weapon")
	assert.Error(t, err, "children go with the parent")
}

func TestComponents_AddRemove(t *testing.T) {
	h := New()
	_, err := h.CreateObject("Cube", CreateObjectOptions{})
	require.NoError(t, err)

	require.NoError(t, h.AddComponent("Cube", "Rigidbody"))
	assert.Error(t, h.AddComponent("Cube", "Rigidbody"), "double attach must fail")
	assert.Error(t, h.AddComponent("Cube", "FluxCapacitor"), "unknown component kind")

	names, err := h.ComponentNames("Cube")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Transform", "Rigidbody"}, names)

	require.NoError(t, h.RemoveComponent("Cube", "Rigidbody"))
	assert.Error(t, h.RemoveComponent("Cube", "Rigidbody"), "already removed")
	assert.Error(t, h.RemoveComponent("Cube", "Transform"), "Transform is permanent")
}

func TestSetComponentProperty(t *testing.T) {
	h := New()
	_, err := h.CreateObject("Cube", CreateObjectOptions{})
	require.NoError(t, err)
	require.NoError(t, h.AddComponent("Cube", "Rigidbody"))

	// Happy path: float, bool, vec3.
	require.NoError(t, h.SetComponentProperty("Cube", "Rigidbody", "mass", 10.5))
	require.NoError(t, h.SetComponentProperty("Cube", "Rigidbody", "useGravity", true))
	require.NoError(t, h.SetComponentProperty("Cube", "Transform", "position", []any{1.0, 2.0, 3.0}))

	obj, err := h.FindObject("Cube")
	require.NoError(t, err)
	assert.Equal(t, 10.5, obj.Components["Rigidbody"]["mass"])
	assert.Equal(t, Vec3{1, 2, 3}, obj.Components["Transform"]["position"])

	// Each failure mode is distinct and classified.
	err = h.SetComponentProperty("Cube", "Warp", "speed", 1.0)
	assert.ErrorContains(t, err, "unknown component type")

	err = h.SetComponentProperty("Cube", "Light", "intensity", 1.0)
	assert.ErrorContains(t, err, "not attached")

	err = h.SetComponentProperty("Cube", "Rigidbody", "color", "red")
	assert.ErrorContains(t, err, "no settable property")

	err = h.SetComponentProperty("Cube", "Rigidbody", "mass", "heavy")
	assert.ErrorContains(t, err, "expected number")

	err = h.SetComponentProperty("Ghost", "Rigidbody", "mass", 1.0)
	assert.ErrorContains(t, err, "not found")
}

func TestParseVec3(t *testing.T) {
	v, err := ParseVec3([]any{1.0, 2.0, 3.0})
	require.NoError(t, err)
	assert.Equal(t, Vec3{1, 2, 3}, v)

	_, err = ParseVec3([]any{1.0, 2.0})
	assert.Error(t, err)

	_, err = ParseVec3([]any{1.0, "two", 3.0})
	assert.Error(t, err)

	_, err = ParseVec3("1,2,3")
	assert.Error(t, err)
}
