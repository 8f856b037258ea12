package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore(t *testing.T) {
	t.Run("custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		require.NoError(t, err)
		assert.Equal(t, configPath, store.Path())
		assert.False(t, store.IsModified())
	})

	t.Run("default path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		store, err := NewFileStore("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".pagekit", "config.json"), store.Path())
	})

	t.Run("loads existing file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		raw := `{"version":"1","sections":{"ui":{"toast_delay":"2s"}}}`
		require.NoError(t, os.WriteFile(configPath, []byte(raw), 0600))

		store, err := NewFileStore(configPath)
		require.NoError(t, err)

		section, err := store.GetSection("ui")
		require.NoError(t, err)
		assert.Equal(t, "2s", section["toast_delay"])
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte("{invalid"), 0600))

		_, err := NewFileStore(configPath)
		assert.Error(t, err)
	})
}

func TestFileStore_Save(t *testing.T) {
	t.Run("writes versioned layout", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "config.json")
		store, err := NewFileStore(configPath)
		require.NoError(t, err)

		require.NoError(t, store.SetSection("theme", map[string]interface{}{"preference": "dark"}))
		assert.True(t, store.IsModified())

		require.NoError(t, store.Save())
		assert.False(t, store.IsModified())

		raw, err := os.ReadFile(configPath)
		require.NoError(t, err)

		var layout map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &layout))
		assert.Equal(t, "1", layout["version"])

		sections := layout["sections"].(map[string]interface{})
		assert.Equal(t, "dark", sections["theme"].(map[string]interface{})["preference"])

		_, err = os.Stat(configPath + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("round trips through a new store", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		store, _ := NewFileStore(configPath)
		require.NoError(t, store.SetSection("a", map[string]interface{}{"k": "v"}))
		require.NoError(t, store.Save())

		reloaded, err := NewFileStore(configPath)
		require.NoError(t, err)
		section, _ := reloaded.GetSection("a")
		assert.Equal(t, "v", section["k"])
	})
}

func TestMemoryStore_Copies(t *testing.T) {
	store := NewMemoryStore()

	input := map[string]interface{}{"key": "value"}
	require.NoError(t, store.SetSection("test", input))
	input["key"] = "modified"

	section, _ := store.GetSection("test")
	assert.Equal(t, "value", section["key"])

	section["key"] = "modified"
	again, _ := store.GetSection("test")
	assert.Equal(t, "value", again["key"])

	all, _ := store.GetAll()
	all["test"]["key"] = "modified"
	again, _ = store.GetSection("test")
	assert.Equal(t, "value", again["key"])

	empty, err := store.GetSection("missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore_SetAll(t *testing.T) {
	store := NewMemoryStore()
	data := map[string]map[string]interface{}{"a": {"k": 1}, "b": {"k": 2}}

	require.NoError(t, store.SetAll(data))
	data["a"]["k"] = 99

	all, _ := store.GetAll()
	assert.Len(t, all, 2)
	assert.Equal(t, 1, all["a"]["k"])
	assert.True(t, store.IsModified())

	require.NoError(t, store.Save())
	assert.False(t, store.IsModified())
}
