package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

// value returns the stored value under key, failing the test if it is missing.
func value(t *testing.T, store *ConfigStore, key string) any {
	t.Helper()
	v, ok := store.Get(key)
	require.True(t, ok, "missing key %s", key)
	return v
}

func TestNewConfigStore_Success(t *testing.T) {
	store, dir := newTestStore(t)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".wikiprox", "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "deep")

	_, err := NewConfigStore(nested)
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not toml {{{[["), 0600))

	store, err := NewConfigStore(dir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CommentOnlyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("# nothing yet\n"), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	_, ok := store.Get("origin.api_url")
	assert.False(t, ok)
}

func TestConfigStore_KeepsDecodedTypes(t *testing.T) {
	dir := t.TempDir()
	content := `
[sync]
workers = 8
interval = "30m"

[publish]
show_unpublished = true
status_markers = ["draft"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, int64(8), value(t, store, "sync.workers"))
	assert.Equal(t, "30m", value(t, store, "sync.interval"))
	assert.Equal(t, true, value(t, store, "publish.show_unpublished"))
	assert.Equal(t, []any{"draft"}, value(t, store, "publish.status_markers"))

	_, ok := store.Get("sync.missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("origin.api_url", "https://wiki.example.org/api.php"))
	require.NoError(t, store.Set("origin.timeout", "10s"))
	require.NoError(t, store.Set("sync.workers", 4))

	raw, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[origin]")
	assert.Contains(t, string(raw), "[sync]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.org/api.php", value(t, reloaded, "origin.api_url"))
	assert.Equal(t, "10s", value(t, reloaded, "origin.timeout"))
	assert.Equal(t, int64(4), value(t, reloaded, "sync.workers"))
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[catalog]
api_url = "https://catalog.example.org/api/v1"
requests_per_second = 2.5

[publish]
non_article_titles = ["Main Page", "Sandbox"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://catalog.example.org/api/v1", value(t, store, "catalog.api_url"))
	rate, ok := store.Get("catalog.requests_per_second")
	assert.True(t, ok)
	assert.InDelta(t, 2.5, rate, 0.0001)
	assert.Equal(t, []any{"Main Page", "Sandbox"}, value(t, store, "publish.non_article_titles"))
	assert.Equal(t, []string{
		"catalog.api_url",
		"catalog.requests_per_second",
		"publish.non_article_titles",
	}, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("index.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Set_RollsBackOnMarshalError(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("index.name", "wiki"))

	err := store.Set("index.name", make(chan int))
	assert.Error(t, err)
	assert.Equal(t, "wiki", value(t, store, "index.name"))

	err = store.Set("index.host", make(chan int))
	assert.Error(t, err)
	_, ok := store.Get("index.host")
	assert.False(t, ok)
}

func TestConfigStore_Set_WriteError(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("index.name", "wiki"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("index.host", "http://localhost:7700"))
}

func TestConfigStore_Load_InvalidTOMLKeepsData(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("index.name", "wiki"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid ][}{"), 0600))

	assert.Error(t, store.Load())
	assert.Equal(t, "wiki", value(t, store, "index.name"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "sync.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_, _ = store.Get(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"origin.api_url": "u",
		"origin.timeout": "5s",
		"top":            1,
		"top.shadowed":   2,
		"a.b.c":          true,
	})

	assert.Equal(t, map[string]any{
		"origin": map[string]any{"api_url": "u", "timeout": "5s"},
		"top":    1,
		"a":      map[string]any{"b": map[string]any{"c": true}},
	}, nested)
}

func TestFlattenMap(t *testing.T) {
	flat := flattenMap(map[string]any{
		"origin": map[string]any{"api_url": "u"},
		"plain":  "v",
	}, "")

	assert.Equal(t, map[string]any{"origin.api_url": "u", "plain": "v"}, flat)
}
