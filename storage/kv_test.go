package storage

import (
	"os"
	"sync"
	"testing"

	"klar/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKV runs the behaviour every driver must share
func testKV(t *testing.T, kv KV) {
	t.Helper()

	_, ok, err := kv.Get("klar_test_missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put("klar_test_a", []byte(`{"a":1}`)))
	require.NoError(t, kv.Put("klar_test_b@klar.com", []byte("b")))
	require.NoError(t, kv.Put("other_c", []byte("c")))

	v, ok, err := kv.Get("klar_test_a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(v))

	require.NoError(t, kv.Put("klar_test_a", []byte("overwritten")))
	v, _, err = kv.Get("klar_test_a")
	require.NoError(t, err)
	assert.Equal(t, "overwritten", string(v))

	keys, err := kv.Keys("klar_test_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"klar_test_a", "klar_test_b@klar.com"}, keys)

	require.NoError(t, kv.Delete("klar_test_a"))
	require.NoError(t, kv.Delete("klar_test_a"))
	_, ok, err = kv.Get("klar_test_a")
	require.NoError(t, err)
	assert.False(t, ok)

	// pattern characters in a prefix match only themselves
	require.NoError(t, kv.Put("klar_test_x*y", []byte("1")))
	require.NoError(t, kv.Put("klar_test_xzy", []byte("2")))
	require.NoError(t, kv.Put("klar_test_[a]", []byte("3")))
	keys, err = kv.Keys("klar_test_x*")
	require.NoError(t, err)
	assert.Equal(t, []string{"klar_test_x*y"}, keys)
	keys, err = kv.Keys("klar_test_[")
	require.NoError(t, err)
	assert.Equal(t, []string{"klar_test_[a]"}, keys)

	for _, k := range []string{"klar_test_b@klar.com", "other_c", "klar_test_x*y", "klar_test_xzy", "klar_test_[a]"} {
		require.NoError(t, kv.Delete(k))
	}
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"klar_settings_test@klar.com", "klar_settings_test@klar.com"},
		{"a*b", `a\*b`},
		{"a?b", `a\?b`},
		{"[x]", `\[x\]`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeGlob(tt.in), tt.in)
	}
}

func TestBoltKV(t *testing.T) {
	kv, err := NewBoltKV(t.TempDir())
	require.NoError(t, err)
	defer kv.Close()

	testKV(t, kv)
}

func TestBoltKVPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewBoltKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Put("k", []byte("v")))
	require.NoError(t, kv.Close())

	kv, err = NewBoltKV(dir)
	require.NoError(t, err)
	defer kv.Close()

	v, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	defer kv.Close()

	testKV(t, kv)
}

func TestFileKVReadsFromDisk(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Put("klar_settings_test@klar.com", []byte("v")))

	// A second instance has an empty cache and must hit the file
	fresh, err := NewFileKV(dir)
	require.NoError(t, err)
	v, ok, err := fresh.Get("klar_settings_test@klar.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))
}

func TestFileKVColdReadRacingPut(t *testing.T) {
	dir := t.TempDir()
	seed, err := NewFileKV(dir)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		require.NoError(t, seed.Put("k", []byte("old")))

		// a cold cache, then a reader and a writer at once
		kv, err := NewFileKV(dir)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			kv.Get("k")
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, kv.Put("k", []byte("new")))
		}()
		wg.Wait()

		v, ok, err := kv.Get("k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "new", string(v), "round %d", i)
	}
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("KLAR_TEST_REDIS")
	if addr == "" {
		t.Skip("KLAR_TEST_REDIS not set")
	}

	kv, err := NewRedisKV(config.RedisConfig{Addr: addr, DB: 15})
	require.NoError(t, err)
	defer kv.Close()

	testKV(t, kv)
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "mongo"

	_, err := Open(cfg)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpenFileDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = DriverFile
	cfg.Storage.DataDir = t.TempDir()

	kv, err := Open(cfg)
	require.NoError(t, err)
	defer kv.Close()

	_, ok := kv.(*FileKV)
	assert.True(t, ok)
}
