package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListingCacheRoundTrip(t *testing.T) {
	cache, err := OpenListingCacheAt(t.TempDir())
	require.NoError(t, err)

	key := cacheKey([]byte("int main() { return 0; }"))

	var payload ListingPayload

	hit, err := cache.Get(key, &payload)
	require.NoError(t, err)
	require.False(t, hit)

	want := ListingPayload{
		Schema:  listingCacheSchemaVersion,
		Path:    "prog.mc",
		Listing: "CALL main -> t_exit\nHALT\n",
	}
	require.NoError(t, cache.Put(key, &want))

	hit, err = cache.Get(key, &payload)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, want, payload)
}

func TestListingCacheSchemaMismatch(t *testing.T) {
	cache, err := OpenListingCacheAt(t.TempDir())
	require.NoError(t, err)

	key := cacheKey([]byte("source"))

	stale := ListingPayload{
		Schema:  listingCacheSchemaVersion + 1,
		Listing: "stale",
	}
	require.NoError(t, cache.Put(key, &stale))

	var payload ListingPayload

	hit, err := cache.Get(key, &payload)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestListingCacheDropAll(t *testing.T) {
	cache, err := OpenListingCacheAt(t.TempDir())
	require.NoError(t, err)

	key := cacheKey([]byte("source"))
	require.NoError(t, cache.Put(key, &ListingPayload{Schema: listingCacheSchemaVersion}))
	require.NoError(t, cache.DropAll())

	var payload ListingPayload

	hit, err := cache.Get(key, &payload)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestListingCacheNil(t *testing.T) {
	var cache *ListingCache

	key := cacheKey([]byte("source"))
	require.NoError(t, cache.Put(key, &ListingPayload{}))

	hit, err := cache.Get(key, &ListingPayload{})
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, cache.DropAll())
}

func TestCacheKeyIsContentAddressed(t *testing.T) {
	a := cacheKey([]byte("int main() { return 1; }"))
	b := cacheKey([]byte("int main() { return 2; }"))

	require.NotEqual(t, a, b)
	require.Equal(t, a, cacheKey([]byte("int main() { return 1; }")))
}
