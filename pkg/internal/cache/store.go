package cache

import (
	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/store"
	ristrettoStore "github.com/eko/gocache/store/ristretto/v4"
)

var (
	S      store.StoreInterface
	client *ristretto.Cache
)

func NewStore() error {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,
		MaxCost:     1 << 27,
		BufferItems: 64,
	})
	if err != nil {
		return err
	}

	client = ristrettoCache
	S = ristrettoStore.NewRistretto(ristrettoCache)

	return nil
}

// Sync blocks until buffered writes are applied, ristretto admits sets asynchronously.
func Sync() {
	if client != nil {
		client.Wait()
	}
}
