package cas

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/fcdb-io/fcdb/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var bucketPacks = []byte("packs")

// catalog is the bbolt-backed store of Pack metadata — not one of the
// fixed on-disk record formats, so it is free to use a real embedded
// KV store rather than a hand-rolled layout.
type catalog struct {
	db *bolt.DB
}

func openCatalog(dataDir string) (*catalog, error) {
	path := filepath.Join(dataDir, "catalog.db")
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("cas: open catalog: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPacks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cas: init catalog buckets: %w", err)
	}

	return &catalog{db: db}, nil
}

func (c *catalog) Close() error {
	return c.db.Close()
}

func (c *catalog) put(p types.Pack) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPacks)
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put(packKey(p.ID), data)
	})
}

func (c *catalog) list() ([]types.Pack, error) {
	var packs []types.Pack
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPacks)
		return b.ForEach(func(_, v []byte) error {
			var p types.Pack
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			packs = append(packs, p)
			return nil
		})
	})
	return packs, err
}

func packKey(id uint32) []byte {
	return []byte(fmt.Sprintf("%08d", id))
}
