// Package bolt implements the blocklist's durable Store on top of an
// embedded bbolt database. Rules are indexed two ways: exact names in one
// bucket, and suffix rule anchors stored reversed in another. A lookup
// checks the query name and then each ancestor domain with one key lookup
// apiece.
package bolt

import (
	"encoding/binary"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/lucaspiller/dnsd/internal/dns/blocklist"
	"github.com/lucaspiller/dnsd/internal/dns/common/names"
	"github.com/lucaspiller/dnsd/internal/dns/domain"
)

var (
	bucketExact  = []byte("exact")
	bucketSuffix = []byte("suffix")
	bucketMeta   = []byte("meta")

	metaVersion = []byte("version")
	metaUpdated = []byte("updated")
)

type boltStore struct {
	db *bbolt.DB
}

// New opens (creating if needed) a Bolt database at path and ensures the
// blocklist buckets exist.
func New(path string) (blocklist.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketExact, bucketSuffix, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// GetFirstMatch checks the exact bucket, then walks the suffix bucket from
// the most specific ancestor domain to the least, returning the first hit.
func (s *boltStore) GetFirstMatch(name string) (domain.BlockRule, bool, error) {
	cn := names.Canonical(name)

	var found domain.BlockRule
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		exact := tx.Bucket(bucketExact)
		if v := exact.Get([]byte(cn)); v != nil {
			found = domain.BlockRule{Name: cn, Kind: domain.BlockRuleExact, Source: string(v)}
			ok = true
			return nil
		}

		suffix := tx.Bucket(bucketSuffix)
		a := cn
		for {
			rev := reverseString(a)
			if v := suffix.Get([]byte(rev)); v != nil {
				found = domain.BlockRule{Name: a, Kind: domain.BlockRuleSuffix, Source: string(v)}
				ok = true
				return nil
			}
			idx := strings.IndexByte(a, '.')
			if idx < 0 {
				return nil
			}
			a = a[idx+1:]
			if a == "" || a == "." {
				return nil
			}
		}
	})
	return found, ok, err
}

// RebuildAll atomically replaces the store contents with rules, tagging the
// snapshot with version and updatedUnix.
func (s *boltStore) RebuildAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketExact, bucketSuffix} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		exact := tx.Bucket(bucketExact)
		suffix := tx.Bucket(bucketSuffix)
		for _, r := range rules {
			switch r.Kind {
			case domain.BlockRuleExact:
				if err := exact.Put([]byte(r.Name), []byte(r.Source)); err != nil {
					return err
				}
			case domain.BlockRuleSuffix:
				if err := suffix.Put([]byte(reverseString(r.Name)), []byte(r.Source)); err != nil {
					return err
				}
			}
		}

		meta := tx.Bucket(bucketMeta)
		vbuf := make([]byte, 8)
		ubuf := make([]byte, 8)
		binary.BigEndian.PutUint64(vbuf, version)
		binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
		if err := meta.Put(metaVersion, vbuf); err != nil {
			return err
		}
		return meta.Put(metaUpdated, ubuf)
	})
}

func (s *boltStore) Stats() blocklist.StoreStats {
	st := blocklist.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketExact); b != nil {
			st.ExactCount = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketSuffix); b != nil {
			st.SuffixCount = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(metaVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(metaUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

func reverseString(s string) string {
	rs := []rune(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}
