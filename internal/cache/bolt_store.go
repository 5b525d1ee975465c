package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("entries")

const boltHeaderLen = 8

// boltStore 将全部条目保存在单个 bbolt 数据库中。
// 值布局：8 字节大端过期时间（unix 纳秒，0 表示永不过期）+ 原始字节。
type boltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBoltStore 打开（或创建）<dir>/cache.db。
func NewBoltStore(dir string) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage path required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}
	db, err := bolt.Open(filepath.Join(dir, "cache.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}
	return &boltStore{db: db, now: time.Now}, nil
}

func (s *boltStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		out     []byte
		isStale bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get([]byte(key))
		if len(raw) < boltHeaderLen {
			return ErrNotFound
		}
		if expired(s.now(), decodeExpiry(raw[:boltHeaderLen])) {
			isStale = true
			return ErrNotFound
		}
		// bbolt 返回的切片只在事务内有效。
		out = make([]byte, len(raw)-boltHeaderLen)
		copy(out, raw[boltHeaderLen:])
		return nil
	})
	if isStale {
		_ = s.deleteIfExpired(key)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *boltStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, boltHeaderLen+len(value))
	encodeExpiry(buf[:boltHeaderLen], expiryFrom(s.now(), ttl))
	copy(buf[boltHeaderLen:], value)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), buf)
	})
}

func (s *boltStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}

// deleteIfExpired 在写事务内重新读取过期时间，新写入的值不会被删除。
func (s *boltStore) deleteIfExpired(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		raw := b.Get([]byte(key))
		if len(raw) >= boltHeaderLen && !expired(s.now(), decodeExpiry(raw[:boltHeaderLen])) {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

func encodeExpiry(dst []byte, t time.Time) {
	var nanos uint64
	if !t.IsZero() {
		nanos = uint64(t.UnixNano())
	}
	binary.BigEndian.PutUint64(dst, nanos)
}

func decodeExpiry(src []byte) time.Time {
	nanos := binary.BigEndian.Uint64(src)
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(nanos))
}
