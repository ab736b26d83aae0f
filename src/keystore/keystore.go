// MIT License
//
// Copyright (c) 2025 mkey-core
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package keystore persists signer state in LevelDB. Every record carries a
// keyed HighwayHash tag so a torn or bit-flipped write is detected on load
// rather than silently resurrecting an older leaf index.
//
// The durability contract callers must follow: SaveComposer with the
// advanced state before releasing the corresponding signature. A crash
// between the two then loses at most a signature, never reuses a leaf.
package keystore

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/highwayhash"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"go.uber.org/zap"

	"github.com/mkey-core/go/src/core/mss"
	"github.com/mkey-core/go/src/core/sdmss"
	"github.com/mkey-core/go/src/crypto/wots"
)

var (
	// ErrNotFound is returned when no record exists under the given id.
	ErrNotFound = errors.New("keystore: record not found")

	// ErrIntegrity is returned when a record's HighwayHash tag does not
	// match its content.
	ErrIntegrity = errors.New("keystore: record failed integrity check")
)

const tagSize = 32

// Store is a LevelDB-backed keystore for composer state and commitments.
type Store struct {
	db     *leveldb.DB
	macKey []byte
	log    *zap.Logger
}

// Open creates or opens the keystore under dir. macKey must be 32 bytes and
// must be the same across restarts, otherwise every record fails its
// integrity check.
func Open(dir string, macKey []byte, logger *zap.Logger) (*Store, error) {
	if len(macKey) != tagSize {
		return nil, fmt.Errorf("keystore: mac key is %d bytes, want %d", len(macKey), tagSize)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("keystore: create %s: %w", dir, err)
	}
	db, err := leveldb.OpenFile(filepath.Join(dir, "keys"), &opt.Options{
		// Signer state is small and rewritten on every signature; fsync
		// every write so the durability contract holds across power loss.
		NoSync: false,
	})
	if err != nil {
		return nil, fmt.Errorf("keystore: open leveldb: %w", err)
	}
	logger.Info("keystore opened", zap.String("dir", dir))
	return &Store{db: db, macKey: macKey, log: logger}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) seal(raw []byte) []byte {
	tag := highwayhash.Sum(raw, s.macKey)
	return append(tag[:], raw...)
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	if len(sealed) < tagSize {
		return nil, ErrIntegrity
	}
	raw := sealed[tagSize:]
	tag := highwayhash.Sum(raw, s.macKey)
	if subtle.ConstantTimeCompare(tag[:], sealed[:tagSize]) != 1 {
		return nil, ErrIntegrity
	}
	return raw, nil
}

func (s *Store) put(key string, raw []byte) error {
	return s.db.Put([]byte(key), s.seal(raw), &opt.WriteOptions{Sync: true})
}

func (s *Store) get(key string) ([]byte, error) {
	sealed, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	raw, err := s.open(sealed)
	if err != nil {
		s.log.Error("keystore record corrupt", zap.String("key", key))
		return nil, fmt.Errorf("%w: %s", ErrIntegrity, key)
	}
	return raw, nil
}

// SaveComposer durably writes the composer state under id.
func (s *Store) SaveComposer(id string, st sdmss.State) error {
	if err := s.put("composer/"+id, st.Encode()); err != nil {
		return fmt.Errorf("keystore: save composer %s: %w", id, err)
	}
	return nil
}

// LoadComposer reads and authenticates the composer state stored under id.
func (s *Store) LoadComposer(id string, p wots.Params) (sdmss.State, error) {
	raw, err := s.get("composer/" + id)
	if err != nil {
		return sdmss.State{}, err
	}
	return sdmss.DecodeState(p, raw)
}

// SavePublicKey records the long-term deep commitment under id.
func (s *Store) SavePublicKey(id string, pub mss.PublicKey) error {
	if err := s.put("pubkey/"+id, pub.Encode()); err != nil {
		return fmt.Errorf("keystore: save public key %s: %w", id, err)
	}
	return nil
}

// LoadPublicKey reads the deep commitment stored under id.
func (s *Store) LoadPublicKey(id string, p wots.Params) (mss.PublicKey, error) {
	raw, err := s.get("pubkey/" + id)
	if err != nil {
		return mss.PublicKey{}, err
	}
	return mss.DecodePublicKey(p, raw)
}
