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

// go/src/cli/cli/helper.go
package cli

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkey-core/go/src/core/config"
	"github.com/mkey-core/go/src/core/fingerprint"
	"github.com/mkey-core/go/src/core/sdmss"
	"github.com/mkey-core/go/src/crypto/wots"
	"github.com/mkey-core/go/src/http"
	"github.com/mkey-core/go/src/keystore"
	logger "github.com/mkey-core/go/src/log"
)

// runDemo generates a keypair, walks it through signing until the first
// shallow tree rolls over, and verifies everything it produced.
func runDemo(p config.Params) error {
	wp, err := p.Engine()
	if err != nil {
		return err
	}
	logger.Infof("generating keypair: n=%d w=%d s=%d d=%d capacity=%d",
		p.N, p.W, p.S, p.D, p.Capacity())

	signer, err := sdmss.GenerateSigner(wp, p.S, p.D)
	if err != nil {
		return err
	}
	pub := signer.PublicKey()
	logger.Infof("commitment: %s", fingerprint.Render(pub))

	verifier := sdmss.NewVerifier(wp, pub)
	total := (1 << uint(p.S)) + 1 // one past the first rollover
	for i := 0; i < total; i++ {
		msg := []byte(fmt.Sprintf("demo message %d", i))
		sig, err := signer.Sign(msg)
		if err != nil {
			return err
		}
		ok, err := verifier.Verify(msg, sig)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("demo signature %d failed verification", i)
		}
		logger.Infof("signature %2d: %5d bytes, session %d, activation=%v, remaining=%d",
			i, len(sig.Encode()), sig.DeepIndex, sig.Activation != nil, signer.Remaining())
	}
	logger.Infof("all %d signatures verified", total)
	return nil
}

// runSizes prints byte-accurate encoding sizes across Winternitz bases, the
// numbers used to compare against ECDSA, Falcon and Dilithium2.
func runSizes(p config.Params) error {
	fmt.Printf("%6s %6s %10s %14s %14s\n", "w", "chains", "pk bytes", "first sig", "later sig")
	for _, w := range []int{4, 16, 256} {
		q := p
		q.W = w
		wp, err := q.Engine()
		if err != nil {
			return err
		}
		seed := make([]byte, wp.Oracle.Size())
		if _, err := rand.Read(seed); err != nil {
			return err
		}
		signer, err := sdmss.NewSigner(wp, seed, q.S, q.D)
		if err != nil {
			return err
		}
		first, err := signer.Sign([]byte("size probe"))
		if err != nil {
			return err
		}
		later, err := signer.Sign([]byte("size probe"))
		if err != nil {
			return err
		}
		fmt.Printf("%6d %6d %10d %14d %14d\n",
			w, wp.Chains(), len(signer.PublicKey().Encode()),
			len(first.Encode()), len(later.Encode()))
	}
	return nil
}

// runServe loads or creates the device keypair and serves it over HTTP.
func runServe(p config.Params, dataDir, httpAddr, keyID string) error {
	wp, err := p.Engine()
	if err != nil {
		return err
	}
	zlog := logger.Zap()

	macKey, err := loadOrCreateMacKey(dataDir)
	if err != nil {
		return err
	}
	store, err := keystore.Open(dataDir, macKey, zlog)
	if err != nil {
		return err
	}
	defer store.Close()

	signer, err := loadOrCreateSigner(store, wp, p, keyID)
	if err != nil {
		return err
	}
	logger.Infof("serving keypair %q: commitment %s, %d signatures remaining",
		keyID, fingerprint.Render(signer.PublicKey()), signer.Remaining())

	return http.NewServer(httpAddr, wp, signer, store, keyID, zlog).Start()
}

// loadOrCreateMacKey reads the keystore integrity key, creating it on
// first run. Losing this file makes every stored record unreadable.
func loadOrCreateMacKey(dataDir string) ([]byte, error) {
	path := filepath.Join(dataDir, "integrity.key")
	key, err := os.ReadFile(path)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// loadOrCreateSigner restores the persisted composer, generating and
// persisting a fresh one on first run.
func loadOrCreateSigner(store *keystore.Store, wp wots.Params, p config.Params, keyID string) (*sdmss.Signer, error) {
	st, err := store.LoadComposer(keyID, wp)
	if err == nil {
		return sdmss.RestoreSigner(wp, st)
	}
	if !errors.Is(err, keystore.ErrNotFound) {
		return nil, err
	}

	signer, err := sdmss.GenerateSigner(wp, p.S, p.D)
	if err != nil {
		return nil, err
	}
	if err := store.SaveComposer(keyID, signer.State()); err != nil {
		return nil, err
	}
	if err := store.SavePublicKey(keyID, signer.PublicKey()); err != nil {
		return nil, err
	}
	logger.Infof("generated new keypair %q", keyID)
	return signer, nil
}
