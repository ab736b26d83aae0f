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

// go/src/http/server.go
package http

import (
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mkey-core/go/src/core/fingerprint"
	"github.com/mkey-core/go/src/core/sdmss"
	"github.com/mkey-core/go/src/crypto/wots"
	"github.com/mkey-core/go/src/keystore"
)

// NewServer wires the device service around one composer. store may be nil
// for ephemeral keys; with a store, the advanced state is written durably
// before any signature leaves the handler.
func NewServer(address string, p wots.Params, signer *sdmss.Signer, store *keystore.Store, keyID string, logger *zap.Logger) *Server {
	s := &Server{
		address:  address,
		router:   gin.Default(),
		log:      logger,
		params:   p,
		signer:   signer,
		verifier: sdmss.NewVerifier(p, signer.PublicKey()),
		store:    store,
		keyID:    keyID,
		hub:      NewHub(logger),
	}
	s.metrics, s.registry = NewMetrics()
	s.metrics.Remaining.Set(float64(signer.Remaining()))
	s.setupRoutes()
	return s
}

// setupRoutes defines HTTP endpoints.
func (s *Server) setupRoutes() {
	s.router.POST("/sign", s.timed("sign", s.handleSign))
	s.router.POST("/verify", s.timed("verify", s.handleVerify))
	s.router.POST("/update", s.timed("update", s.handleUpdate))
	s.router.GET("/capacity", s.handleCapacity)
	s.router.GET("/publickey", s.handlePublicKey)
	s.router.GET("/events", s.hub.HandleSubscribe)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// timed observes per-endpoint latency.
func (s *Server) timed(name string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		h(c)
		s.metrics.RequestLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

// handleSign issues the next signature. The advanced composer state is
// persisted before the signature is released, so a crash after the write
// loses at most this one signature and never re-issues its leaf.
func (s *Server) handleSign(c *gin.Context) {
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := hex.DecodeString(req.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is not valid hex"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sig, err := s.signer.Sign(msg)
	if errors.Is(err, sdmss.ErrCapacityExhausted) {
		s.metrics.SignCount.WithLabelValues("exhausted").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "signing capacity exhausted, rotate the keypair"})
		return
	}
	if err != nil {
		s.metrics.SignCount.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s.store != nil {
		if err := s.store.SaveComposer(s.keyID, s.signer.State()); err != nil {
			// The leaf is spent in memory but its signature is withheld;
			// wasting it is the safe direction.
			s.log.Error("state persistence failed, withholding signature", zap.Error(err))
			s.metrics.SignCount.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "state persistence failed"})
			return
		}
	}

	s.metrics.SignCount.WithLabelValues("ok").Inc()
	s.metrics.Remaining.Set(float64(s.signer.Remaining()))
	s.hub.Broadcast(CapacityEvent{
		Remaining:   s.signer.Remaining(),
		Fingerprint: fingerprint.Render(s.signer.PublicKey()),
	})
	c.JSON(http.StatusOK, SignResponse{
		Signature:  hex.EncodeToString(sig.Encode()),
		DeepIndex:  sig.DeepIndex,
		Activation: sig.Activation != nil,
		Remaining:  s.signer.Remaining(),
	})
}

// handleVerify checks a signature against the device's commitment.
func (s *Server) handleVerify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := hex.DecodeString(req.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is not valid hex"})
		return
	}
	raw, err := hex.DecodeString(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature is not valid hex"})
		return
	}
	sig, err := sdmss.DecodeSignature(s.params, raw)
	if err != nil {
		s.metrics.VerifyCount.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	ok, err := s.verifier.Verify(msg, sig)
	s.mu.Unlock()
	if errors.Is(err, sdmss.ErrUnknownShallowRoot) {
		s.metrics.VerifyCount.WithLabelValues("unknown_root").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "no cached shallow root, submit the session's activation-bearing signature first",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ok {
		s.metrics.VerifyCount.WithLabelValues("valid").Inc()
	} else {
		s.metrics.VerifyCount.WithLabelValues("invalid").Inc()
	}
	c.JSON(http.StatusOK, VerifyResponse{Valid: ok})
}

// handleUpdate refreshes the commitment to the remaining capacity. The
// verifier is rebound to the new commitment: earlier signatures verify only
// against the one they were issued under.
func (s *Server) handleUpdate(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pub, err := s.signer.Update()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s.store != nil {
		if err := s.store.SaveComposer(s.keyID, s.signer.State()); err != nil {
			s.log.Error("state persistence failed after update", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "state persistence failed"})
			return
		}
		if err := s.store.SavePublicKey(s.keyID, pub); err != nil {
			s.log.Error("commitment persistence failed", zap.Error(err))
		}
	}
	s.verifier = sdmss.NewVerifier(s.params, pub)
	s.metrics.Remaining.Set(float64(s.signer.Remaining()))
	s.hub.Broadcast(CapacityEvent{
		Remaining:   s.signer.Remaining(),
		Fingerprint: fingerprint.Render(pub),
	})
	c.JSON(http.StatusOK, PublicKeyResponse{
		Root:        hex.EncodeToString(pub.Root),
		Size:        pub.Size,
		Fingerprint: fingerprint.Render(pub),
	})
}

// handleCapacity reports the remaining signing capacity.
func (s *Server) handleCapacity(c *gin.Context) {
	s.mu.Lock()
	remaining := s.signer.Remaining()
	s.mu.Unlock()
	c.JSON(http.StatusOK, CapacityResponse{Remaining: remaining})
}

// handlePublicKey returns the current long-term commitment.
func (s *Server) handlePublicKey(c *gin.Context) {
	s.mu.Lock()
	pub := s.signer.PublicKey()
	s.mu.Unlock()
	c.JSON(http.StatusOK, PublicKeyResponse{
		Root:        hex.EncodeToString(pub.Root),
		Size:        pub.Size,
		Fingerprint: fingerprint.Render(pub),
	})
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("device service listening", zap.String("address", s.address))
	return s.router.Run(s.address)
}
