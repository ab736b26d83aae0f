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

// go/src/http/types.go
package http

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mkey-core/go/src/core/sdmss"
	"github.com/mkey-core/go/src/crypto/wots"
	"github.com/mkey-core/go/src/keystore"
)

// Server exposes one device keypair over HTTP. All signing goes through a
// single mutex: a composer irreversibly advances its leaf index on every
// signature, so exactly one writer may touch it at a time. Verification
// shares the same lock only because the verifier caches session roots.
type Server struct {
	address  string
	router   *gin.Engine
	log      *zap.Logger
	metrics  *Metrics
	registry *prometheus.Registry
	hub      *Hub

	mu       sync.Mutex
	params   wots.Params
	signer   *sdmss.Signer
	verifier *sdmss.Verifier
	store    *keystore.Store
	keyID    string
}

// Metrics holds the Prometheus collectors for the device service.
type Metrics struct {
	SignCount      *prometheus.CounterVec
	VerifyCount    *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
	Remaining      prometheus.Gauge
}

// SignRequest submits a message for signing, hex-encoded.
type SignRequest struct {
	Message string `json:"message" binding:"required"`
}

// SignResponse returns the hex-encoded signature and its session metadata.
type SignResponse struct {
	Signature  string `json:"signature"`
	DeepIndex  uint32 `json:"deep_index"`
	Activation bool   `json:"activation"`
	Remaining  uint64 `json:"remaining"`
}

// VerifyRequest checks a signature over a message, both hex-encoded.
type VerifyRequest struct {
	Message   string `json:"message" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// VerifyResponse reports the verification outcome.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// PublicKeyResponse describes the current long-term commitment.
type PublicKeyResponse struct {
	Root        string `json:"root"`
	Size        uint32 `json:"size"`
	Fingerprint string `json:"fingerprint"`
}

// CapacityResponse reports how many signatures the device can still issue.
type CapacityResponse struct {
	Remaining uint64 `json:"remaining"`
}

// CapacityEvent is pushed to WebSocket subscribers after every state
// change.
type CapacityEvent struct {
	Remaining   uint64 `json:"remaining"`
	Fingerprint string `json:"fingerprint"`
}
