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

// go/src/http/metrics.go
package http

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewMetrics initializes Prometheus metrics for the device service. Each
// server carries its own registry so several devices can run in one
// process.
func NewMetrics() (*Metrics, *prometheus.Registry) {
	m := &Metrics{
		SignCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "device_sign_count",
				Help: "Number of signing requests by outcome",
			},
			[]string{"outcome"},
		),
		VerifyCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "device_verify_count",
				Help: "Number of verification requests by outcome",
			},
			[]string{"outcome"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "device_request_latency_seconds",
				Help:    "Latency of device requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		Remaining: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "device_remaining_capacity",
				Help: "Signatures the device can still issue",
			},
		),
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(m.SignCount, m.VerifyCount, m.RequestLatency, m.Remaining)
	return m, registry
}
