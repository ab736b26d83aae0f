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

// go/src/main.go
package main

import (
	"flag"

	"github.com/mkey-core/go/src/core/config"
	"github.com/mkey-core/go/src/core/fingerprint"
	"github.com/mkey-core/go/src/core/sdmss"
	"github.com/mkey-core/go/src/http"
	logger "github.com/mkey-core/go/src/log"
)

// Serves an ephemeral keypair with the default parameters; the cli binary
// is the full-featured entry point.
func main() {
	httpAddr := flag.String("httpAddr", "127.0.0.1:8545", "HTTP address for the device service")
	flag.Parse()

	p := config.Default()
	wp, err := p.Engine()
	if err != nil {
		logger.Fatalf("configuration: %v", err)
	}
	signer, err := sdmss.GenerateSigner(wp, p.S, p.D)
	if err != nil {
		logger.Fatalf("keygen: %v", err)
	}
	logger.Infof("ephemeral keypair: commitment %s, capacity %d",
		fingerprint.Render(signer.PublicKey()), p.Capacity())

	srv := http.NewServer(*httpAddr, wp, signer, nil, "ephemeral", logger.Zap())
	if err := srv.Start(); err != nil {
		logger.Fatalf("device service: %v", err)
	}
}
