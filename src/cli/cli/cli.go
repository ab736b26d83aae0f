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

// go/src/cli/cli/cli.go
package cli

import (
	"flag"
	"fmt"

	"github.com/mkey-core/go/src/core/config"
)

// Config collects the command-line surface.
type Config struct {
	mode       string
	configFile string
	dataDir    string
	httpAddr   string
	keyID      string

	n int
	w int
	s int
	d int
}

// Execute runs the device CLI: a signing demo, an encoding size report, or
// the HTTP device service.
func Execute() error {
	cfg := &Config{}
	flag.StringVar(&cfg.mode, "mode", "demo", "Mode to run: demo, sizes, serve")
	flag.StringVar(&cfg.configFile, "config", "", "Path to parameter JSON file")
	flag.StringVar(&cfg.dataDir, "datadir", "data", "Directory for LevelDB keystore")
	flag.StringVar(&cfg.httpAddr, "http-addr", "127.0.0.1:8545", "HTTP address for the device service")
	flag.StringVar(&cfg.keyID, "key-id", "device", "Keystore identifier of the keypair")
	flag.IntVar(&cfg.n, "n", 0, "Digest length in bytes (overrides config)")
	flag.IntVar(&cfg.w, "w", 0, "Winternitz base (overrides config)")
	flag.IntVar(&cfg.s, "s", 0, "Shallow tree height (overrides config)")
	flag.IntVar(&cfg.d, "d", 0, "Deep tree height (overrides config)")
	flag.Parse()

	params, err := cfg.loadParams()
	if err != nil {
		return err
	}

	switch cfg.mode {
	case "demo":
		return runDemo(params)
	case "sizes":
		return runSizes(params)
	case "serve":
		return runServe(params, cfg.dataDir, cfg.httpAddr, cfg.keyID)
	}
	return fmt.Errorf("unknown mode %q (want demo, sizes or serve)", cfg.mode)
}

// loadParams merges the config file with flag overrides.
func (cfg *Config) loadParams() (config.Params, error) {
	p := config.Default()
	if cfg.configFile != "" {
		loaded, err := config.LoadFile(cfg.configFile)
		if err != nil {
			return config.Params{}, err
		}
		p = loaded
	}
	if cfg.n != 0 {
		p.N = cfg.n
	}
	if cfg.w != 0 {
		p.W = cfg.w
	}
	if cfg.s != 0 {
		p.S = cfg.s
	}
	if cfg.d != 0 {
		p.D = cfg.d
	}
	if err := p.Validate(); err != nil {
		return config.Params{}, err
	}
	return p, nil
}
