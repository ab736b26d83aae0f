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

// go/src/core/config/load.go
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mkey-core/go/src/crypto/hashfn"
	"github.com/mkey-core/go/src/crypto/wots"
)

// LoadFile reads and validates a parameter set from a JSON file. Fields
// absent from the file keep the Default() values.
func LoadFile(path string) (Params, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Engine validates the configuration and instantiates the oracle and the
// one-time signature parameters it describes.
func (p Params) Engine() (wots.Params, error) {
	if err := p.Validate(); err != nil {
		return wots.Params{}, err
	}
	o, err := hashfn.New(p.HashName(), p.N)
	if err != nil {
		return wots.Params{}, err
	}
	return wots.NewParams(o, p.W)
}
