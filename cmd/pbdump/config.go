// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/pbcore/decoder"
)

// config mirrors the init-time configuration knobs spec §6 calls out:
// "maximum submessage nesting depth (default 64)... whether unaligned
// reads are permitted." pbdump loads these from a YAML file rather than
// a pile of flags, so a decode invocation's knobs can be checked into a
// repo alongside the bytes it decodes.
type config struct {
	MaxDepth int `yaml:"max_depth"`

	// UnalignedReads is accepted only for config-file compatibility with
	// the spec's knob surface; the Go decoder has nothing to switch on.
	// protowire.ConsumeFixed32/64 always assemble fixed-width values
	// byte-wise, which is both portable and, on every platform the Go
	// toolchain targets, as fast as an unaligned load — the C-era choice
	// this knob names doesn't exist here.
	UnalignedReads bool `yaml:"unaligned_reads"`
}

func defaultConfig() config {
	return config{MaxDepth: decoder.DefaultMaxDepth, UnalignedReads: true}
}

// loadConfig reads path if non-empty, overlaying its fields onto the
// defaults; an empty path (no --config given) just returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
