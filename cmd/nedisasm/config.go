package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the shape of an optional --config yaml document. Any field
// left unset keeps whatever the flags (or their defaults) already set —
// flags always win when both are present, matching the teacher's own
// flags-over-everything precedence in cmd/z80opt.
type fileConfig struct {
	AsmSyntax           string `yaml:"asm_syntax"`
	DisassembleAll      bool   `yaml:"disassemble_all"`
	Demangle            bool   `yaml:"demangle"`
	DisassembleSegments []int  `yaml:"disassemble_segments"`
	NoColor             bool   `yaml:"no_color"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &fc, nil
}
