package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and validates a policy YAML file, mirroring the strict
// decode-then-Validate discipline in config.LoadFromFile.
func LoadFile(path string) (*CapitalPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return LoadBytes(raw)
}

// LoadBytes validates and loads a policy from raw YAML source bytes,
// rejecting any unknown field anywhere in the tree.
func LoadBytes(raw []byte) (*CapitalPolicy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	p := &CapitalPolicy{}
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Hash = Hash(raw)
	return p, nil
}

// Hash returns the SHA-256 hex digest of the canonical policy source bytes.
func Hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
