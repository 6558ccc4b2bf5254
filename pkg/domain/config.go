package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Typed views over the schemaless Node.Data bag. Field names follow the
// wire keys the orchestrator's applets read.

// StartConfig is the config bag of a start node.
type StartConfig struct {
	Input string `mapstructure:"input"`
}

// WriterConfig is the config bag of a writer node.
type WriterConfig struct {
	Prompt string `mapstructure:"prompt"`
	Model  string `mapstructure:"model"`
}

// ArtistConfig is the config bag of an artist node.
type ArtistConfig struct {
	Prompt    string `mapstructure:"prompt"`
	Generator string `mapstructure:"generator"`
	Style     string `mapstructure:"style"`
}

// MemoryConfig is the config bag of a memory node.
type MemoryConfig struct {
	Operation string `mapstructure:"operation"` // "store" or "retrieve"
	Key       string `mapstructure:"key"`
}

// DecodeConfig decodes a node's Data bag into a typed config struct.
// Unknown keys in the bag are ignored; the bag is never mutated.
func DecodeConfig(n Node, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(n.Data); err != nil {
		return fmt.Errorf("failed to decode %s config for node %s: %w", n.Type, n.ID, err)
	}
	return nil
}
