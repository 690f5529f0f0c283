package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wpblocks/ruleparser/internal/rules"
	"github.com/wpblocks/ruleparser/internal/types"
)

// isYAML reports whether path names a YAML document; anything else is JSON.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func readRules(path string) (types.Group[types.RawRule], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Group[types.RawRule]{}, fmt.Errorf("failed to read rules: %w", err)
	}
	if isYAML(path) {
		return rules.DecodeRulesYAML(data)
	}
	return rules.DecodeRules(data)
}

// readStore loads a store file. An empty path yields an empty store.
func readStore(path string) (types.Store, error) {
	if path == "" {
		return types.Store{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	if isYAML(path) {
		return rules.DecodeStoreYAML(data)
	}
	return rules.DecodeStore(data)
}
