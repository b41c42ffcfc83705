package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/validation"
)

// =============================================================================
// SPEC PERSISTENCE
// =============================================================================

// SaveSpec writes the spec as indented JSON, creating parent directories.
func SaveSpec(path string, spec *types.TransformSpec) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode spec: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create spec directory: %w", err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write spec file: %w", err)
	}
	return nil
}

// LoadSpec reads a spec written by SaveSpec and validates it.
//
// RETURNS:
//   - The decoded spec.
//   - An InvalidSpec error if the JSON is malformed or violates a spec rule.
//   - A DuplicateColumnSpec error if two columns map to the same period.
func LoadSpec(path string, opts Options) (*types.TransformSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}

	var spec types.TransformSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, types.NewError(types.KindInvalidSpec, "spec file is not valid JSON").Wrap(err)
	}

	if err := validation.ValidateSpec(&spec, validation.Options{MinYear: opts.MinYear, MaxYear: opts.MaxYear}); err != nil {
		return nil, err
	}
	return &spec, nil
}
