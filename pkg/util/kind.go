package util

import (
	"encoding/json"
	"fmt"
)

// UnmarshalWithKind unmarshals JSON data into target and validates the "kind" field
// matches the expected kind value. The target parameter should be a pointer to the
// struct being unmarshalled, usually a doppleganger type without its own UnmarshalJSON.
func UnmarshalWithKind(data []byte, target any, expectedKind string) error {
	tmp := TypeMeta{}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	if err := tmp.Validate(expectedKind); err != nil {
		return fmt.Errorf("cannot decode document: %w", err)
	}

	return json.Unmarshal(data, target)
}
