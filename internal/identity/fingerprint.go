// Package identity derives a stable fingerprint from a task's input
// document and compares tasks for equivalence (spec.md §4.1).
package identity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Fingerprint serializes taskInput to a canonical JSON form — object keys at
// every depth sorted lexicographically, no insignificant whitespace — and
// returns the lowercase hex SHA-256 digest of the UTF-8 bytes. This value is
// the task's job_descriptor.
func Fingerprint(taskInput map[string]any) (string, error) {
	canonical, err := canonicalize(taskInput)
	if err != nil {
		return "", fmt.Errorf("identity: canonicalizing task input: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize produces the canonical JSON byte representation of v:
// object keys sorted at every depth, compact (no whitespace) separators,
// numeric literals preserved as given by the decoder.
func canonicalize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		// Scalars (string, json.Number/float64, bool, nil) round-trip through
		// encoding/json's own compact encoder, which already emits no
		// insignificant whitespace.
		enc, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(enc)
		return nil
	}
}

// Equivalent reports whether two tasks are equivalent per spec.md §4.1: the
// referenced pipeline names match and their task_input values produce
// identical fingerprints. Status and task_input_id do not participate.
func Equivalent(pipelineNameA string, taskInputA map[string]any, pipelineNameB string, taskInputB map[string]any) (bool, error) {
	if pipelineNameA != pipelineNameB {
		return false, nil
	}

	fpA, err := Fingerprint(taskInputA)
	if err != nil {
		return false, err
	}

	fpB, err := Fingerprint(taskInputB)
	if err != nil {
		return false, err
	}

	return fpA == fpB, nil
}
