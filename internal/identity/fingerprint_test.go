package identity

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v map[string]any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return v
}

func TestFingerprintKeyOrderInvariant(t *testing.T) {
	a := decode(t, `{"b": 1, "a": 2, "c": {"y": 1, "x": 2}}`)
	b := decode(t, `{"a": 2, "c": {"x": 2, "y": 1}, "b": 1}`)

	fpA, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fpB, err := Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}

	if fpA != fpB {
		t.Errorf("expected equal fingerprints for key-permuted documents, got %s != %s", fpA, fpB)
	}
}

func TestFingerprintDistinguishesDifferentValues(t *testing.T) {
	a := decode(t, `{"a": 1}`)
	b := decode(t, `{"a": 2}`)

	fpA, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fpB, err := Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}

	if fpA == fpB {
		t.Errorf("expected different fingerprints for differing values, both were %s", fpA)
	}
}

func TestFingerprintDistinguishesNumericForm(t *testing.T) {
	a := decode(t, `{"a": 1}`)
	b := decode(t, `{"a": 1.0}`)

	fpA, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fpB, err := Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}

	if fpA == fpB {
		t.Errorf("expected 1 and 1.0 to produce different fingerprints, since their JSON literal forms differ, both were %s", fpA)
	}
}

func TestFingerprintNestedArraysPreserveOrder(t *testing.T) {
	a := decode(t, `{"a": [1, 2, 3]}`)
	b := decode(t, `{"a": [3, 2, 1]}`)

	fpA, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fpB, err := Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}

	if fpA == fpB {
		t.Error("expected array element order to affect the fingerprint")
	}
}

func TestFingerprintStable(t *testing.T) {
	doc := decode(t, `{"z": "last", "a": "first", "nested": {"inner": [1, 2, {"deep": true}]}}`)

	fp1, err := Fingerprint(doc)
	if err != nil {
		t.Fatal(err)
	}
	fp2, err := Fingerprint(doc)
	if err != nil {
		t.Fatal(err)
	}

	if fp1 != fp2 {
		t.Errorf("fingerprint is not stable across calls: %s != %s", fp1, fp2)
	}
	if len(fp1) != 64 {
		t.Errorf("expected a 64-char hex SHA-256 digest, got length %d", len(fp1))
	}
}

func TestEquivalent(t *testing.T) {
	inputA := decode(t, `{"b": 1, "a": 2}`)
	inputB := decode(t, `{"a": 2, "b": 1}`)
	inputC := decode(t, `{"a": 3, "b": 1}`)

	equal, err := Equivalent("cram_to_bam", inputA, "cram_to_bam", inputB)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("expected tasks with same pipeline and key-permuted equal input to be equivalent")
	}

	differentInput, err := Equivalent("cram_to_bam", inputA, "cram_to_bam", inputC)
	if err != nil {
		t.Fatal(err)
	}
	if differentInput {
		t.Error("expected tasks with differing task_input to not be equivalent")
	}

	differentPipeline, err := Equivalent("cram_to_bam", inputA, "other_pipeline", inputA)
	if err != nil {
		t.Fatal(err)
	}
	if differentPipeline {
		t.Error("expected tasks for different pipelines to not be equivalent regardless of task_input")
	}
}
