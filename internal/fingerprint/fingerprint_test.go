package fingerprint

import (
	"strings"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	content := "City council approves $45 million development project downtown."
	if Fingerprint(content) != Fingerprint(content) {
		t.Error("expected identical fingerprints for identical content")
	}
}

func TestFingerprintNormalizesWhitespaceAndCase(t *testing.T) {
	fp := Fingerprint("A   B\n\nC")
	if fp != "a b c" {
		t.Errorf("expected %q, got %q", "a b c", fp)
	}
	if strings.Contains(fp, "  ") {
		t.Error("expected no consecutive whitespace")
	}
	if fp != strings.ToLower(fp) {
		t.Error("expected lowercase fingerprint")
	}
}

func TestFingerprintTruncatesAt200(t *testing.T) {
	long := strings.Repeat("word ", 100)
	fp := Fingerprint(long)
	if len(fp) != 200 {
		t.Errorf("expected 200 chars, got %d", len(fp))
	}
}

func TestFingerprintToleratesTrailingBoilerplate(t *testing.T) {
	lead := strings.Repeat("the factory will employ hundreds of workers ", 10)
	a := Fingerprint(lead + "Subscribe to our newsletter.")
	b := Fingerprint(lead + "Copyright 2025. All rights reserved.")
	if a != b {
		t.Error("expected matching fingerprints when only trailing text differs")
	}
}

func TestFingerprintEmptyContent(t *testing.T) {
	if Fingerprint("") != "" {
		t.Error("expected empty fingerprint for empty content")
	}
	if Fingerprint("   \n\t  ") != "" {
		t.Error("expected empty fingerprint for whitespace-only content")
	}
}
