package test

import (
	"errors"
	"testing"
)

func AssertEqual[T comparable](t *testing.T, val1 T, val2 T, msg string) {
	t.Helper()
	if val1 != val2 {
		t.Fatalf("%s: got %v, want %v", msg, val1, val2)
	}
}

func AssertNotEqual[T comparable](t *testing.T, val1 T, val2 T, msg string) {
	t.Helper()
	if val1 == val2 {
		t.Fatalf("%s: both %v", msg, val1)
	}
}

func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

func AssertErrorIs(t *testing.T, err error, target error, msg string) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("%s: got %v, want %v", msg, err, target)
	}
}

func AssertBytesEqual(t *testing.T, val1 []byte, val2 []byte, msg string) {
	t.Helper()
	if len(val1) != len(val2) {
		t.Fatalf("%s: lengths differ (%d vs %d)", msg, len(val1), len(val2))
	}
	for i := range val1 {
		if val1[i] != val2[i] {
			t.Fatalf("%s: byte %d differs (0x%02x vs 0x%02x)", msg, i, val1[i], val2[i])
		}
	}
}
