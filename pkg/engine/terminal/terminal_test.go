package terminal

import (
	"os"
	"testing"
)

func TestSize_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if w, h := Size(f); w != DefaultWidth || h != DefaultHeight {
		t.Errorf("Size() = %d, %d, want %d, %d", w, h, DefaultWidth, DefaultHeight)
	}
	if Interactive(f) {
		t.Error("Interactive() = true for a regular file")
	}
}
