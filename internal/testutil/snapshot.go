// SPDX-License-Identifier: Unlicense OR MIT

// Package testutil implements the pixel snapshot checks used by the
// rasterization tests. A snapshot is a PNG next to a .ptr sidecar holding
// a "pixels <sha256>" line; when the hash of a run matches the sidecar the
// snapshot is accepted without re-encoding the image.
package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"overtide.org/colors"
)

func hashPixels(pix []uint8) string {
	sum := sha256.Sum256(pix)
	return hex.EncodeToString(sum[:])
}

// CheckSnapshot compares a premultiplied BGRA buffer against the stored
// snapshot under testdata/. A missing snapshot is created and the test
// logged; a mismatch fails unless OVERTIDE_UPDATE_SNAPSHOTS is set, in
// which case the snapshot is rewritten.
func CheckSnapshot(t *testing.T, name string, pix []uint8, width, height int) {
	t.Helper()
	hash := hashPixels(pix)
	dir := "testdata"
	ptrPath := filepath.Join(dir, name+".ptr")
	pngPath := filepath.Join(dir, name+".png")

	stored, err := os.ReadFile(ptrPath)
	if err == nil {
		for _, line := range strings.Split(string(stored), "\n") {
			if rest, ok := strings.CutPrefix(line, "pixels "); ok {
				if strings.TrimSpace(rest) == hash {
					return
				}
				if os.Getenv("OVERTIDE_UPDATE_SNAPSHOTS") == "" {
					t.Fatalf("snapshot %s: pixel hash %s does not match stored %s (set OVERTIDE_UPDATE_SNAPSHOTS to update)",
						name, hash, strings.TrimSpace(rest))
				}
			}
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	if err := os.WriteFile(ptrPath, []byte(fmt.Sprintf("pixels %s\n", hash)), 0o644); err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	straight := colors.ToStraightRGBA(append([]uint8(nil), pix...))
	copy(img.Pix, straight)
	f, err := os.Create(pngPath)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	t.Logf("snapshot %s: wrote %s", name, pngPath)
}
