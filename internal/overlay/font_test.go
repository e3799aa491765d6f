package overlay

import (
	"path/filepath"
	"testing"
)

func TestResolveFont_FallbackOnMissing(t *testing.T) {
	rf := ResolveFont("definitely-not-installed.ttf", 20, "")
	if !rf.Fallback {
		t.Fatal("expected fallback for a missing font")
	}
	if rf.Face == nil {
		t.Fatal("fallback must still provide a usable face")
	}
}

func TestResolveFont_FallbackOnGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.ttf")
	writeFile(t, path, []byte("this is not a font"))

	rf := ResolveFont(path, 20, "")
	if !rf.Fallback {
		t.Fatal("expected fallback for an unparseable font file")
	}
}

func TestResolveFont_SizeFloor(t *testing.T) {
	// A non-positive size must not panic and still resolves something.
	rf := ResolveFont("nope.ttf", 0, "")
	if rf.Face == nil {
		t.Fatal("no face resolved")
	}
}

func TestResolvedFont_NewFaceFallback(t *testing.T) {
	rf := ResolveFont("nope.ttf", 20, "")
	if rf.NewFace() != rf.Face {
		t.Fatal("fallback face is stateless and should be shared")
	}
}

func TestCandidatePaths(t *testing.T) {
	paths := candidatePaths("arial.ttf", "/srv/fonts")
	if paths[0] != "arial.ttf" {
		t.Errorf("first candidate = %q, want the literal name", paths[0])
	}
	if paths[1] != filepath.Join("/srv/fonts", "arial.ttf") {
		t.Errorf("second candidate = %q, want the configured font dir", paths[1])
	}
	if len(paths) <= 2 {
		t.Error("system font dirs missing from candidates")
	}
}

func TestCandidatePaths_ExplicitPath(t *testing.T) {
	paths := candidatePaths("/opt/fonts/arial.ttf", "/srv/fonts")
	if len(paths) != 1 || paths[0] != "/opt/fonts/arial.ttf" {
		t.Fatalf("explicit paths must be tried as given only, got %v", paths)
	}
}
