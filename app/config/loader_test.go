package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeWatchList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creators.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidWatchList(t *testing.T) {
	path := writeWatchList(t, `
creators:
  - uid: "12345"
    name: "Some Creator"
    enabled: true
    monitor: [post]
  - uid: "67890"
    name: "Other Creator"
    enabled: false
`)

	list, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(list.Creators) != 2 {
		t.Fatalf("Expected 2 creators, got %d", len(list.Creators))
	}

	first := list.Creators[0]
	if first.UID != "12345" {
		t.Errorf("Expected uid '12345', got '%s'", first.UID)
	}
	if !first.Monitors(KindPost) {
		t.Error("First creator should monitor posts")
	}
	if first.Monitors(KindVideo) {
		t.Error("First creator should not monitor videos")
	}

	// Monitor kinds default to both when omitted
	second := list.Creators[1]
	if !second.Monitors(KindPost) || !second.Monitors(KindVideo) {
		t.Error("Creator without explicit monitor kinds should default to post and video")
	}

	enabled := list.Enabled()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled creator, got %d", len(enabled))
	}
	if enabled[0].UID != "12345" {
		t.Errorf("Expected enabled creator '12345', got '%s'", enabled[0].UID)
	}
}

func TestLoadInvalidWatchList(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty list", "creators: []"},
		{"missing uid", "creators:\n  - name: \"No UID\"\n    enabled: true"},
		{"missing name", "creators:\n  - uid: \"1\"\n    enabled: true"},
		{"duplicate uid", "creators:\n  - uid: \"1\"\n    name: \"A\"\n  - uid: \"1\"\n    name: \"B\""},
		{"unknown kind", "creators:\n  - uid: \"1\"\n    name: \"A\"\n    monitor: [livestream]"},
		{"bad yaml", "creators: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWatchList(t, tt.content)
			if _, err := NewLoader(path).Load(); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
