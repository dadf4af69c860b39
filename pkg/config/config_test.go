package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	p := NewYAMLProvider(path)

	in := &Config{
		LocalSyncDir:     "/data/s3",
		LogDir:           "/data/logs",
		CircleCIAPIToken: "secret-token",
	}
	if err := p.Save(in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	out, err := p.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *out != *in {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}
}

func TestLoadMissingFile(t *testing.T) {
	p := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := p.Load(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Load() error = %v, want ErrNotConfigured", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("local_sync_dir: [not a string"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewYAMLProvider(path).Load(); err == nil {
		t.Error("Load() succeeded on malformed YAML")
	}
}

func TestSaveTightensPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_dir: /tmp\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewYAMLProvider(path)
	if err := p.Save(&Config{LogDir: "/tmp"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/s3", filepath.Join(home, "s3")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
