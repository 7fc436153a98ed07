package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

func TestOSFileSystem_RoundTrip(t *testing.T) {
	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	path := filepath.Join(dir, "r0.bin")
	if err := fsys.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := ReadNode(fsys, path, 0)
	if err != nil {
		t.Fatalf("ReadNode failed: %v", err)
	}
	if string(data) != "\x01\x02\x03" {
		t.Errorf("ReadNode = %v", data)
	}
}

func TestMemoryFileSystem_WriteNeedsParent(t *testing.T) {
	mfs := NewMemoryFileSystem()

	err := mfs.WriteFile("/out/r0.png", []byte("x"), 0644)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrNotExist without parent, got %v", err)
	}

	if err := mfs.MkdirAll("/out/plots", 0755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"/out/r0.png", "/out/plots/r0.png"} {
		if err := mfs.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Errorf("WriteFile(%s) failed: %v", p, err)
		}
	}
	if got := mfs.Files(); len(got) != 2 || got[0] != "/out/plots/r0.png" {
		t.Errorf("Files() = %v", got)
	}

	info, err := mfs.Stat("/out")
	if err != nil || !info.IsDir() {
		t.Errorf("Stat(/out) = %v, %v; want directory", info, err)
	}
}

func TestMemoryFileSystem_ReadReturnsCopy(t *testing.T) {
	mfs := NewMemoryFileSystem()
	src := []byte{1, 2, 3}
	if err := mfs.WriteFile("n.bin", src, 0644); err != nil {
		t.Fatal(err)
	}
	src[0] = 9

	got, _ := mfs.ReadFile("n.bin")
	got[1] = 9
	again, _ := mfs.ReadFile("n.bin")
	if string(again) != "\x01\x02\x03" {
		t.Errorf("stored data was aliased: %v", again)
	}
}

func TestMemoryFileSystem_MkdirOverFile(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if err := mfs.WriteFile("/x", nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := mfs.MkdirAll("/x/y", 0755); !errors.Is(err, fs.ErrExist) {
		t.Errorf("expected ErrExist, got %v", err)
	}
}

func TestReadNode_Errors(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.MkdirAll("/nodes", 0755)
	_ = mfs.WriteFile("/nodes/big.bin", make([]byte, 100), 0644)

	tests := []struct {
		name    string
		path    string
		limit   int64
		wantErr string
	}{
		{"missing", "/nodes/none.bin", 0, "stat"},
		{"directory", "/nodes", 0, "directory"},
		{"too large", "/nodes/big.bin", 99, "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadNode(mfs, tt.path, tt.limit)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadNode error = %v, want %q", err, tt.wantErr)
			}
		})
	}

	if _, err := ReadNode(mfs, "/nodes/big.bin", 100); err != nil {
		t.Errorf("file at limit should read: %v", err)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"r0123", "r0123"},
		{"r0.hrc", "r0.hrc"},
		{"../../etc/passwd", "etc_passwd"},
		{"node with spaces!!", "node_with_spaces"},
		{"", "unknown"},
		{"...", "unknown"},
		{strings.Repeat("a", 200), strings.Repeat("a", 128)},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	got := ArtifactPath("out", "../r0", ".png")
	if want := filepath.Join("out", "r0.png"); got != want {
		t.Errorf("ArtifactPath = %q, want %q", got, want)
	}
}

var _ FileSystem = (*MemoryFileSystem)(nil)
