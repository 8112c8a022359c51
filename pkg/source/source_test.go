package source

import (
	"reflect"
	"testing"
)

func TestNewTreeSortsAndDeduplicates(t *testing.T) {
	tree := NewTree([]File{
		{Path: "b.py", Content: []byte("b")},
		{Path: "a.py", Content: []byte("first")},
		{Path: "a.py", Content: []byte("last")},
	})

	want := []string{"a.py", "b.py"}
	if got := tree.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}

	content, err := tree.Read("a.py")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(content) != "last" {
		t.Errorf("duplicate path should keep last content, got %q", content)
	}
}

func TestFromMap(t *testing.T) {
	tree := FromMap(map[string]string{
		"main.go": "package main\n",
		"util.go": "package main\n",
	})

	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}
	if tree.TotalBytes() != int64(2*len("package main\n")) {
		t.Errorf("TotalBytes() = %d", tree.TotalBytes())
	}

	content, err := tree.Read("main.go")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(content) != "package main\n" {
		t.Errorf("content = %q", content)
	}
}

func TestReadMissing(t *testing.T) {
	tree := FromMap(map[string]string{"a.py": "x"})
	if _, err := tree.Read("absent.py"); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestFilesInPathOrder(t *testing.T) {
	tree := FromMap(map[string]string{
		"z.py": "1",
		"a.py": "2",
		"m.py": "3",
	})

	files := tree.Files()
	for i := 1; i < len(files); i++ {
		if files[i-1].Path >= files[i].Path {
			t.Fatalf("files out of order: %s before %s", files[i-1].Path, files[i].Path)
		}
	}
}

func TestNilTree(t *testing.T) {
	var tree *Tree

	if tree.Len() != 0 {
		t.Error("nil tree Len should be 0")
	}
	if tree.TotalBytes() != 0 {
		t.Error("nil tree TotalBytes should be 0")
	}
	if tree.Files() != nil {
		t.Error("nil tree Files should be nil")
	}
	if tree.Paths() != nil {
		t.Error("nil tree Paths should be nil")
	}
	if _, err := tree.Read("a"); err == nil {
		t.Error("nil tree Read should error")
	}
}

func TestEmptyTree(t *testing.T) {
	tree := NewTree(nil)
	if tree.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tree.Len())
	}
	if got := tree.Paths(); len(got) != 0 {
		t.Errorf("Paths() = %v, want empty", got)
	}
}
