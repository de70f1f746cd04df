package artifact

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"nftsets/internal/dataset"
)

func TestWriteGroupedSplit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.txt")
	rows := []dataset.Encoded{
		{User: 4, Item: 2},
		{User: 3, Item: 0},
		{User: 4, Item: 2},
		{User: 3, Item: 1},
	}
	if err := WriteGroupedSplit(path, rows); err != nil {
		t.Fatalf("WriteGroupedSplit: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Users ascending, each user's items in row order, duplicates kept.
	want := "3 0 1\n4 2 2\n"
	if string(b) != want {
		t.Fatalf("expected %q, got %q", want, string(b))
	}
}

func TestGroupedSplitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valid.txt")
	rows := []dataset.Encoded{
		{User: 10, Item: 5},
		{User: 12, Item: 1},
		{User: 10, Item: 3},
	}
	if err := WriteGroupedSplit(path, rows); err != nil {
		t.Fatalf("WriteGroupedSplit: %v", err)
	}

	users, byUser, err := ReadGroupedSplit(path)
	if err != nil {
		t.Fatalf("ReadGroupedSplit: %v", err)
	}
	if !reflect.DeepEqual(users, []int{10, 12}) {
		t.Errorf("users: %v", users)
	}
	if !reflect.DeepEqual(byUser[10], []int{5, 3}) {
		t.Errorf("user 10 items: %v", byUser[10])
	}
	if !reflect.DeepEqual(byUser[12], []int{1}) {
		t.Errorf("user 12 items: %v", byUser[12])
	}
}

func TestWriteGroupedSplitEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	if err := WriteGroupedSplit(path, nil); err != nil {
		t.Fatalf("WriteGroupedSplit: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 0 {
		t.Fatalf("expected empty file, got %q", string(b))
	}
}
