package artifact

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"nftsets/internal/dataset"
)

func TestPythonFloatString(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{0, "0.0"},
		{0.5, "0.5"},
		{-2, "-2.0"},
		{0.0042, "0.0042"},
		{1250.5, "1250.5"},
	}
	for _, c := range cases {
		if got := pythonFloatString(c.in); got != c.want {
			t.Errorf("pythonFloatString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWriteInterCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inter.csv")
	rows := []dataset.Encoded{
		{User: 3, Item: 0, Label: 1},
		{User: 4, Item: 2, Label: 0},
	}
	if err := WriteInterCSV(path, rows); err != nil {
		t.Fatalf("WriteInterCSV: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "user,item,label\n3,0,1\n4,2,0\n"
	if string(b) != want {
		t.Fatalf("expected %q, got %q", want, string(b))
	}

	got, err := ReadInterCSV(path)
	if err != nil {
		t.Fatalf("ReadInterCSV: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("round trip mismatch: %v != %v", got, rows)
	}
}

func TestWriteItemTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item_price.csv")
	rows := [][]float64{{1, 1}, {0.5, 0.5}}
	if err := WriteItemTableCSV(path, rows); err != nil {
		t.Fatalf("WriteItemTableCSV: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "item,f0,f1\n0,1.0,1.0\n1,0.5,0.5\n"
	if string(b) != want {
		t.Fatalf("expected %q, got %q", want, string(b))
	}

	tab, err := ReadTableCSV(path)
	if err != nil {
		t.Fatalf("ReadTableCSV: %v", err)
	}
	if !reflect.DeepEqual(tab.IDs, []int{0, 1}) {
		t.Errorf("ids: %v", tab.IDs)
	}
	if !reflect.DeepEqual(tab.Rows, rows) {
		t.Errorf("rows: %v != %v", tab.Rows, rows)
	}
}

func TestWriteUserFeaturesCSVOffsetsIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_features.csv")
	users := &dataset.AlignedUsers{
		Cols: []string{"tx_count", "avg_price"},
		Rows: [][]float64{{0, 0.5}, {1, 0.25}},
	}
	if err := WriteUserFeaturesCSV(path, users, 3); err != nil {
		t.Fatalf("WriteUserFeaturesCSV: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "user,tx_count,avg_price\n3,0.0,0.5\n4,1.0,0.25\n"
	if string(b) != want {
		t.Fatalf("expected %q, got %q", want, string(b))
	}

	tab, err := ReadTableCSV(path)
	if err != nil {
		t.Fatalf("ReadTableCSV: %v", err)
	}
	if !reflect.DeepEqual(tab.IDs, []int{3, 4}) {
		t.Errorf("user ids not offset by item count: %v", tab.IDs)
	}
}

func TestWriteRecordQuoting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.csv")
	f, err := createFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeRecord(f, []string{"plain", `has,comma`, `has"quote`}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	b, _ := os.ReadFile(path)
	want := "plain,\"has,comma\",\"has\"\"quote\"\n"
	if string(b) != want {
		t.Fatalf("expected %q, got %q", want, string(b))
	}
}
