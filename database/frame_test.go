package database

import (
	"testing"

	"github.com/go-gota/gota/series"
)

func TestSuccessFrame(t *testing.T) {
	df := SuccessFrame("CREATE TABLE t (a);", 1)
	if got := df.Names(); got[0] != "SQL" || got[1] != "Result" {
		t.Errorf("columns = %v, want [SQL Result]", got)
	}
	if df.Nrow() != 1 {
		t.Fatalf("Nrow() = %d, want 1", df.Nrow())
	}
	if got := df.Elem(0, 0).String(); got != "CREATE TABLE t (a);" {
		t.Errorf("SQL = %q", got)
	}
	if got, _ := df.Elem(0, 1).Int(); got != 1 {
		t.Errorf("Result = %d, want 1", got)
	}
	if !IsSuccessFrame(df) {
		t.Error("IsSuccessFrame() should be true")
	}
}

func TestBuildFrameTypes(t *testing.T) {
	columns := []string{"id", "score", "name", "ok"}
	rows := [][]interface{}{
		{int64(1), 1.5, []byte("alpha"), true},
		{int64(2), 2.5, []byte("beta"), false},
	}

	df := BuildFrame(columns, rows)
	if df.Nrow() != 2 || df.Ncol() != 4 {
		t.Fatalf("frame is %dx%d, want 2x4", df.Nrow(), df.Ncol())
	}

	wantTypes := []series.Type{series.Int, series.Float, series.String, series.Bool}
	for i, name := range df.Names() {
		if got := df.Select(name).Types()[0]; got != wantTypes[i] {
			t.Errorf("column %s type = %v, want %v", name, got, wantTypes[i])
		}
	}

	if got, _ := df.Elem(1, 0).Int(); got != 2 {
		t.Errorf("id[1] = %d, want 2", got)
	}
	if got := df.Elem(0, 2).String(); got != "alpha" {
		t.Errorf("name[0] = %q, want alpha", got)
	}
}

func TestBuildFrameNulls(t *testing.T) {
	df := BuildFrame([]string{"a"}, [][]interface{}{{nil}, {int64(7)}})
	if !df.Elem(0, 0).IsNA() {
		t.Error("NULL should come back as NA")
	}
	if got, _ := df.Elem(1, 0).Int(); got != 7 {
		t.Errorf("a[1] = %d, want 7", got)
	}
}

func TestBuildFrameEmpty(t *testing.T) {
	df := BuildFrame(nil, nil)
	if df.Ncol() != 0 {
		t.Errorf("Ncol() = %d, want 0", df.Ncol())
	}
}
