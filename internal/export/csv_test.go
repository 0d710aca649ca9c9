package export

import (
	"bytes"
	"testing"
)

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	err := CSV(&buf,
		[]string{"id", "name"},
		[][]string{
			{"1", "Asha Rao"},
			{"2", "quoted, name"},
		})
	if err != nil {
		t.Fatal(err)
	}
	want := "id,name\n1,Asha Rao\n2,\"quoted, name\"\n"
	if got := buf.String(); got != want {
		t.Errorf("csv output:\n got %q\nwant %q", got, want)
	}
}

func TestCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, []string{"id"}, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "id\n" {
		t.Errorf("header-only output = %q", got)
	}
}
