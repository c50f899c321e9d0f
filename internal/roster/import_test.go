package roster

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	in := "first_name,last_name,phone_number,email\n" +
		"Jane,Doe,+1555,j@x.com\n" +
		"\n" +
		",,,\n" +
		"Bob,Jones,+1666\n"

	rows, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	want := []RawRow{
		{"first_name": "Jane", "last_name": "Doe", "phone_number": "+1555", "email": "j@x.com"},
		{"first_name": "Bob", "last_name": "Jones", "phone_number": "+1666", "email": ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrNoHeader) {
		t.Errorf("empty input: expected ErrNoHeader, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("a,b\n\"unterminated,1\n")); err == nil {
		t.Error("expected parse error for bad quoting")
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	data := [][]any{
		{"First Name", "Last Name", "Phone", "Notes"},
		{"Jane", "Doe", "+1555", "vip"},
		{"Bob", "Jones", "+1666"},
	}
	for i, rec := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	rows, err := ReadXLSX(&buf)
	if err != nil {
		t.Fatalf("ReadXLSX failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	row, err := ParseRow(rows[0])
	if err != nil {
		t.Fatalf("ParseRow failed: %v", err)
	}
	if row.FirstName != "Jane" || row.PhoneNumber != "+1555" || row.Notes != "vip" {
		t.Errorf("row = %+v", row)
	}
	if rows[1]["Notes"] != "" {
		t.Errorf("short row Notes = %q, want empty", rows[1]["Notes"])
	}
}

func TestReadXLSX_NotASpreadsheet(t *testing.T) {
	if _, err := ReadXLSX(strings.NewReader("not a zip")); err == nil {
		t.Error("expected error")
	}
}
