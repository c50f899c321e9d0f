package roster

import (
	"errors"
	"testing"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawRow
		want    Row
		wantErr bool
	}{
		{
			name: "canonical headers",
			raw: RawRow{
				"first_name": "Jane", "last_name": "Doe", "phone_number": "+1555",
				"email": "j@x.com", "notes": "vip", "days_since_last_appointment": "30",
			},
			want: Row{
				FirstName: "Jane", LastName: "Doe", PhoneNumber: "+1555",
				Email: "j@x.com", Notes: "vip", DaysSinceLastAppointment: "30",
			},
		},
		{
			name: "short aliases",
			raw:  RawRow{"name": "Jane", "last": "Doe", "phone": "+1555999", "email": "j@x.com"},
			want: Row{FirstName: "Jane", LastName: "Doe", PhoneNumber: "+1555999", Email: "j@x.com"},
		},
		{
			name: "spreadsheet style headers",
			raw:  RawRow{" First Name ": " Jane ", "Last-Name": "Doe", "Mobile": "+1", "E-mail": "a@b"},
			want: Row{FirstName: "Jane", LastName: "Doe", PhoneNumber: "+1", Email: "a@b"},
		},
		{
			name: "canonical beats alias",
			raw:  RawRow{"first_name": "Jane", "name": "Janet", "phone_number": "+1", "phone": "+2"},
			want: Row{FirstName: "Jane", PhoneNumber: "+1"},
		},
		{
			name: "empty canonical falls back to alias",
			raw:  RawRow{"first_name": "", "name": "Janet", "phone_number": " ", "mobile": "+3"},
			want: Row{FirstName: "Janet", PhoneNumber: "+3"},
		},
		{
			name: "colliding headers keep the filled value",
			raw:  RawRow{"First Name": "", "first_name": "Jane", "phone": "+1555"},
			want: Row{FirstName: "Jane", PhoneNumber: "+1555"},
		},
		{
			name: "colliding filled headers pick in sorted order",
			raw:  RawRow{"first_name": "Jane", "First Name": "Janet", "phone_number": "+1"},
			want: Row{FirstName: "Janet", PhoneNumber: "+1"},
		},
		{
			name:    "missing phone",
			raw:     RawRow{"first_name": "Jane", "last_name": "Doe"},
			wantErr: true,
		},
		{
			name:    "missing first name",
			raw:     RawRow{"last_name": "Doe", "phone_number": "+1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRow(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRow) {
					t.Fatalf("expected ErrInvalidRow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRow failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRow = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseRow_CollidingHeadersDeterministic(t *testing.T) {
	raw := RawRow{"First Name": "", "first_name": "Jane", "FIRST-NAME": " ", "phone": "+1555"}
	for i := 0; i < 200; i++ {
		got, err := ParseRow(raw)
		if err != nil {
			t.Fatalf("run %d: ParseRow failed: %v", i, err)
		}
		if got.FirstName != "Jane" {
			t.Fatalf("run %d: FirstName = %q, want Jane", i, got.FirstName)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	for in, want := range map[string]string{
		"First Name":          "first_name",
		"\ufeffFIRST_NAME":   "first_name",
		"  phone-number  ":    "phone_number",
		"days  since   last":  "days_since_last",
		"email":               "email",
	} {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}
