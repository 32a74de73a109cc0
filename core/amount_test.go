package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{in: "1500.00", want: 150000},
		{in: "1500", want: 150000},
		{in: "1500.5", want: 150050},
		{in: "0.07", want: 7},
		{in: "0", want: 0},
		{in: "-5.00", want: -500},
		{in: " 12.34 ", want: 1234},
		{in: "", wantErr: true},
		{in: "lol", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "1.234", wantErr: true}, // more than 2 decimals
		{in: "12,34", wantErr: true},
		{in: "1.-5", wantErr: true}, // sign belongs in front, not in the fraction
		{in: "1.+5", wantErr: true},
		{in: "--1.00", wantErr: true},
		{in: "+-1.00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAmount(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAmount_String(t *testing.T) {
	tests := []struct {
		in   Amount
		want string
	}{
		{in: 150000, want: "1500.00"},
		{in: 150050, want: "1500.50"},
		{in: 7, want: "0.07"},
		{in: 0, want: "0.00"},
		{in: -500, want: "-5.00"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Amount(%d).String() = %q, want %q", int64(tt.in), got, tt.want)
		}
	}
}

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal(Amount(150000))
	if err != nil {
		t.Fatalf("Marshal(): %v", err)
	}
	if string(data) != `"1500.00"` {
		t.Errorf("Marshal() = %s, want %q", data, `"1500.00"`)
	}

	var a Amount
	if err = json.Unmarshal([]byte(`"750.50"`), &a); err != nil {
		t.Fatalf("Unmarshal(): %v", err)
	}
	if a != 75050 {
		t.Errorf("Unmarshal() = %v, want 75050", a)
	}

	// bare numbers are accepted too
	if err = json.Unmarshal([]byte(`750.5`), &a); err != nil {
		t.Fatalf("Unmarshal(): %v", err)
	}
	if a != 75050 {
		t.Errorf("Unmarshal() = %v, want 75050", a)
	}

	if err = json.Unmarshal([]byte(`"lol"`), &a); err == nil {
		t.Error("Unmarshal() expected error on malformed amount")
	}
}

func TestAmount_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want Amount
	}{
		{name: "bytes", src: []byte("1500.00"), want: 150000},
		{name: "string", src: "23.10", want: 2310},
		{name: "int64", src: int64(99), want: 9900},
		{name: "nil", src: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			if err := a.Scan(tt.src); err != nil {
				t.Fatalf("Scan(%v): %v", tt.src, err)
			}
			if a != tt.want {
				t.Errorf("Scan(%v) = %v, want %v", tt.src, a, tt.want)
			}
		})
	}
}
