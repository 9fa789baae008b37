package utils

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-5, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{KB, "1.00 KB"},
		{1536, "1.50 KB"},
		{MB, "1.00 MB"},
		{GB * 2, "2.00 GB"},
		{TB, "1.00 TB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bytes", "4096", 4096, false},
		{"kb", "1KB", KB, false},
		{"lower mb", "512mb", 512 * MB, false},
		{"short unit", "2G", 2 * GB, false},
		{"fraction", "1.5KB", 1536, false},
		{"spaces", " 10 MB ", 10 * MB, false},
		{"explicit bytes", "12B", 12, false},
		{"empty", "", 0, true},
		{"no number", "MB", 0, true},
		{"bad unit", "10XB", 0, true},
		{"words", "lots", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSize(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
