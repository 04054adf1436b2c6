package format

import "testing"

func TestByteSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, ""},
		{-1, ""},
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{3355443, "3.2 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := ByteSize(tt.bytes); got != tt.want {
				t.Errorf("ByteSize(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		w, h int64
		want string
	}{
		{1200, 800, "1200×800 px"},
		{0, 800, ""},
		{1200, 0, ""},
	}

	for _, tt := range tests {
		if got := Dimensions(tt.w, tt.h); got != tt.want {
			t.Errorf("Dimensions(%d, %d) = %q, want %q", tt.w, tt.h, got, tt.want)
		}
	}
}
