package cache

import "testing"

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid url", "redis://localhost:6379/0", false},
		{"valid with auth", "redis://:secret@localhost:6379/1", false},
		{"empty url", "", true},
		{"wrong scheme", "http://localhost:6379", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseURL(%q) succeeded, want error", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL(%q) error = %v", tt.url, err)
			}
			if opts.Addr != "localhost:6379" {
				t.Errorf("Addr = %q, want localhost:6379", opts.Addr)
			}
		})
	}
}
