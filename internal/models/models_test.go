package models

import "testing"

func TestLookupLimits(t *testing.T) {
	tests := []struct {
		id    Model
		limit int
		known bool
	}{
		{GPT35Turbo, 6000, true},
		{GPT4, 12000, true},
		{Model("gpt-unknown"), 6000, false},
	}
	for _, tt := range tests {
		info, ok := Lookup(tt.id)
		if ok != tt.known {
			t.Errorf("Lookup(%q) known = %v, want %v", tt.id, ok, tt.known)
		}
		if info.MaxInputChars != tt.limit {
			t.Errorf("Lookup(%q).MaxInputChars = %d, want %d", tt.id, info.MaxInputChars, tt.limit)
		}
	}
}

func TestParseAndNext(t *testing.T) {
	if m, ok := Parse(" GPT-4 "); !ok || m != GPT4 {
		t.Fatalf("Parse() = (%q, %v), want (%q, true)", m, ok, GPT4)
	}
	if _, ok := Parse("davinci"); ok {
		t.Fatalf("expected unknown model to be rejected")
	}
	if Next(GPT35Turbo) != GPT4 || Next(GPT4) != GPT35Turbo {
		t.Fatalf("Next() does not cycle through the catalog")
	}
	if len(IDs()) != len(Catalog) {
		t.Fatalf("IDs() length mismatch")
	}
}
