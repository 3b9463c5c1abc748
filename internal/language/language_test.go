package language

import "testing"

func TestGetLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"go", "Go", true},
		{"Python", "Python", true},
		{" c++ ", "C++", true},
		{"CPP", "C++", true},
		{"visual basic .net", "Visual Basic .NET", true},
		{"", "", false},
		{"Brainfuck", "", false},
	}
	for _, tt := range tests {
		got, ok := GetLanguage(tt.in)
		if ok != tt.ok || got.Name != tt.want {
			t.Errorf("GetLanguage(%q) = (%q, %v), want (%q, %v)", tt.in, got.Name, ok, tt.want, tt.ok)
		}
	}
}

func TestGetSupportedLanguagesSorted(t *testing.T) {
	langs := GetSupportedLanguages()
	if len(langs) != len(Languages) {
		t.Fatalf("expected %d languages, got %d", len(Languages), len(langs))
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1].Name > langs[i].Name {
			t.Fatalf("languages not sorted: %q before %q", langs[i-1].Name, langs[i].Name)
		}
	}
}

func TestStepWraps(t *testing.T) {
	langs := GetSupportedLanguages()
	first, last := langs[0].Name, langs[len(langs)-1].Name
	if got := Step(last, 1); got != first {
		t.Fatalf("Step(last, 1) = %q, want %q", got, first)
	}
	if got := Step(first, -1); got != last {
		t.Fatalf("Step(first, -1) = %q, want %q", got, last)
	}
	if got := Step("nope", 1); got != first {
		t.Fatalf("Step(unknown) = %q, want %q", got, first)
	}
}
