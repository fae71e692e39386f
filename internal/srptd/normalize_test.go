package srptd

import "testing"

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Python", "python"},
		{"spaces become dashes", "api development", "api-development"},
		{"multiple spaces collapse", "error   handling", "error-handling"},
		{"trim first", "  React  ", "react"},
		{"punctuation stripped", "c++ (modern)", "c-modern"},
		{"underscores kept", "task_doc", "task_doc"},
		{"already normalized", "api-development", "api-development"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTag(tt.input); got != tt.want {
				t.Errorf("NormalizeTag(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTag_Idempotent(t *testing.T) {
	inputs := []string{"API Development", "Error   Handling", "c++", "React.js", "a b c"}
	for _, input := range inputs {
		once := NormalizeTag(input)
		twice := NormalizeTag(once)
		if once != twice {
			t.Errorf("NormalizeTag not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "case-insensitive, first occurrence kept",
			input: []string{"Python", "python", "PYTHON", "go"},
			want:  []string{"Python", "go"},
		},
		{
			name:  "order preserved",
			input: []string{"b", "a", "b", "c", "a"},
			want:  []string{"b", "a", "c"},
		},
		{
			name:  "empty",
			input: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deduplicate(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Deduplicate(%v) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Deduplicate(%v)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDocID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := DocID("/docs/SR-PTD-auth.md", "content")
		b := DocID("/docs/SR-PTD-auth.md", "content")
		if a != b {
			t.Errorf("DocID not deterministic: %q != %q", a, b)
		}
	})

	t.Run("stem plus 8 hex chars", func(t *testing.T) {
		id := DocID("/docs/SR-PTD-auth.md", "content")
		const prefix = "SR-PTD-auth_"
		if len(id) != len(prefix)+8 {
			t.Errorf("DocID = %q, want %q plus 8 hash chars", id, prefix)
		}
		if id[:len(prefix)] != prefix {
			t.Errorf("DocID = %q, want prefix %q", id, prefix)
		}
	})

	t.Run("content changes the id", func(t *testing.T) {
		a := DocID("doc.md", "one")
		b := DocID("doc.md", "two")
		if a == b {
			t.Errorf("DocID identical for different content: %q", a)
		}
	})
}
