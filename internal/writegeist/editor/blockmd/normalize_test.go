package blockmd

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty input", in: "", want: ""},
		{name: "whitespace only", in: "  \n \t ", want: ""},
		{name: "already canonical", in: "# Title\n\nText.\n", want: "# Title\n\nText.\n"},
		{name: "missing trailing newline", in: "# Title", want: "# Title\n"},
		{name: "crlf line endings", in: "# Title\r\n\r\nText.\r\n", want: "# Title\n\nText.\n"},
		{name: "bare cr line endings", in: "# Title\rText.", want: "# Title\nText.\n"},
		{name: "trailing spaces stripped", in: "# Title  \n\nText.\t\n", want: "# Title\n\nText.\n"},
		{name: "newline runs collapsed", in: "# Title\n\n\n\nText.\n", want: "# Title\n\nText.\n"},
		{name: "leading blank lines dropped", in: "\n\n# Title\n", want: "# Title\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanHTMLArtifacts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text untouched", in: "Anna walked home.", want: "Anna walked home."},
		{name: "paragraph tags", in: "<p>Anna walked home.</p>", want: "\nAnna walked home.\n"},
		{name: "list to markdown bullets", in: "<ul><li>Anna</li><li>Boris</li></ul>", want: "\n* Anna\n* Boris\n\n"},
		{name: "entities decoded", in: "fish &amp; chips", want: "fish & chips"},
		{name: "nbsp to space", in: "Anna&nbsp;walked", want: "Anna walked"},
		{name: "unknown tags dropped", in: "<span>Anna</span> <em>walked</em>", want: "Anna walked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanHTMLArtifacts(tt.in); got != tt.want {
				t.Errorf("CleanHTMLArtifacts(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "empty", in: "", want: 0},
		{name: "whitespace only", in: "  \n ", want: 0},
		{name: "plain sentence", in: "Anna walked to the docks.", want: 5},
		{name: "markup stripped", in: "# Title\n\n* item one\n\n> quoted **bold** text\n", want: 6},
		{name: "newlines as separators", in: "one\ntwo\nthree", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.in); got != tt.want {
				t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
