package courier

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := map[string]string{
		"a.b_c":         `a\.b\_c`,
		"":              "",
		"plain words":   "plain words",
		"(parens)":      `\(parens\)`,
		"a*b~c`d":       "a\\*b\\~c\\`d",
		"[link](x)":     `\[link\]\(x\)`,
		"back\\slash":   `back\\slash`,
		"#1 + #2 = 3!":  `\#1 \+ \#2 \= 3\!`,
		"dash-and|pipe": `dash\-and\|pipe`,
		"{curly}":       `\{curly\}`,
	}
	for in, want := range cases {
		if got := EscapeMarkdown(in); got != want {
			t.Errorf("EscapeMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeMarkdownLeavesUnicode(t *testing.T) {
	in := "видео 🎬 ünïcode"
	if got := EscapeMarkdown(in); got != in {
		t.Errorf("unicode must pass through, got %q", got)
	}
}
