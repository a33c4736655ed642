package keywords

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		maxWords int
		want     string
	}{
		{"empty", "", 8, ""},
		{"whitespace only", "   \t ", 8, ""},
		{"stop words and short tokens dropped", "The cat is on the mat", 8, "cat mat"},
		{"punctuation trimmed", "Aliens invade the White House, shocking footage!!!", 8, "Aliens invade White House shocking footage"},
		{"headline respects max", "Aliens invade the White House, shocking footage!!!", 3, "Aliens invade White"},
		{"apostrophes kept", "Senator's bill doesn't pass", 8, "Senator's bill doesn't pass"},
		{"curly and straight quotes removed", "“Miracle” cure \"works\"", 8, "Miracle cure works"},
		{"stop words are case insensitive", "THESE Those WOULD matter", 8, "matter"},
		{"zero budget", "Senate passes bill", 0, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.text, tc.maxWords)
			if got != tc.want {
				t.Fatalf("Extract(%q, %d) = %q, want %q", tc.text, tc.maxWords, got, tc.want)
			}
		})
	}
}

func TestExtractHeadlineBoundary(t *testing.T) {
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
		"india", "juliet", "kilo", "lima", "mike", "november", "oscar", "papa",
	}

	fifteen := strings.Join(words[:15], " ")
	if got := strings.Fields(Extract(fifteen, 8)); len(got) != 8 {
		t.Fatalf("15 tokens: got %d words, want 8 (headline rule)", len(got))
	}

	sixteen := strings.Join(words[:16], " ")
	if got := strings.Fields(Extract(sixteen, 8)); len(got) != LongTextCap {
		t.Fatalf("16 tokens: got %d words, want %d (long text cap)", len(got), LongTextCap)
	}

	if got := strings.Fields(Extract(sixteen, 3)); len(got) != 3 {
		t.Fatalf("16 tokens with max 3: got %d words, want 3", len(got))
	}
}

func TestExtractNeverEmitsFilteredWords(t *testing.T) {
	inputs := []string{
		"The Senate passed a new infrastructure bill on Tuesday.",
		"It is what it is, and that was that!!! Or was it? No way, he did it to us by the sea.",
		"a an the of to in on at by is be do",
		"Breaking: (Reuters) Officials say the [classified] {report} was leaked; experts disagree.",
	}

	for _, input := range inputs {
		for max := 0; max <= 10; max++ {
			got := Extract(input, max)
			fields := strings.Fields(got)
			if len(fields) > max {
				t.Fatalf("Extract(%q, %d) emitted %d words", input, max, len(fields))
			}
			for _, word := range fields {
				if len(word) <= 2 {
					t.Fatalf("Extract(%q, %d) emitted short word %q", input, max, word)
				}
				if IsStopWord(word) {
					t.Fatalf("Extract(%q, %d) emitted stop word %q", input, max, word)
				}
			}
		}
	}
}

func TestCandidates(t *testing.T) {
	t.Run("raw then wide then narrow", func(t *testing.T) {
		got := Candidates("  Aliens invade the White House, shocking footage!!!  ", 6, 3)
		want := []string{
			"Aliens invade the White House, shocking footage!!!",
			"Aliens invade White House shocking footage",
			"Aliens invade White",
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Candidates() = %#v, want %#v", got, want)
		}
	})

	t.Run("identical variants are kept", func(t *testing.T) {
		got := Candidates("Senate infrastructure", 8, 4)
		want := []string{"Senate infrastructure", "Senate infrastructure", "Senate infrastructure"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Candidates() = %#v, want %#v", got, want)
		}
	})

	t.Run("empty extractions skipped", func(t *testing.T) {
		got := Candidates("is it on", 6, 3)
		want := []string{"is it on"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Candidates() = %#v, want %#v", got, want)
		}
	})

	t.Run("blank query", func(t *testing.T) {
		if got := Candidates("   ", 6, 3); len(got) != 0 {
			t.Fatalf("Candidates() = %#v, want empty", got)
		}
	})
}
