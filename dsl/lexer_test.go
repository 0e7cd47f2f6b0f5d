package dsl

import "testing"

func tokenize(t *testing.T, src string) []token {
	t.Helper()
	toks, err := tokenizeAll(src)
	if err != nil {
		t.Fatalf("tokenize %q: %v", src, err)
	}
	return toks
}

func TestLexerBasics(t *testing.T) {
	toks := tokenize(t, `foo(a as int) | take 10 ;`)
	want := []string{"foo", "(", "a", "as", "int", ")", "|", "take", "10", ";"}
	if len(toks) != len(want)+1 {
		t.Fatalf("got %d tokens, want %d + EOF: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].text != w {
			t.Fatalf("token %d = %q, want %q", i, toks[i].text, w)
		}
	}
	if toks[len(toks)-1].kind != tokEOF {
		t.Fatalf("last token should be EOF")
	}
}

func TestLexerCommentsAndWhitespace(t *testing.T) {
	toks := tokenize(t, "a # this is a comment\n b")
	if len(toks) != 3 || toks[0].text != "a" || toks[1].text != "b" {
		t.Fatalf("comments should be skipped: %v", toks)
	}
	if toks[1].line != 2 {
		t.Fatalf("token b on line %d, want 2", toks[1].line)
	}
}

func TestLexerHyphenatedKeywords(t *testing.T) {
	t.Run("stage keywords lex as one token", func(t *testing.T) {
		for _, kw := range []string{"project-rename", "project-remove", "project-keep", "mv-expand", "ignore-error", "left-inner", "left-outer"} {
			toks := tokenize(t, kw)
			if len(toks) != 2 || toks[0].text != kw {
				t.Fatalf("%q lexed as %v, want a single identifier", kw, toks)
			}
		}
	})

	t.Run("ordinary subtraction stays three tokens", func(t *testing.T) {
		toks := tokenize(t, "x-y")
		if len(toks) != 4 || toks[0].text != "x" || toks[1].text != "-" || toks[2].text != "y" {
			t.Fatalf("x-y lexed as %v, want ident punct ident", toks)
		}
	})

	t.Run("hyphen before a digit is subtraction even after a merge base", func(t *testing.T) {
		toks := tokenize(t, "left-1")
		if len(toks) != 4 || toks[0].text != "left" {
			t.Fatalf("left-1 lexed as %v, want ident punct int", toks)
		}
	})
}

func TestLexerNumbers(t *testing.T) {
	toks := tokenize(t, "42 3.25 7.")
	if toks[0].kind != tokInt || toks[0].text != "42" {
		t.Fatalf("42 lexed as %v", toks[0])
	}
	if toks[1].kind != tokDecimal || toks[1].text != "3.25" {
		t.Fatalf("3.25 lexed as %v", toks[1])
	}
	// "7." with no trailing digit is an int followed by a dot.
	if toks[2].kind != tokInt || toks[2].text != "7" || !toks[3].isPunct(".") {
		t.Fatalf("7. lexed as %v %v", toks[2], toks[3])
	}
}

func TestLexerStrings(t *testing.T) {
	toks := tokenize(t, `"he said \"hi\"\n"`)
	if toks[0].kind != tokString || toks[0].text != "he said \"hi\"\n" {
		t.Fatalf("string lexed as %q", toks[0].text)
	}

	if _, err := tokenizeAll(`"unterminated`); err == nil {
		t.Fatalf("unterminated string should be a syntax error")
	}
	if _, err := tokenizeAll(`"\q"`); err == nil {
		t.Fatalf("invalid escape should be a syntax error")
	}
}

func TestLexerMultiCharPunct(t *testing.T) {
	toks := tokenize(t, "<= >= == != <> && < >")
	want := []string{"<=", ">=", "==", "!=", "<>", "&&", "<", ">"}
	for i, w := range want {
		if !toks[i].isPunct(w) {
			t.Fatalf("token %d = %v, want %q", i, toks[i], w)
		}
	}
}

func TestLexerRejectsUnknownCharacter(t *testing.T) {
	if _, err := tokenizeAll("a @ b"); err == nil {
		t.Fatalf("@ should be a syntax error")
	}
}
