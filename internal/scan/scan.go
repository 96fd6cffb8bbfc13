// Package scan splits free-form text into candidate tokens for
// interpretation, tracking where each token came from.
package scan

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Token is a candidate substring with its source position. Line is
// 1-based and Offset is the byte offset of the token within its line.
type Token struct {
	Text   string
	Line   int
	Offset int
}

// MinLength filters out fragments too short to interpret usefully.
const MinLength = 2

// Line tokenizes a single line of text.
func Line(s string, lineNo int) []Token {
	var out []Token
	i := 0
	for i < len(s) {
		// Skip whitespace.
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		start := i
		for i < len(s) && !isSpace(s[i]) {
			i++
		}
		if i == start {
			continue
		}
		word, off := trim(s[start:i], start)
		if len(word) >= MinLength {
			out = append(out, Token{Text: word, Line: lineNo, Offset: off})
		}
	}
	return out
}

// Reader tokenizes the whole input, line by line.
func Reader(r io.Reader) ([]Token, error) {
	var out []Token
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		out = append(out, Line(sc.Text(), line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// trim strips punctuation that glues tokens to surrounding prose, a
// trailing comma or a wrapping parenthesis, without eating characters
// that belong to the token itself. '=' stays because base64 padding
// ends with it; ':' stays because IPv6 and MAC addresses use it.
func trim(word string, off int) (string, int) {
	for len(word) > 0 {
		r := rune(word[0])
		if r == '(' || r == '[' || r == '{' || r == '"' || r == '\'' || r == '`' {
			word = word[1:]
			off++
			continue
		}
		break
	}
	for len(word) > 0 {
		r := rune(word[len(word)-1])
		if r == ')' || r == ']' || r == '}' || r == '"' || r == '\'' || r == '`' ||
			r == ',' || r == ';' || r == '.' || r == '!' || r == '?' {
			word = word[:len(word)-1]
			continue
		}
		break
	}
	return word, off
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// Interesting reports whether a token is worth running through the
// interpreter at all. Plain lowercase prose words are skipped.
func Interesting(t Token) bool {
	hasDigit := false
	hasOther := false
	for _, r := range t.Text {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLower(r):
			hasOther = true
		}
	}
	if hasDigit || hasOther {
		return true
	}
	// A long run of lowercase hex chars is still a candidate.
	return len(t.Text) >= 16 && strings.Trim(t.Text, "0123456789abcdef") == ""
}
