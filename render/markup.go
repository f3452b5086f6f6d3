// Copyright © 2016, The T Authors.

// Package render implements the LineOracle contract (§4.3): producing
// rendered line text and measured RenderedLines from a Doc, and the
// bit-exact markup grammar (§6.3) that rendered text is expressed in.
package render

import (
	"strings"
	"unicode/utf8"
)

// A TokenKind names the kind of a markup Token.
type TokenKind int

const (
	// Text is a run of literal, displayable runes.
	Text TokenKind = iota
	// Open begins an attribute scope; Attrs names the
	// comma-separated attribute list between the angle brackets.
	Open
	// Close ends the innermost open attribute scope.
	Close
	// Newline is a hard line end.
	Newline
	// Tab advances to the next multiple-of-8 column.
	Tab
	// FormFeed marks end-of-page; nothing after it renders.
	FormFeed
	// Control is a non-whitespace control character, rendered as
	// a caret escape in red.
	Control
)

// A Token is one lexical unit of rendered line text.
type Token struct {
	Kind  TokenKind
	Text  string   // Text tokens: the literal run. Control: the one rune.
	Attrs []string // Open tokens: the attribute list.
}

// Tokenize parses raw rendered-line text into markup Tokens per the
// §6.3 grammar: `<a,b,c>` opens, `</>` closes the innermost, `<<` is
// a literal `<`, `\f` ends the page and nothing after it is kept.
func Tokenize(raw string) []Token {
	var toks []Token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, Token{Kind: Text, Text: lit.String()})
			lit.Reset()
		}
	}
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\f':
			flush()
			toks = append(toks, Token{Kind: FormFeed})
			return toks
		case '\n':
			flush()
			toks = append(toks, Token{Kind: Newline})
		case '\t':
			flush()
			toks = append(toks, Token{Kind: Tab})
		case '<':
			if i+1 < len(runes) && runes[i+1] == '<' {
				lit.WriteRune('<')
				i++
				continue
			}
			if i+1 < len(runes) && runes[i+1] == '/' {
				// "</>" closes; the grammar defines no other
				// close form.
				j := i + 2
				for j < len(runes) && runes[j] != '>' {
					j++
				}
				flush()
				toks = append(toks, Token{Kind: Close})
				i = j
				continue
			}
			j := i + 1
			for j < len(runes) && runes[j] != '>' {
				j++
			}
			flush()
			attrs := splitAttrs(string(runes[i+1 : j]))
			toks = append(toks, Token{Kind: Open, Attrs: attrs})
			i = j
		default:
			if r < 0x20 {
				flush()
				toks = append(toks, Token{Kind: Control, Text: string(r)})
				continue
			}
			lit.WriteRune(r)
		}
	}
	flush()
	return toks
}

func splitAttrs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Format is Tokenize's inverse: it reconstructs the bit-exact
// rendered-line source a Token slice was parsed from (round-trip
// law 8/9 of the testable properties rely on this symmetry holding
// for any text produced by render_line). A Control token is written
// in its escaped `<fg:red>^X</>` form, not as the raw control
// character Tokenize read.
func Format(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		switch t.Kind {
		case Text:
			b.WriteString(strings.ReplaceAll(t.Text, "<", "<<"))
		case Open:
			b.WriteByte('<')
			b.WriteString(strings.Join(t.Attrs, ","))
			b.WriteByte('>')
		case Close:
			b.WriteString("</>")
		case Newline:
			b.WriteByte('\n')
		case Tab:
			b.WriteByte('\t')
		case FormFeed:
			b.WriteByte('\f')
		case Control:
			r, _ := utf8.DecodeRuneInString(t.Text)
			b.WriteString(controlEscape(r))
		}
	}
	return b.String()
}

// controlEscape renders a control rune as `<fg:red>^X</>`, per
// §6.3: control characters other than the whitespace/markup forms
// above always render this way, including NUL (never embedded
// literally, to avoid truncating anything downstream that treats
// NUL as a terminator).
func controlEscape(r rune) string {
	letter := byte(r) ^ 0x40
	if r == 0x7f {
		letter = '?'
	}
	return "<fg:red>^" + string(letter) + "</>"
}

// PlainText strips every markup token, returning the literal
// displayed characters only (used by, e.g., the completion filter
// when it submits a highlighted line to its host popup).
func PlainText(raw string) string {
	var b strings.Builder
	for _, t := range Tokenize(raw) {
		switch t.Kind {
		case Text:
			b.WriteString(t.Text)
		case Newline:
			b.WriteByte('\n')
		case Tab:
			b.WriteByte('\t')
		case Control:
			b.WriteString(t.Text)
		}
	}
	return b.String()
}
