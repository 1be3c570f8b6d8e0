package engine

import "strings"

// Split breaks a SQL script into individual statements on top-level
// semicolons. Quoted strings and identifiers ('', "", ``, []) and comments
// never split, and the BEGIN ... END body of CREATE TRIGGER stays whole.
// Statements holding nothing but whitespace and comments are dropped.
func Split(script string) []string {
	var (
		stmts   []string
		start   int
		content bool
		words   int
		first   string
		trigger bool
		depth   int
	)

	flush := func(end int) {
		if content {
			stmts = append(stmts, strings.TrimSpace(script[start:end]))
		}
		content, words, first, trigger, depth = false, 0, "", false, 0
	}

	n := len(script)
	for i := 0; i < n; {
		c := script[i]

		switch {
		case c == '\'' || c == '"' || c == '`':
			content = true
			i = skipQuoted(script, i, c)

		case c == '[':
			content = true
			i = skipPast(script, i+1, "]")

		case c == '-' && i+1 < n && script[i+1] == '-':
			i = skipPast(script, i+2, "\n")

		case c == '/' && i+1 < n && script[i+1] == '*':
			i = skipPast(script, i+2, "*/")

		case c == ';':
			if depth > 0 {
				i++
				continue
			}
			flush(i)
			i++
			start = i

		case isIdentStart(c):
			content = true
			j := i + 1
			for j < n && isIdentPart(script[j]) {
				j++
			}

			word := strings.ToUpper(script[i:j])
			words++
			if words == 1 {
				first = word
			}

			switch {
			case first == "CREATE" && word == "TRIGGER" && depth == 0:
				trigger = true
			case trigger && (word == "BEGIN" || word == "CASE"):
				depth++
			case trigger && word == "END" && depth > 0:
				depth--
			}
			i = j

		default:
			if !isSpace(c) {
				content = true
			}
			i++
		}
	}

	flush(n)
	return stmts
}

// skipQuoted returns the index just past the closing quote; a doubled quote
// is an escaped quote.
func skipQuoted(s string, i int, q byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

func skipPast(s string, from int, marker string) int {
	if from >= len(s) {
		return len(s)
	}
	idx := strings.Index(s[from:], marker)
	if idx < 0 {
		return len(s)
	}
	return from + idx + len(marker)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '$'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
