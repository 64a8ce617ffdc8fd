package config

import (
	"bufio"
	"io"
	"strings"

	derrors "git.home.luguber.info/inful/docweb/internal/errors"
)

type entryKind int

const (
	entrySection entryKind = iota
	entryKeyValue
)

// entry is one syntactic element of a project file, in file order.
type entry struct {
	kind    entryKind
	section string
	key     string
	value   string
	line    int
}

const tripleQuote = `"""`

// parseEntries tokenizes the INI-like project format:
//
//	[section]
//	key = value
//	key: "quoted \"value\""
//	key = """multi
//	line"""
//
// Lines starting with '#' or ';' are comments. Section names are lower-cased.
func parseEntries(file string, r io.Reader) ([]entry, error) {
	var (
		out     []entry
		section string
		lineNo  int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return nil, derrors.ConfigSyntax(file, lineNo, "unterminated section header")
			}
			section = strings.ToLower(strings.TrimSpace(line[1:end]))
			if section == "" {
				return nil, derrors.ConfigSyntax(file, lineNo, "empty section name")
			}
			out = append(out, entry{kind: entrySection, section: section, line: lineNo})
			continue
		}

		sep := strings.IndexAny(line, "=:")
		if sep <= 0 {
			return nil, derrors.ConfigSyntax(file, lineNo, "expected key = value")
		}
		key := strings.TrimSpace(line[:sep])
		raw := strings.TrimSpace(line[sep+1:])
		start := lineNo

		var value string
		switch {
		case strings.HasPrefix(raw, tripleQuote):
			body := raw[len(tripleQuote):]
			if end := strings.Index(body, tripleQuote); end >= 0 {
				value = body[:end]
				break
			}
			lines := []string{body}
			closed := false
			for sc.Scan() {
				lineNo++
				text := sc.Text()
				if end := strings.Index(text, tripleQuote); end >= 0 {
					lines = append(lines, text[:end])
					closed = true
					break
				}
				lines = append(lines, text)
			}
			if !closed {
				return nil, derrors.ConfigSyntax(file, start, "unterminated triple-quoted value")
			}
			value = strings.Join(lines, "\n")
		case strings.HasPrefix(raw, `"`):
			v, err := unquote(raw)
			if err != nil {
				return nil, derrors.ConfigSyntax(file, lineNo, err.Error())
			}
			value = v
		default:
			value = raw
		}

		out = append(out, entry{kind: entryKeyValue, section: section, key: key, value: value, line: start})
	}
	if err := sc.Err(); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "read project file").
			WithContext("file", file)
	}
	return out, nil
}

type syntaxError string

func (e syntaxError) Error() string { return string(e) }

// unquote decodes a double-quoted value. Text after the closing quote must be empty.
func unquote(raw string) (string, error) {
	var b strings.Builder
	for i := 1; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '"':
			if strings.TrimSpace(raw[i+1:]) != "" {
				return "", syntaxError("unexpected text after quoted value")
			}
			return b.String(), nil
		case '\\':
			i++
			if i >= len(raw) {
				return "", syntaxError("unterminated escape sequence")
			}
			switch raw[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\\':
				b.WriteByte(raw[i])
			default:
				b.WriteByte('\\')
				b.WriteByte(raw[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", syntaxError("unterminated quoted value")
}
