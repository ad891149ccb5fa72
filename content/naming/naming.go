// Package naming derives the identity of a content file from its path: the file stem and
// extension, the namespace segments of its directory, and the class name used for the
// generated accessors.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultRootTokens are stripped from a file's directory before it is split into
// namespace segments.
var DefaultRootTokens = []string{"LearnToads/Game", "Content", "Shaders"}

// Name is the resolved identity of one content file.
type Name struct {
	// Normalized is the raw path with every backslash replaced by a forward slash.
	Normalized string
	// FileName is everything after the last separator.
	FileName string
	// Stem is the file name up to its first dot.
	Stem string
	// Ext starts at the first dot of the file name, so "foo.bar.png" has Ext ".bar.png".
	Ext string
	// Segments are the directory components left after root tokens are removed.
	Segments []string
	// ClassName is Stem with its first character upper-cased.
	ClassName string
}

// Normalize replaces Windows separators with forward slashes.
func Normalize(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// Resolve splits raw into the parts the classifier and code generator need.
func Resolve(raw string, rootTokens []string) Name {
	normalized := Normalize(raw)
	nameIndex := strings.LastIndex(normalized, "/") + 1
	fileName := normalized[nameIndex:]

	stem, ext := fileName, ""
	if dot := strings.Index(fileName, "."); dot >= 0 {
		stem, ext = fileName[:dot], fileName[dot:]
	}

	dir := ""
	if nameIndex > 0 {
		dir = normalized[:nameIndex-1]
	}

	return Name{
		Normalized: normalized,
		FileName:   fileName,
		Stem:       stem,
		Ext:        ext,
		Segments:   Segments(dir, rootTokens),
		ClassName:  UpperFirst(stem),
	}
}

// Segments splits a directory into namespace segments. Dots count as separators, so a
// module directory such as "LearnToads.Game" matches the token "LearnToads/Game". Every
// occurrence of a root token (as a whole run of segments) is dropped, as are empty
// segments.
func Segments(dir string, rootTokens []string) []string {
	segs := splitSegments(dir)
	for _, token := range rootTokens {
		tok := splitSegments(token)
		if len(tok) == 0 {
			continue
		}
		segs = removeRun(segs, tok)
	}
	if len(segs) == 0 {
		return nil
	}
	return segs
}

func splitSegments(s string) []string {
	s = strings.ReplaceAll(Normalize(s), ".", "/")
	var out []string
	for _, part := range strings.Split(s, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func removeRun(segs, run []string) []string {
	out := segs[:0:0]
	for i := 0; i < len(segs); {
		if hasRunAt(segs, run, i) {
			i += len(run)
			continue
		}
		out = append(out, segs[i])
		i++
	}
	return out
}

func hasRunAt(segs, run []string, at int) bool {
	if at+len(run) > len(segs) {
		return false
	}
	for j, r := range run {
		if segs[at+j] != r {
			return false
		}
	}
	return true
}

// UpperFirst upper-cases the first character of s and leaves the rest untouched.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Identifier turns s into a valid Go identifier: characters that cannot appear in one
// become '_' and a leading digit gets an 'X' prefix.
func Identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" {
		return "X"
	}
	if r, _ := utf8.DecodeRuneInString(id); unicode.IsDigit(r) {
		return "X" + id
	}
	return id
}

// PascalJoin joins segments into one exported identifier fragment, e.g. ["ui", "hud"]
// becomes "UiHud".
func PascalJoin(segments []string) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(UpperFirst(Identifier(seg)))
	}
	return b.String()
}
