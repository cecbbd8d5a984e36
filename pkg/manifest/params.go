package manifest

import (
	"strings"

	"github.com/yoelcortes/setupforge/pkg/errors"
)

// param is one `Key: Value` attribute on an entry line. consumed tracks
// whether a section handler recognized the key.
type param struct {
	key      string
	value    string
	consumed bool
}

// splitParams breaks an entry line into its `Key: Value; Key: Value; ...`
// attributes. Values may be double-quoted; inside quotes a doubled quote is
// a literal quote and semicolons lose their separator meaning.
func splitParams(line string, lineNo int) ([]*param, error) {
	var params []*param

	for _, field := range splitQuoted(line, ';') {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, value, found := strings.Cut(field, ":")
		if !found {
			return nil, errors.Newf(errors.ErrManifestParse, "malformed parameter %q, expected Key: Value", field).
				WithDetail("line", lineNo)
		}
		unquoted, err := unquote(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrManifestParse, "bad quoting in parameter %q", key).
				WithDetail("line", lineNo)
		}
		params = append(params, &param{
			key:   strings.TrimSpace(key),
			value: unquoted,
		})
	}
	return params, nil
}

// splitQuoted splits on sep, ignoring separators inside double quotes
func splitQuoted(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == sep && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// unquote strips an optional surrounding double-quote pair and collapses
// doubled quotes inside it
func unquote(s string) (string, error) {
	if !strings.HasPrefix(s, "\"") {
		return s, nil
	}
	if len(s) < 2 || !strings.HasSuffix(s, "\"") {
		return "", errors.Newf(errors.ErrManifestParse, "unterminated quote in %q", s)
	}
	inner := s[1 : len(s)-1]
	return strings.ReplaceAll(inner, `""`, `"`), nil
}
