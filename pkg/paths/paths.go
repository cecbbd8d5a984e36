// Package paths provides the install-location token table for descriptor
// values. The descriptor dialect refers to install directories through
// tokens like {app} and {group}; instead of ambient global state, the
// mapping is an explicit Resolver constructed once per build and threaded
// through every component that expands destinations.
package paths

import (
	"sort"
	"strings"

	"github.com/yoelcortes/setupforge/pkg/manifest"
)

// Well-known location tokens
const (
	TokenApp           = "{app}"
	TokenProgramFiles  = "{pf}"
	TokenAutoPF        = "{autopf}"
	TokenGroup         = "{group}"
	TokenUserDesktop   = "{userdesktop}"
	TokenCommonDesktop = "{commondesktop}"
	TokenAutoDesktop   = "{autodesktop}"
	TokenTmp           = "{tmp}"
)

// Resolver expands location tokens to relative roots inside the bundle
// payload. Destinations in the artifact are always relative; the installer
// runtime maps them to absolute paths at install time.
type Resolver struct {
	tokens map[string]string
}

// NewResolver builds the token table from the descriptor's [Setup] block.
// {app} is seeded from DefaultDirName and {group} from DefaultGroupName;
// both fall back to the application name.
func NewResolver(meta manifest.Metadata) *Resolver {
	appDir := lastSegment(meta.DefaultDirName)
	if appDir == "" {
		appDir = meta.Name
	}
	groupDir := lastSegment(meta.DefaultGroupName)
	if groupDir == "" {
		groupDir = meta.Name
	}

	return &Resolver{tokens: map[string]string{
		TokenApp:           "app",
		TokenProgramFiles:  "app",
		TokenAutoPF:        "app",
		TokenGroup:         "shortcuts/startmenu/" + groupDir,
		TokenUserDesktop:   "shortcuts/desktop",
		TokenCommonDesktop: "shortcuts/desktop",
		TokenAutoDesktop:   "shortcuts/desktop",
		TokenTmp:           "tmp",
	}}
}

// Expand substitutes every known token in s, matching case-insensitively.
// Unknown {...} tokens pass through verbatim; Unknown reports them so
// callers can warn. Text around the tokens is copied untouched, so
// non-ASCII destinations survive expansion.
func (r *Resolver) Expand(s string) string {
	if !strings.Contains(s, "{") {
		return normalize(s)
	}
	var b strings.Builder
	for {
		span, before, rest, ok := nextSpan(s)
		if !ok {
			b.WriteString(s)
			break
		}
		b.WriteString(before)
		if root, known := r.tokens[strings.ToLower(span)]; known {
			b.WriteString(root)
		} else {
			b.WriteString(span)
		}
		s = rest
	}
	return normalize(b.String())
}

// Unknown returns the unrecognized {...} tokens left in s after expansion,
// sorted for deterministic reporting
func (r *Resolver) Unknown(s string) []string {
	var unknown []string
	for {
		span, _, rest, ok := nextSpan(s)
		if !ok {
			break
		}
		if _, known := r.tokens[strings.ToLower(span)]; !known && !strings.HasPrefix(span, "{#") {
			unknown = append(unknown, span)
		}
		s = rest
	}
	sort.Strings(unknown)
	return unknown
}

// nextSpan finds the first complete {...} span in s and returns it along
// with the text before it and the remainder after it
func nextSpan(s string) (span, before, rest string, ok bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", "", "", false
	}
	end := strings.Index(s[start:], "}")
	if end < 0 {
		return "", "", "", false
	}
	return s[start : start+end+1], s[:start], s[start+end+1:], true
}

// normalize converts descriptor backslash paths to forward slashes and
// strips leading separators so every destination stays bundle-relative
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return strings.Trim(s, "/")
}

// lastSegment returns the final path element of a token-prefixed dir name,
// e.g. "{autopf}\Sindri" -> "Sindri"
func lastSegment(s string) string {
	s = normalize(s)
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		s = s[idx+1:]
	}
	if strings.HasPrefix(s, "{") {
		return ""
	}
	return s
}
