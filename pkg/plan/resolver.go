package plan

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/logging"
	"github.com/yoelcortes/setupforge/pkg/manifest"
	"github.com/yoelcortes/setupforge/pkg/paths"
)

// Resolve expands every [Files] rule against srcRoot and merges the results
// into a single Plan. Globs and recursive walks are expanded in
// lexicographic order; when two rules schedule the same destination, the
// later rule wins and the shadowed entry is dropped with a warning log.
func Resolve(rules []manifest.FileRule, srcRoot string, pr *paths.Resolver) (*Plan, error) {
	logger := logging.GetLogger("plan.resolver")

	absRoot, err := filepath.Abs(srcRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceNotFound, "cannot resolve source root %q", srcRoot)
	}

	byDest := make(map[string]int) // dest -> index into entries
	var entries []Entry
	dirSet := make(map[string]struct{})

	for i, rule := range rules {
		matched, dirs, err := expandRule(rule, i, absRoot, pr)
		if err != nil {
			return nil, err
		}
		for _, d := range dirs {
			dirSet[d] = struct{}{}
		}

		logger.Debug().
			Int("rule", i).
			Str("source", rule.Source).
			Int("matched", len(matched)).
			Msg("Rule expanded")

		for _, e := range matched {
			if prev, ok := byDest[e.Dest]; ok {
				logger.Warn().
					Str("dest", e.Dest).
					Int("shadowedRule", entries[prev].RuleIndex).
					Int("winningRule", e.RuleIndex).
					Msg("Duplicate destination, later rule wins")
				entries[prev] = e
				continue
			}
			byDest[e.Dest] = len(entries)
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(a, b int) bool {
		if entries[a].RuleIndex != entries[b].RuleIndex {
			return entries[a].RuleIndex < entries[b].RuleIndex
		}
		return entries[a].Dest < entries[b].Dest
	})

	var dirs []string
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	logger.Debug().Int("entries", len(entries)).Int("dirs", len(dirs)).Msg("File plan resolved")
	return &Plan{Entries: entries, Dirs: dirs}, nil
}

// expandRule resolves one rule into its concrete entries, already sorted by
// destination. For recursive rules flagged createallsubdirs it also returns
// every walked sub-directory so empty ones reach the plan.
func expandRule(rule manifest.FileRule, index int, absRoot string, pr *paths.Resolver) ([]Entry, []string, error) {
	source := filepath.FromSlash(strings.ReplaceAll(rule.Source, "\\", "/"))
	if !filepath.IsAbs(source) {
		source = filepath.Join(absRoot, source)
	}
	destRoot := pr.Expand(rule.DestDir)

	entry := func(abs, dest string, info fs.FileInfo) Entry {
		return Entry{
			Source:      abs,
			Dest:        path.Join(destRoot, dest),
			Permissions: rule.Permissions,
			Versioning:  rule.Versioning(),
			RuleIndex:   index,
			Size:        info.Size(),
			Executable:  info.Mode().Perm()&0111 != 0,
		}
	}

	var entries []Entry
	var dirs []string

	switch {
	case rule.Recurse:
		// Pattern applies to the base name; the walk recreates the
		// sub-tree relative to the pattern's directory.
		dir, pattern := filepath.Split(source)
		dir = filepath.Clean(dir)
		if !hasMeta(pattern) {
			if info, err := os.Stat(source); err == nil && !info.IsDir() {
				// recursesubdirs on a plain file is harmless: the file
				// lands at DestDir like a literal source
				entries = append(entries, entry(source, filepath.Base(source), info))
				break
			}
			// A literal recursive source is the directory itself
			dir, pattern = source, "*"
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			// Nothing to walk: an empty or absent tree resolves to an
			// empty plan, not an error
			return nil, nil, nil
		}
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if rule.CreateAllSubdirs && p != dir {
					rel, err := filepath.Rel(dir, p)
					if err != nil {
						return err
					}
					dirs = append(dirs, path.Join(destRoot, filepath.ToSlash(rel)))
				}
				return nil
			}
			ok, err := filepath.Match(pattern, d.Name())
			if err != nil || !ok {
				return err
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			entries = append(entries, entry(p, filepath.ToSlash(rel), info))
			return nil
		})
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrIORead, "walking %q for rule %d", dir, index)
		}

	case hasMeta(source):
		matches, err := filepath.Glob(source)
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrSourceNotFound, "bad pattern %q in rule %d", rule.Source, index)
		}
		sort.Strings(matches)
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, nil, errors.Wrapf(err, errors.ErrIORead, "stat %q for rule %d", m, index)
			}
			if info.IsDir() {
				continue
			}
			entries = append(entries, entry(m, filepath.Base(m), info))
		}

	default:
		info, err := os.Stat(source)
		if err != nil {
			return nil, nil, errors.Newf(errors.ErrSourceNotFound, "source %q does not exist", rule.Source).
				WithDetail("rule", index).
				WithDetail("line", rule.Line)
		}
		if info.IsDir() {
			return nil, nil, errors.Newf(errors.ErrSourceNotFound, "source %q is a directory (missing recursesubdirs?)", rule.Source).
				WithDetail("rule", index).
				WithDetail("line", rule.Line)
		}
		entries = append(entries, entry(source, filepath.Base(source), info))
	}

	sort.Slice(entries, func(a, b int) bool { return entries[a].Dest < entries[b].Dest })
	return entries, dirs, nil
}

// hasMeta reports whether the path contains glob metacharacters
func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[")
}
