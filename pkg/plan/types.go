// Package plan turns the ordered [Files] rules into a concrete, deduplicated
// list of copy entries against a real source tree.
package plan

import (
	"github.com/yoelcortes/setupforge/pkg/manifest"
)

// Entry is one concrete file scheduled for the bundle payload
type Entry struct {
	// Source is the absolute path of the file on disk
	Source string `json:"source" yaml:"source"`

	// Dest is the bundle-relative destination path (forward slashes)
	Dest string `json:"dest" yaml:"dest"`

	// Permissions is the install-time ACL policy for the file
	Permissions manifest.PermissionPolicy `json:"permissions" yaml:"permissions"`

	// Versioning is the install-time overwrite policy. Advisory: carried
	// into the artifact for the installer runtime, not enforced here.
	Versioning manifest.VersioningPolicy `json:"versioning" yaml:"versioning"`

	// RuleIndex is the zero-based index of the [Files] rule that produced
	// (or, after deduplication, won) this entry
	RuleIndex int `json:"rule" yaml:"rule"`

	// Size in bytes at resolve time
	Size int64 `json:"size" yaml:"size"`

	// Executable records whether any execute bit was set on the source
	Executable bool `json:"executable,omitempty" yaml:"executable,omitempty"`
}

// Plan is the resolved, ordered file plan. Entries are unique by Dest and
// ordered by (RuleIndex, Dest) so repeated builds are reproducible.
type Plan struct {
	Entries []Entry `json:"entries" yaml:"entries"`

	// Dirs lists bundle-relative sub-directories to recreate even when
	// empty, collected from rules flagged createallsubdirs. Advisory:
	// carried into the artifact for the installer runtime.
	Dirs []string `json:"dirs,omitempty" yaml:"dirs,omitempty"`
}

// TotalSize sums the sizes of all scheduled files
func (p *Plan) TotalSize() int64 {
	var total int64
	for _, e := range p.Entries {
		total += e.Size
	}
	return total
}
