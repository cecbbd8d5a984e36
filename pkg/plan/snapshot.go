package plan

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yoelcortes/setupforge/pkg/errors"
)

// snapshot is the YAML shape written by WriteSnapshot. Policies are
// rendered as their descriptor spellings so the file is diffable.
type snapshot struct {
	Entries []snapshotEntry `yaml:"entries"`
	Dirs    []string        `yaml:"dirs,omitempty"`
	Total   int64           `yaml:"totalBytes"`
}

type snapshotEntry struct {
	Source      string `yaml:"source"`
	Dest        string `yaml:"dest"`
	Permissions string `yaml:"permissions"`
	Versioning  string `yaml:"versioning"`
	Rule        int    `yaml:"rule"`
	Size        int64  `yaml:"size"`
}

// WriteSnapshot dumps the plan as YAML for inspection (build --plan-out)
func (p *Plan) WriteSnapshot(path string) error {
	snap := snapshot{Dirs: p.Dirs, Total: p.TotalSize()}
	for _, e := range p.Entries {
		snap.Entries = append(snap.Entries, snapshotEntry{
			Source:      e.Source,
			Dest:        e.Dest,
			Permissions: e.Permissions.String(),
			Versioning:  e.Versioning.String(),
			Rule:        e.RuleIndex,
			Size:        e.Size,
		})
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOWrite, "marshaling plan snapshot")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIOWrite, "writing plan snapshot to %q", path)
	}
	return nil
}
