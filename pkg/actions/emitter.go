// Package actions serializes the descriptor's shortcut, directory and
// post-install declarations into the XML action block embedded in the
// artifact's metadata segment. The installer runtime consumes this block at
// install time.
package actions

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/logging"
	"github.com/yoelcortes/setupforge/pkg/manifest"
	"github.com/yoelcortes/setupforge/pkg/paths"
)

// Emit renders the action block for m. Task references are re-validated
// here even though the parser already checked them: the emitter writes into
// the artifact and must never embed a dangling reference.
func Emit(m *manifest.Manifest, pr *paths.Resolver) ([]byte, error) {
	logger := logging.GetLogger("actions.emitter")

	doc := etree.NewDocument()
	root := doc.CreateElement("actions")

	if len(m.Tasks) > 0 {
		tasks := root.CreateElement("tasks")
		for _, t := range m.Tasks {
			el := tasks.CreateElement("task")
			el.CreateAttr("id", t.Name)
			el.CreateAttr("description", t.Description)
			if t.DefaultUnchecked() {
				el.CreateAttr("default", "unchecked")
			} else {
				el.CreateAttr("default", "checked")
			}
		}
	}

	if len(m.Dirs) > 0 {
		dirs := root.CreateElement("dirs")
		for _, d := range m.Dirs {
			el := dirs.CreateElement("dir")
			el.CreateAttr("path", pr.Expand(d.Path))
			if d.Permissions != manifest.PermDefault {
				el.CreateAttr("permissions", d.Permissions.String())
			}
		}
	}

	if len(m.Icons) > 0 {
		shortcuts := root.CreateElement("shortcuts")
		for _, i := range m.Icons {
			if err := checkTasks(m, i.Tasks, "shortcut", i.Line); err != nil {
				return nil, err
			}
			el := shortcuts.CreateElement("shortcut")
			el.CreateAttr("name", i.DisplayName())
			el.CreateAttr("target", pr.Expand(i.Filename))
			el.CreateAttr("location", i.Location().String())
			if i.WorkingDir != "" {
				el.CreateAttr("workingdir", pr.Expand(i.WorkingDir))
			}
			if len(i.Tasks) > 0 {
				el.CreateAttr("task", strings.Join(i.Tasks, " "))
			}
		}
	}

	if len(m.Run) > 0 {
		run := root.CreateElement("run")
		for _, r := range m.Run {
			if err := checkTasks(m, r.Tasks, "run action", r.Line); err != nil {
				return nil, err
			}
			el := run.CreateElement("exec")
			el.CreateAttr("target", pr.Expand(r.Filename))
			if r.Parameters != "" {
				el.CreateAttr("parameters", r.Parameters)
			}
			if r.Description != "" {
				el.CreateAttr("description", r.Description)
			}
			el.CreateAttr("nowait", strconv.FormatBool(r.NoWait()))
			el.CreateAttr("postinstall", strconv.FormatBool(r.PostInstall()))
			el.CreateAttr("skipifsilent", strconv.FormatBool(r.SkipIfSilent()))
			if len(r.Tasks) > 0 {
				el.CreateAttr("task", strings.Join(r.Tasks, " "))
			}
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "serializing action block")
	}

	logger.Debug().
		Int("tasks", len(m.Tasks)).
		Int("shortcuts", len(m.Icons)).
		Int("run", len(m.Run)).
		Msg("Action block emitted")
	return out, nil
}

func checkTasks(m *manifest.Manifest, refs []string, where string, line int) error {
	for _, ref := range refs {
		if _, ok := m.TaskByName(ref); !ok {
			return errors.Newf(errors.ErrReferenceInvalid, "%s references undeclared task %q", where, ref).
				WithDetail("line", line)
		}
	}
	return nil
}
