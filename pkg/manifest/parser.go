package manifest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/logging"
)

// section names recognized by the parser, lowercased
var knownSections = map[string]bool{
	"setup":     true,
	"languages": true,
	"tasks":     true,
	"dirs":      true,
	"files":     true,
	"icons":     true,
	"run":       true,
}

// Parse reads descriptor text into a Manifest. It is a single pass over the
// lines; directive names are case-insensitive, values keep their case.
// Unknown sections and keys become Warnings, never errors. A missing
// required identity field (AppId, AppName, AppVersion) is fatal and no
// model is returned.
func Parse(text string) (*Manifest, error) {
	logger := logging.GetLogger("manifest.parser")

	m := &Manifest{Defines: make(map[string]string)}
	section := ""
	skipSection := false

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//"):
			continue
		case strings.HasPrefix(line, "#"):
			if name, value, ok := parseDefine(line); ok {
				m.Defines[name] = value
			} else {
				m.warn(lineNo, "unsupported preprocessor line %q", line)
			}
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			section = strings.ToLower(line[1 : len(line)-1])
			skipSection = !knownSections[section]
			if skipSection {
				m.warn(lineNo, "unknown section [%s]", line[1:len(line)-1])
			}
			continue
		}

		if section == "" {
			m.warn(lineNo, "directive outside any section: %q", line)
			continue
		}
		if skipSection {
			continue
		}

		var err error
		if section == "setup" {
			err = m.parseSetupLine(line, lineNo)
		} else {
			err = m.parseEntryLine(section, line, lineNo)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	for _, w := range m.Warnings {
		logger.Warn().Int("line", w.Line).Msg(w.Message)
	}
	logger.Debug().
		Str("app", m.Setup.Name).
		Str("version", m.Setup.Version).
		Int("files", len(m.Files)).
		Int("icons", len(m.Icons)).
		Int("run", len(m.Run)).
		Msg("Descriptor parsed")

	return m, nil
}

// parseDefine handles the one preprocessor form the dialect uses:
// #define Name "value"
func parseDefine(line string) (name, value string, ok bool) {
	rest, found := strings.CutPrefix(line, "#define")
	if !found || rest == "" || !isSpace(rest[0]) {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	idx := strings.IndexFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return "", "", false
	}
	name = rest[:idx]
	value = strings.TrimSpace(rest[idx+1:])
	value = strings.Trim(value, "\"")
	return name, value, true
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// interpolate substitutes {#Name} references with their defined values
func (m *Manifest) interpolate(s string) string {
	if !strings.Contains(s, "{#") {
		return s
	}
	for name, value := range m.Defines {
		s = strings.ReplaceAll(s, "{#"+name+"}", value)
	}
	return s
}

// warn records a diagnostic for a directive the parser recognizes as
// malformed or unsupported but can safely skip
func (m *Manifest) warn(line int, format string, args ...interface{}) {
	m.Warnings = append(m.Warnings, Warning{
		Line:    line,
		Code:    errors.ErrUnknownDirective,
		Message: fmt.Sprintf(format, args...),
	})
}

func (m *Manifest) parseSetupLine(line string, lineNo int) error {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return errors.New(errors.ErrManifestParse, "malformed [Setup] line, expected Key=Value").
			WithDetail("line", lineNo)
	}
	key = strings.TrimSpace(key)
	value = m.interpolate(strings.TrimSpace(value))

	switch strings.ToLower(key) {
	case "appid":
		id, err := parseAppID(value)
		if err != nil {
			return errors.Wrapf(err, errors.ErrManifestParse, "invalid AppId %q", value).
				WithDetail("line", lineNo)
		}
		m.Setup.AppID = id
	case "appname":
		m.Setup.Name = value
	case "appversion":
		m.Setup.Version = value
	case "apppublisher":
		m.Setup.Publisher = value
	case "apppublisherurl":
		m.Setup.PublisherURL = value
	case "appsupporturl":
		m.Setup.SupportURL = value
	case "appupdatesurl":
		m.Setup.UpdatesURL = value
	case "defaultdirname":
		m.Setup.DefaultDirName = value
	case "defaultgroupname":
		m.Setup.DefaultGroupName = value
	case "outputbasefilename":
		m.Setup.OutputBaseFilename = value
	case "privilegesrequired":
		m.Setup.PrivilegesRequired = value
	case "compression":
		c, ok := ParseCompression(value)
		if !ok {
			m.warn(lineNo, "unknown Compression value %q, using fast", value)
		}
		m.Setup.Compression = c
		m.Setup.CompressionSet = ok
	case "solidcompression":
		m.Setup.SolidCompression = strings.EqualFold(value, "yes") || strings.EqualFold(value, "true")
	default:
		m.warn(lineNo, "unknown [Setup] key %q", key)
	}
	return nil
}

func (m *Manifest) parseEntryLine(section, line string, lineNo int) error {
	params, err := splitParams(line, lineNo)
	if err != nil {
		return err
	}

	get := func(key string) string {
		for _, p := range params {
			if strings.EqualFold(p.key, key) {
				p.consumed = true
				return m.interpolate(p.value)
			}
		}
		return ""
	}
	flags := func() []string {
		if v := get("Flags"); v != "" {
			return strings.Fields(v)
		}
		return nil
	}
	tasks := func() []string {
		if v := get("Tasks"); v != "" {
			return strings.Fields(v)
		}
		return nil
	}
	perms := func() PermissionPolicy {
		v := get("Permissions")
		p, ok := ParsePermission(v)
		if !ok {
			m.warn(lineNo, "unknown Permissions value %q", v)
		}
		return p
	}

	switch section {
	case "languages":
		m.Languages = append(m.Languages, Language{
			Name:         get("Name"),
			MessagesFile: get("MessagesFile"),
		})
	case "tasks":
		m.Tasks = append(m.Tasks, Task{
			Name:             get("Name"),
			Description:      get("Description"),
			GroupDescription: get("GroupDescription"),
			Flags:            flags(),
		})
	case "dirs":
		m.Dirs = append(m.Dirs, DirEntry{
			Path:        get("Name"),
			Permissions: perms(),
			Line:        lineNo,
		})
	case "files":
		rule := FileRule{
			Source:      get("Source"),
			DestDir:     get("DestDir"),
			Permissions: perms(),
			Tasks:       tasks(),
			Line:        lineNo,
		}
		for _, f := range flags() {
			switch strings.ToLower(f) {
			case "recursesubdirs":
				rule.Recurse = true
			case "createallsubdirs":
				rule.CreateAllSubdirs = true
			case "ignoreversion":
				rule.IgnoreVersion = true
			default:
				m.warn(lineNo, "unknown [Files] flag %q", f)
			}
		}
		if rule.Source == "" {
			return errors.New(errors.ErrManifestParse, "[Files] entry missing Source").
				WithDetail("line", lineNo)
		}
		m.Files = append(m.Files, rule)
	case "icons":
		icon := Icon{
			Name:       get("Name"),
			Filename:   get("Filename"),
			WorkingDir: get("WorkingDir"),
			Tasks:      tasks(),
			Line:       lineNo,
		}
		if icon.Name == "" || icon.Filename == "" {
			return errors.New(errors.ErrManifestParse, "[Icons] entry requires Name and Filename").
				WithDetail("line", lineNo)
		}
		m.Icons = append(m.Icons, icon)
	case "run":
		entry := RunEntry{
			Filename:    get("Filename"),
			Description: get("Description"),
			Parameters:  get("Parameters"),
			Flags:       flags(),
			Tasks:       tasks(),
			Line:        lineNo,
		}
		if entry.Filename == "" {
			return errors.New(errors.ErrManifestParse, "[Run] entry missing Filename").
				WithDetail("line", lineNo)
		}
		m.Run = append(m.Run, entry)
	}

	for _, p := range params {
		if !p.consumed {
			m.warn(lineNo, "unknown [%s] parameter %q", section, p.key)
		}
	}
	return nil
}

// validate enforces the required identity fields and checks that every task
// reference points at a declared task
func (m *Manifest) validate() error {
	if m.Setup.AppID == uuid.Nil {
		return errors.New(errors.ErrManifestInvalid, "[Setup] AppId is required")
	}
	if m.Setup.Name == "" {
		return errors.New(errors.ErrManifestInvalid, "[Setup] AppName is required")
	}
	if m.Setup.Version == "" {
		return errors.New(errors.ErrManifestInvalid, "[Setup] AppVersion is required")
	}

	check := func(refs []string, line int, where string) error {
		for _, ref := range refs {
			if _, ok := m.TaskByName(ref); !ok {
				return errors.Newf(errors.ErrReferenceInvalid, "%s references undeclared task %q", where, ref).
					WithDetail("line", line)
			}
		}
		return nil
	}
	for _, r := range m.Files {
		if err := check(r.Tasks, r.Line, "[Files] entry"); err != nil {
			return err
		}
	}
	for _, i := range m.Icons {
		if err := check(i.Tasks, i.Line, "[Icons] entry"); err != nil {
			return err
		}
	}
	for _, r := range m.Run {
		if err := check(r.Tasks, r.Line, "[Run] entry"); err != nil {
			return err
		}
	}
	return nil
}

// parseAppID accepts the braced GUID literal form ({XXXXXXXX-...}) as well
// as a bare UUID. The dialect escapes a literal { as {{, so a doubled brace
// prefix is tolerated.
func parseAppID(value string) (uuid.UUID, error) {
	s := strings.TrimRight(strings.TrimLeft(value, "{"), "}")
	return uuid.Parse(s)
}
