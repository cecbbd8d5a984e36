// Package manifest holds the in-memory model of an installer descriptor and
// the parser that builds it. The model is created once per build invocation
// and never mutated after load.
package manifest

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yoelcortes/setupforge/pkg/errors"
)

// PermissionPolicy is the ACL applied to an installed file or directory
type PermissionPolicy int

const (
	PermDefault PermissionPolicy = iota
	PermRestrictedUser
	PermEveryoneFull
)

// String returns the descriptor spelling of the policy
func (p PermissionPolicy) String() string {
	switch p {
	case PermRestrictedUser:
		return "users-full"
	case PermEveryoneFull:
		return "everyone-full"
	default:
		return "default"
	}
}

// ParsePermission maps a descriptor Permissions value to a policy
func ParsePermission(s string) (PermissionPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "users-full":
		return PermRestrictedUser, true
	case "everyone-full":
		return PermEveryoneFull, true
	case "":
		return PermDefault, true
	default:
		return PermDefault, false
	}
}

// VersioningPolicy controls install-time overwrite behavior. It is advisory
// metadata carried into the artifact; the installer runtime enforces it.
type VersioningPolicy int

const (
	// KeepIfNewer skips the copy when the installed file is not older
	KeepIfNewer VersioningPolicy = iota
	// Overwrite always replaces the installed file
	Overwrite
)

func (v VersioningPolicy) String() string {
	if v == Overwrite {
		return "overwrite"
	}
	return "keep-if-newer"
}

// Compression selects the bundle compression strategy
type Compression int

const (
	CompressionFast Compression = iota
	CompressionNone
	CompressionMax
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionMax:
		return "max"
	default:
		return "fast"
	}
}

// ParseCompression maps a CLI or [Setup] compression value to a strategy.
// The descriptor dialect's "lzma"/"lzma2" spellings map to max.
func ParseCompression(s string) (Compression, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return CompressionNone, true
	case "fast", "zip":
		return CompressionFast, true
	case "max", "lzma", "lzma2":
		return CompressionMax, true
	default:
		return CompressionFast, false
	}
}

// Metadata is the identity block from [Setup]. AppID, Name and Version are
// required; AppID never changes once assigned.
type Metadata struct {
	AppID              uuid.UUID
	Name               string
	Version            string
	Publisher          string
	PublisherURL       string
	SupportURL         string
	UpdatesURL         string
	DefaultDirName     string
	DefaultGroupName   string
	OutputBaseFilename string
	PrivilegesRequired string
	Compression        Compression
	CompressionSet     bool
	SolidCompression   bool
}

// Language is an opaque reference to an installer runtime message catalog
type Language struct {
	Name         string
	MessagesFile string
}

// Task is a user-togglable installation option declared in [Tasks]
type Task struct {
	Name             string
	Description      string
	GroupDescription string
	Flags            []string
}

// DefaultUnchecked reports whether the task starts unselected
func (t Task) DefaultUnchecked() bool {
	return hasFlag(t.Flags, "unchecked")
}

// DirEntry declares a directory that must exist with the given ACL before
// files are copied into it
type DirEntry struct {
	Path        string
	Permissions PermissionPolicy
	Line        int
}

// FileRule is one ordered copy instruction from [Files]. Rule order matters:
// when two rules resolve to the same destination, the later rule wins.
type FileRule struct {
	Source           string
	DestDir          string
	Permissions      PermissionPolicy
	Recurse          bool
	CreateAllSubdirs bool
	IgnoreVersion    bool
	Tasks            []string
	Line             int
}

// Versioning derives the install-time overwrite policy from the rule flags
func (r FileRule) Versioning() VersioningPolicy {
	if r.IgnoreVersion {
		return Overwrite
	}
	return KeepIfNewer
}

// ShortcutLocation is where an [Icons] entry is created
type ShortcutLocation int

const (
	LocationStartMenu ShortcutLocation = iota
	LocationDesktop
)

func (l ShortcutLocation) String() string {
	if l == LocationDesktop {
		return "desktop"
	}
	return "startmenu"
}

// Icon is a shortcut declaration from [Icons]
type Icon struct {
	Name       string
	Filename   string
	WorkingDir string
	Tasks      []string
	Line       int
}

// Location derives the shortcut location from the Name token prefix
func (i Icon) Location() ShortcutLocation {
	lower := strings.ToLower(i.Name)
	if strings.HasPrefix(lower, "{userdesktop}") || strings.HasPrefix(lower, "{commondesktop}") ||
		strings.HasPrefix(lower, "{autodesktop}") {
		return LocationDesktop
	}
	return LocationStartMenu
}

// DisplayName strips the location token from the Name
func (i Icon) DisplayName() string {
	name := i.Name
	if idx := strings.Index(name, "}"); strings.HasPrefix(name, "{") && idx > 0 {
		name = name[idx+1:]
	}
	return strings.TrimLeft(name, "\\/")
}

// RunEntry is a post-install action from [Run]
type RunEntry struct {
	Filename    string
	Description string
	Parameters  string
	Flags       []string
	Tasks       []string
	Line        int
}

// NoWait reports whether the installer should not block on the process
func (r RunEntry) NoWait() bool { return hasFlag(r.Flags, "nowait") }

// PostInstall reports whether the action runs on the finished page
func (r RunEntry) PostInstall() bool { return hasFlag(r.Flags, "postinstall") }

// SkipIfSilent reports whether the action is skipped in silent installs
func (r RunEntry) SkipIfSilent() bool { return hasFlag(r.Flags, "skipifsilent") }

// Warning is a non-fatal parse diagnostic (unknown directive, stray token)
type Warning struct {
	Line    int
	Code    errors.ErrorCode
	Message string
}

// Manifest is the fully parsed descriptor. Collections keep declaration
// order; nothing here is mutated after Parse returns.
type Manifest struct {
	Setup     Metadata
	Defines   map[string]string
	Languages []Language
	Tasks     []Task
	Dirs      []DirEntry
	Files     []FileRule
	Icons     []Icon
	Run       []RunEntry
	Warnings  []Warning
}

// TaskByName looks up a declared task, case-insensitively
func (m *Manifest) TaskByName(name string) (Task, bool) {
	for _, t := range m.Tasks {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Task{}, false
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}
