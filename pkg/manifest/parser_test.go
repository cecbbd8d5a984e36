// Test Type: Unit Test
// Description: Tests for the manifest package - descriptor parser

package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/manifest"
)

const demoDescriptor = `
; Sample descriptor
#define MyAppName "Demo"
#define MyAppVersion "1.0"

[Setup]
AppId={{AE889C70-CE01-4AB1-8A95-C510F8415553}
AppName={#MyAppName}
AppVersion={#MyAppVersion}
AppPublisher=Demo Corp
DefaultDirName={autopf}\Demo
DefaultGroupName=Demo
OutputBaseFilename=demo-setup
Compression=lzma
SolidCompression=yes

[Languages]
Name: "english"; MessagesFile: "compiler:Default.isl"

[Tasks]
Name: "desktopicon"; Description: "Create a desktop icon"; GroupDescription: "Additional icons:"; Flags: unchecked

[Dirs]
Name: "{app}\data"; Permissions: everyone-full

[Files]
Source: "src\*"; DestDir: "{app}"; Flags: ignoreversion recursesubdirs createallsubdirs; Permissions: users-full

[Icons]
Name: "{group}\{#MyAppName}"; Filename: "{app}\Demo.exe"
Name: "{commondesktop}\{#MyAppName}"; Filename: "{app}\Demo.exe"; Tasks: desktopicon

[Run]
Filename: "{app}\Demo.exe"; Description: "Launch Demo"; Flags: nowait postinstall skipifsilent
`

func TestParse(t *testing.T) {
	t.Run("full_descriptor", func(t *testing.T) {
		m, err := manifest.Parse(demoDescriptor)
		require.NoError(t, err)
		require.NotNil(t, m)

		assert.Equal(t, "ae889c70-ce01-4ab1-8a95-c510f8415553", m.Setup.AppID.String())
		assert.Equal(t, "Demo", m.Setup.Name)
		assert.Equal(t, "1.0", m.Setup.Version)
		assert.Equal(t, "Demo Corp", m.Setup.Publisher)
		assert.Equal(t, manifest.CompressionMax, m.Setup.Compression)
		assert.True(t, m.Setup.SolidCompression)
		assert.Equal(t, "demo-setup", m.Setup.OutputBaseFilename)

		require.Len(t, m.Languages, 1)
		assert.Equal(t, "english", m.Languages[0].Name)

		require.Len(t, m.Tasks, 1)
		assert.Equal(t, "desktopicon", m.Tasks[0].Name)
		assert.True(t, m.Tasks[0].DefaultUnchecked())

		require.Len(t, m.Dirs, 1)
		assert.Equal(t, manifest.PermEveryoneFull, m.Dirs[0].Permissions)

		require.Len(t, m.Files, 1)
		rule := m.Files[0]
		assert.Equal(t, `src\*`, rule.Source)
		assert.Equal(t, "{app}", rule.DestDir)
		assert.True(t, rule.Recurse)
		assert.True(t, rule.CreateAllSubdirs)
		assert.True(t, rule.IgnoreVersion)
		assert.Equal(t, manifest.PermRestrictedUser, rule.Permissions)
		assert.Equal(t, manifest.Overwrite, rule.Versioning())

		require.Len(t, m.Icons, 2)
		assert.Equal(t, manifest.LocationStartMenu, m.Icons[0].Location())
		assert.Equal(t, manifest.LocationDesktop, m.Icons[1].Location())
		assert.Equal(t, []string{"desktopicon"}, m.Icons[1].Tasks)
		assert.Equal(t, "Demo", m.Icons[1].DisplayName())

		require.Len(t, m.Run, 1)
		run := m.Run[0]
		assert.True(t, run.NoWait())
		assert.True(t, run.PostInstall())
		assert.True(t, run.SkipIfSilent())

		assert.Empty(t, m.Warnings)
	})

	t.Run("uppercase_directives", func(t *testing.T) {
		m, err := manifest.Parse(`
[SETUP]
APPID=AE889C70-CE01-4AB1-8A95-C510F8415553
APPNAME=Demo
APPVERSION=1.0
`)
		require.NoError(t, err)
		assert.Equal(t, "Demo", m.Setup.Name)
	})

	t.Run("values_preserve_case", func(t *testing.T) {
		m, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=DeMo App
AppVersion=1.0-RC1
`)
		require.NoError(t, err)
		assert.Equal(t, "DeMo App", m.Setup.Name)
		assert.Equal(t, "1.0-RC1", m.Setup.Version)
	})

	t.Run("missing_appid_is_fatal", func(t *testing.T) {
		m, err := manifest.Parse(`
[Setup]
AppName=Demo
AppVersion=1.0
`)
		require.Error(t, err)
		assert.Nil(t, m)
		assert.Equal(t, errors.ErrManifestInvalid, errors.CodeOf(err))
	})

	t.Run("missing_appversion_is_fatal", func(t *testing.T) {
		m, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
`)
		require.Error(t, err)
		assert.Nil(t, m)
		assert.Equal(t, errors.ErrManifestInvalid, errors.CodeOf(err))
	})

	t.Run("invalid_appid", func(t *testing.T) {
		_, err := manifest.Parse(`
[Setup]
AppId=not-a-uuid
AppName=Demo
AppVersion=1.0
`)
		require.Error(t, err)
		assert.Equal(t, errors.ErrManifestParse, errors.CodeOf(err))
	})

	t.Run("unknown_section_warns", func(t *testing.T) {
		m, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
AppVersion=1.0

[Registry]
Root: HKLM; Subkey: "Software\Demo"
`)
		require.NoError(t, err)
		require.NotEmpty(t, m.Warnings)
		assert.Contains(t, m.Warnings[0].Message, "unknown section")
	})

	t.Run("unknown_setup_key_warns", func(t *testing.T) {
		m, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
AppVersion=1.0
WizardStyle=modern
`)
		require.NoError(t, err)
		require.Len(t, m.Warnings, 1)
		assert.Contains(t, m.Warnings[0].Message, "WizardStyle")
		assert.Equal(t, 6, m.Warnings[0].Line)
		assert.Equal(t, errors.ErrUnknownDirective, m.Warnings[0].Code)
	})

	t.Run("undeclared_task_reference", func(t *testing.T) {
		m, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
AppVersion=1.0

[Icons]
Name: "{commondesktop}\Demo"; Filename: "{app}\Demo.exe"; Tasks: desktopicon
`)
		require.Error(t, err)
		assert.Nil(t, m)
		assert.Equal(t, errors.ErrReferenceInvalid, errors.CodeOf(err))
	})

	t.Run("quoted_value_with_semicolon", func(t *testing.T) {
		m, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
AppVersion=1.0

[Run]
Filename: "{app}\Demo.exe"; Description: "launch; then exit"; Flags: nowait
`)
		require.NoError(t, err)
		require.Len(t, m.Run, 1)
		assert.Equal(t, "launch; then exit", m.Run[0].Description)
	})

	t.Run("doubled_quotes_escape", func(t *testing.T) {
		m, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
AppVersion=1.0

[Run]
Filename: "{app}\Demo.exe"; Description: "say ""hello"""
`)
		require.NoError(t, err)
		assert.Equal(t, `say "hello"`, m.Run[0].Description)
	})

	t.Run("malformed_setup_line", func(t *testing.T) {
		_, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
AppVersion=1.0
this is not a directive
`)
		require.Error(t, err)
		assert.Equal(t, errors.ErrManifestParse, errors.CodeOf(err))
	})

	t.Run("files_entry_missing_source", func(t *testing.T) {
		_, err := manifest.Parse(`
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
AppVersion=1.0

[Files]
DestDir: "{app}"
`)
		require.Error(t, err)
		assert.Equal(t, errors.ErrManifestParse, errors.CodeOf(err))
	})

	t.Run("crlf_descriptor", func(t *testing.T) {
		m, err := manifest.Parse("[Setup]\r\nAppId=AE889C70-CE01-4AB1-8A95-C510F8415553\r\nAppName=Demo\r\nAppVersion=1.0\r\n")
		require.NoError(t, err)
		assert.Equal(t, "Demo", m.Setup.Name)
	})

	t.Run("comments_ignored", func(t *testing.T) {
		m, err := manifest.Parse(`
; comment line
// also a comment
[Setup]
AppId=AE889C70-CE01-4AB1-8A95-C510F8415553
AppName=Demo
AppVersion=1.0
`)
		require.NoError(t, err)
		assert.Empty(t, m.Warnings)
	})
}
