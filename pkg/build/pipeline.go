// Package build orchestrates one synchronous build invocation:
// parse -> resolve -> emit -> bundle. All state is owned by the invocation
// and nothing outlives it; a failure at any stage deletes the partial
// artifact and surfaces a coded error.
package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yoelcortes/setupforge/pkg/actions"
	"github.com/yoelcortes/setupforge/pkg/bundle"
	"github.com/yoelcortes/setupforge/pkg/config"
	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/logging"
	"github.com/yoelcortes/setupforge/pkg/manifest"
	"github.com/yoelcortes/setupforge/pkg/paths"
	"github.com/yoelcortes/setupforge/pkg/plan"
)

// Options configures a build invocation
type Options struct {
	// DescriptorPath is the .iss descriptor to compile
	DescriptorPath string

	// SourceRoot anchors relative [Files] sources; defaults to the
	// descriptor's directory
	SourceRoot string

	// OutputPath overrides the computed artifact path
	OutputPath string

	// Compression overrides both the config default and the descriptor's
	// [Setup] Compression; empty means no override
	Compression string

	// PlanOut, when set, writes a YAML snapshot of the resolved plan
	PlanOut string
}

// Result describes a finished build
type Result struct {
	ArtifactPath string
	State        State
	Metadata     manifest.Metadata
	Plan         *plan.Plan
	Warnings     []manifest.Warning
	Duration     time.Duration
}

// Run performs the whole build synchronously. The context bounds the
// invocation; cancellation between stages aborts and cleans up.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("build")
	start := time.Now()
	state := StateInit

	fail := func(err error) (*Result, error) {
		logger.Error().Err(err).Stringer("state", state).Msg("Build failed")
		return &Result{State: StateFailed, Duration: time.Since(start)}, err
	}

	descriptorDir := filepath.Dir(opts.DescriptorPath)

	cfg, err := config.Load(descriptorDir)
	if err != nil {
		return fail(err)
	}

	// Parse
	text, err := os.ReadFile(opts.DescriptorPath)
	if err != nil {
		return fail(errors.Wrapf(err, errors.ErrIORead, "reading descriptor %q", opts.DescriptorPath))
	}
	m, err := manifest.Parse(string(text))
	if err != nil {
		return fail(err)
	}
	state = StateParsed

	if err := ctx.Err(); err != nil {
		return fail(errors.Wrap(err, errors.ErrInternal, "build canceled"))
	}

	// Resolve
	srcRoot := opts.SourceRoot
	if srcRoot == "" {
		srcRoot = descriptorDir
	}
	resolver := paths.NewResolver(m.Setup)
	for _, rule := range m.Files {
		for _, tok := range resolver.Unknown(rule.DestDir) {
			logger.Warn().Str("token", tok).Int("line", rule.Line).Msg("Unknown location token in DestDir")
		}
	}
	filePlan, err := plan.Resolve(m.Files, srcRoot, resolver)
	if err != nil {
		return fail(err)
	}
	state = StateResolved

	if opts.PlanOut != "" {
		if err := filePlan.WriteSnapshot(opts.PlanOut); err != nil {
			return fail(err)
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(errors.Wrap(err, errors.ErrInternal, "build canceled"))
	}

	// Bundle
	strategy := chooseCompression(opts, cfg, m, logger)
	outPath, err := artifactPath(opts, cfg, m, descriptorDir)
	if err != nil {
		return fail(err)
	}

	builder, err := bundle.NewBuilder(outPath, strategy)
	if err != nil {
		return fail(err)
	}

	if err := writeBundle(builder, m, resolver, filePlan); err != nil {
		builder.Abort()
		return fail(err)
	}
	state = StateBuilt

	if err := builder.Close(); err != nil {
		return fail(err)
	}
	state = StateFinalized

	logger.Info().
		Str("artifact", outPath).
		Int("files", len(filePlan.Entries)).
		Dur("elapsed", time.Since(start)).
		Msg("Build finished")

	return &Result{
		ArtifactPath: outPath,
		State:        state,
		Metadata:     m.Setup,
		Plan:         filePlan,
		Warnings:     m.Warnings,
		Duration:     time.Since(start),
	}, nil
}

// writeBundle fills the artifact: metadata segment first (the action block
// depends on the segment being open), then the payload
func writeBundle(b *bundle.Builder, m *manifest.Manifest, pr *paths.Resolver, p *plan.Plan) error {
	if err := b.WriteMetadata(bundle.NewMetadata(m.Setup)); err != nil {
		return err
	}
	actionBlock, err := actions.Emit(m, pr)
	if err != nil {
		return err
	}
	if err := b.WriteActions(actionBlock); err != nil {
		return err
	}
	if err := b.WritePlan(p); err != nil {
		return err
	}
	return b.AddFiles(p)
}

// chooseCompression applies the precedence CLI > descriptor > config
func chooseCompression(opts Options, cfg *config.Config, m *manifest.Manifest, logger zerolog.Logger) manifest.Compression {
	if opts.Compression != "" {
		c, ok := manifest.ParseCompression(opts.Compression)
		if ok {
			return c
		}
		logger.Warn().Str("value", opts.Compression).Msg("Unknown compression override ignored")
	}
	if m.Setup.SolidCompression {
		return manifest.CompressionMax
	}
	if m.Setup.CompressionSet {
		return m.Setup.Compression
	}
	if c, ok := manifest.ParseCompression(cfg.Build.Compression); ok {
		return c
	}
	return manifest.CompressionFast
}

// artifactPath computes where the bundle is written and ensures the parent
// directory exists
func artifactPath(opts Options, cfg *config.Config, m *manifest.Manifest, descriptorDir string) (string, error) {
	if opts.OutputPath != "" {
		if err := ensureDir(filepath.Dir(opts.OutputPath)); err != nil {
			return "", err
		}
		return opts.OutputPath, nil
	}

	base := m.Setup.OutputBaseFilename
	if base == "" {
		base = m.Setup.Name + "-" + m.Setup.Version
	}
	ext := cfg.Build.Extension
	if ext == "" {
		ext = ".sfpkg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	dir := cfg.Build.OutputDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(descriptorDir, dir)
	}
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, base+ext), nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIOWrite, "creating output directory %q", dir)
	}
	return nil
}
