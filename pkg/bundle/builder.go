// Package bundle writes and reads the installer artifact: a gzip-compressed
// tar stream with a metadata segment (.setup/) followed by the file payload.
// The builder is a thin adapter over the archive backend; it does no
// resolution or validation of its own.
package bundle

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/logging"
	"github.com/yoelcortes/setupforge/pkg/manifest"
	"github.com/yoelcortes/setupforge/pkg/plan"
)

// epoch is the fixed timestamp stamped on every archive entry so that two
// builds from identical inputs are byte-identical.
var epoch = time.Unix(0, 0)

// Builder assembles one artifact. Metadata segment entries must be written
// before AddFiles; Close finalizes, Abort removes the partial output.
type Builder struct {
	path   string
	file   *os.File
	gz     *gzip.Writer
	tw     *tar.Writer
	logger zerolog.Logger
	closed bool
}

// NewBuilder creates the output file and the compression pipeline for the
// chosen strategy
func NewBuilder(outPath string, strategy manifest.Compression) (*Builder, error) {
	file, err := os.Create(outPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOWrite, "cannot create artifact %q", outPath)
	}

	level := gzip.BestSpeed
	switch strategy {
	case manifest.CompressionNone:
		level = gzip.NoCompression
	case manifest.CompressionMax:
		level = gzip.BestCompression
	}

	gz, err := gzip.NewWriterLevel(file, level)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(outPath)
		return nil, errors.Wrap(err, errors.ErrCompressionBackend, "initializing compressor")
	}

	return &Builder{
		path:   outPath,
		file:   file,
		gz:     gz,
		tw:     tar.NewWriter(gz),
		logger: logging.GetLogger("bundle.builder"),
	}, nil
}

// Path returns the output artifact path
func (b *Builder) Path() string { return b.path }

// WriteMetadata embeds the package metadata document
func (b *Builder) WriteMetadata(meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "marshaling metadata")
	}
	return b.writeEntry(MetadataPath, data, 0644)
}

// WriteActions embeds the serialized action block
func (b *Builder) WriteActions(xml []byte) error {
	return b.writeEntry(ActionsPath, xml, 0644)
}

// WritePlan embeds the resolved file plan with its per-entry policies
func (b *Builder) WritePlan(p *plan.Plan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "marshaling plan")
	}
	return b.writeEntry(PlanPath, data, 0644)
}

// AddFiles streams every planned file into the payload, in plan order
func (b *Builder) AddFiles(p *plan.Plan) error {
	for _, e := range p.Entries {
		if err := b.addFile(e); err != nil {
			return err
		}
	}
	b.logger.Debug().Int("files", len(p.Entries)).Msg("Payload written")
	return nil
}

func (b *Builder) addFile(e plan.Entry) error {
	src, err := os.Open(e.Source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIORead, "opening %q", e.Source)
	}
	defer func() { _ = src.Close() }()

	mode := int64(0644)
	if e.Executable {
		mode = 0755
	}
	hdr := &tar.Header{
		Name:    path.Join(PayloadRoot, e.Dest),
		Mode:    mode,
		Size:    e.Size,
		ModTime: epoch,
		Format:  tar.FormatPAX,
	}
	if err := b.tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, errors.ErrCompressionBackend, "writing header for %q", e.Dest)
	}
	if _, err := io.Copy(b.tw, src); err != nil {
		return errors.Wrapf(err, errors.ErrCompressionBackend, "writing %q", e.Dest)
	}
	return nil
}

func (b *Builder) writeEntry(name string, data []byte, mode int64) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    mode,
		Size:    int64(len(data)),
		ModTime: epoch,
		Format:  tar.FormatPAX,
	}
	if err := b.tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, errors.ErrCompressionBackend, "writing header for %q", name)
	}
	if _, err := b.tw.Write(data); err != nil {
		return errors.Wrapf(err, errors.ErrCompressionBackend, "writing %q", name)
	}
	return nil
}

// Close flushes and finalizes the artifact. On any failure the partial
// output is removed before the error is returned.
func (b *Builder) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	if err := b.tw.Close(); err != nil {
		b.discard()
		return errors.Wrap(err, errors.ErrCompressionBackend, "finalizing archive")
	}
	if err := b.gz.Close(); err != nil {
		b.discard()
		return errors.Wrap(err, errors.ErrCompressionBackend, "finalizing compressor")
	}
	if err := b.file.Close(); err != nil {
		_ = os.Remove(b.path)
		return errors.Wrapf(err, errors.ErrIOWrite, "closing artifact %q", b.path)
	}
	return nil
}

// Abort discards the build and removes the partial artifact. Safe to call
// after Close, in which case it does nothing.
func (b *Builder) Abort() {
	if b.closed {
		return
	}
	b.closed = true
	b.discard()
	b.logger.Debug().Str("path", b.path).Msg("Partial artifact removed")
}

func (b *Builder) discard() {
	_ = b.tw.Close()
	_ = b.gz.Close()
	_ = b.file.Close()
	_ = os.Remove(b.path)
}
