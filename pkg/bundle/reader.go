package bundle

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/plan"
)

// Contents is the parsed view of an artifact used by inspection and tests
type Contents struct {
	Metadata Metadata
	Actions  []byte
	Plan     plan.Plan

	// Payload maps bundle-relative destination paths to file sizes
	Payload map[string]int64
}

// Read opens an artifact and parses its metadata segment and payload
// listing. Payload contents are not extracted, only indexed.
func Read(path string) (*Contents, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIORead, "opening artifact %q", path)
	}
	defer func() { _ = file.Close() }()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCompressionBackend, "decompressing %q", path)
	}
	defer func() { _ = gz.Close() }()

	contents := &Contents{Payload: make(map[string]int64)}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCompressionBackend, "reading archive %q", path)
		}

		switch {
		case hdr.Name == MetadataPath:
			if err := decodeJSON(tr, &contents.Metadata); err != nil {
				return nil, err
			}
		case hdr.Name == ActionsPath:
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrIORead, "reading action block")
			}
			contents.Actions = data
		case hdr.Name == PlanPath:
			if err := decodeJSON(tr, &contents.Plan); err != nil {
				return nil, err
			}
		case strings.HasPrefix(hdr.Name, PayloadRoot+"/"):
			dest := strings.TrimPrefix(hdr.Name, PayloadRoot+"/")
			contents.Payload[dest] = hdr.Size
		}
	}

	return contents, nil
}

func decodeJSON(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, errors.ErrIORead, "reading metadata segment")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "decoding metadata segment")
	}
	return nil
}
