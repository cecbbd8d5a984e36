// Test Type: Unit Test
// Description: Tests for the errors package - coded errors and exit codes

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yoelcortes/setupforge/pkg/errors"
)

func TestSetupError(t *testing.T) {
	t.Run("error_message_includes_code", func(t *testing.T) {
		err := errors.New(errors.ErrSourceNotFound, "missing file")
		assert.Equal(t, "[SOURCE_NOT_FOUND] missing file", err.Error())
	})

	t.Run("wrap_preserves_cause", func(t *testing.T) {
		cause := fmt.Errorf("disk full")
		err := errors.Wrap(cause, errors.ErrIOWrite, "writing artifact")
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("wrap_nil_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrIOWrite, "nope"))
	})

	t.Run("is_matches_on_code", func(t *testing.T) {
		err := errors.Newf(errors.ErrManifestParse, "bad line %d", 7)
		assert.True(t, stderrors.Is(err, errors.New(errors.ErrManifestParse, "")))
		assert.False(t, stderrors.Is(err, errors.New(errors.ErrManifestInvalid, "")))
	})

	t.Run("code_of_wrapped_chain", func(t *testing.T) {
		inner := errors.New(errors.ErrSourceNotFound, "gone")
		outer := fmt.Errorf("resolving: %w", inner)
		assert.Equal(t, errors.ErrSourceNotFound, errors.CodeOf(outer))
	})

	t.Run("code_of_plain_error", func(t *testing.T) {
		assert.Equal(t, errors.ErrUnknown, errors.CodeOf(fmt.Errorf("boom")))
	})

	t.Run("with_detail", func(t *testing.T) {
		err := errors.New(errors.ErrManifestParse, "bad").WithDetail("line", 12)
		assert.Equal(t, 12, err.Details["line"])
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, errors.ExitOK},
		{errors.New(errors.ErrManifestParse, ""), errors.ExitManifest},
		{errors.New(errors.ErrManifestInvalid, ""), errors.ExitManifest},
		{errors.New(errors.ErrReferenceInvalid, ""), errors.ExitReference},
		{errors.New(errors.ErrSourceNotFound, ""), errors.ExitSource},
		{errors.New(errors.ErrCompressionBackend, ""), errors.ExitCompression},
		{errors.New(errors.ErrIOWrite, ""), errors.ExitIO},
		{errors.New(errors.ErrIORead, ""), errors.ExitIO},
		{fmt.Errorf("boom"), errors.ExitUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errors.ExitCode(tt.err))
	}
}
