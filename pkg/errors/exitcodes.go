package errors

// Process exit codes, one per failure kind so scripts can branch on them.
const (
	ExitOK          = 0
	ExitUnknown     = 1
	ExitManifest    = 2
	ExitReference   = 3
	ExitSource      = 4
	ExitCompression = 5
	ExitIO          = 6
)

// ExitCode returns the process exit code for an error
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch CodeOf(err) {
	case ErrManifestParse, ErrManifestInvalid:
		return ExitManifest
	case ErrReferenceInvalid:
		return ExitReference
	case ErrSourceNotFound:
		return ExitSource
	case ErrCompressionBackend:
		return ExitCompression
	case ErrIOWrite, ErrIORead:
		return ExitIO
	default:
		return ExitUnknown
	}
}
