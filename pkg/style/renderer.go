package style

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/yoelcortes/setupforge/pkg/build"
)

// Renderer writes user-facing build output to the terminal. Plain mode
// (no color, no symbols) is used when stdout is not a terminal.
type Renderer struct {
	plain bool
}

// NewRenderer picks rich or plain output based on the terminal
func NewRenderer() *Renderer {
	return &Renderer{plain: !isatty.IsTerminal(os.Stdout.Fd())}
}

// RenderResult prints the one-line build summary
func (r *Renderer) RenderResult(res *build.Result) string {
	line := fmt.Sprintf("built %s (%d files, %s) in %s",
		res.ArtifactPath,
		len(res.Plan.Entries),
		humanSize(res.Plan.TotalSize()),
		res.Duration.Round(time.Millisecond),
	)
	if r.plain {
		return line
	}
	return pterm.Success.Sprint(line)
}

// RenderError prints a one-line error naming the kind and location
func (r *Renderer) RenderError(err error) string {
	msg := fmt.Sprintf("Error: %v", err)
	if r.plain {
		return msg
	}
	return ErrorStyle.Render(msg)
}

// RenderWarning prints a descriptor warning with its line number
func (r *Renderer) RenderWarning(line int, msg string) string {
	text := fmt.Sprintf("warning: line %d: %s", line, msg)
	if r.plain {
		return text
	}
	return WarningStyle.Render(text)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
