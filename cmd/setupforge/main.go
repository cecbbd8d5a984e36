package main

import (
	"fmt"
	"os"

	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/style"
)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		renderer := style.NewRenderer()
		fmt.Fprintln(os.Stderr, renderer.RenderError(err))
		os.Exit(errors.ExitCode(err))
	}
}
