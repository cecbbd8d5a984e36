package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yoelcortes/setupforge/pkg/build"
	"github.com/yoelcortes/setupforge/pkg/style"
)

func newBuildCmd() *cobra.Command {
	var (
		output      string
		sourceRoot  string
		compression string
		planOut     string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "build <descriptor>",
		Short: "Build an installer bundle from a descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			result, err := build.Run(ctx, build.Options{
				DescriptorPath: args[0],
				SourceRoot:     sourceRoot,
				OutputPath:     output,
				Compression:    compression,
				PlanOut:        planOut,
			})
			if err != nil {
				return err
			}

			renderer := style.NewRenderer()
			for _, w := range result.Warnings {
				fmt.Fprintln(os.Stderr, renderer.RenderWarning(w.Line, w.Message))
			}
			fmt.Println(renderer.RenderResult(result))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Artifact output path (default: from descriptor)")
	cmd.Flags().StringVar(&sourceRoot, "source-root", "", "Root for relative [Files] sources (default: descriptor dir)")
	cmd.Flags().StringVar(&compression, "compression", "", "Compression strategy: none|fast|max")
	cmd.Flags().StringVar(&planOut, "plan-out", "", "Write a YAML snapshot of the resolved file plan")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the build after this duration")

	return cmd
}
