package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yoelcortes/setupforge/pkg/bundle"
	"github.com/yoelcortes/setupforge/pkg/errors"
	"github.com/yoelcortes/setupforge/pkg/manifest"
	"github.com/yoelcortes/setupforge/pkg/style"
)

func newCheckCmd() *cobra.Command {
	var inspect string

	cmd := &cobra.Command{
		Use:   "check <descriptor>",
		Short: "Validate a descriptor without building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := style.NewRenderer()

			text, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, errors.ErrIORead, "reading descriptor %q", args[0])
			}
			m, err := manifest.Parse(string(text))
			if err != nil {
				return err
			}
			for _, w := range m.Warnings {
				fmt.Fprintln(os.Stderr, renderer.RenderWarning(w.Line, w.Message))
			}
			fmt.Printf("%s %s (%s): %d file rules, %d icons, %d run actions\n",
				m.Setup.Name, m.Setup.Version, m.Setup.AppID,
				len(m.Files), len(m.Icons), len(m.Run))

			if inspect != "" {
				contents, err := bundle.Read(inspect)
				if err != nil {
					return err
				}
				fmt.Printf("artifact %s: %s %s, %d payload files\n",
					inspect, contents.Metadata.Name, contents.Metadata.Version,
					len(contents.Payload))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inspect, "inspect", "", "Also open a built artifact and report its contents")

	return cmd
}
