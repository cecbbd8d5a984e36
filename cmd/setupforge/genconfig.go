package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yoelcortes/setupforge/pkg/config"
)

func newGenconfigCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: "Write a setupforge.toml seeded with the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.ConfigFileName, "Where to write the config template")

	return cmd
}
