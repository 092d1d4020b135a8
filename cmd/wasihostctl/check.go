package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrewmd5/wasihost/internal/pathmap"
)

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <config.json>",
		Short: "validate a wasihost configuration and print its resolved preopen table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := buildHost(args[0])
			if err != nil {
				return err
			}
			defer host.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
			fmt.Fprintf(cmd.OutOrStdout(), "  host root: %s\n", host.Mapper().HostRoot())
			for _, m := range host.Mapper().Mappings() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s -> %s (%s)\n", m.GuestPrefix, m.HostPrefix, accessString(m.Access))
			}
			return nil
		},
	}
}

func accessString(a pathmap.AccessMode) string {
	switch a {
	case pathmap.AccessRead:
		return "r"
	case pathmap.AccessWrite:
		return "w"
	default:
		return "rw"
	}
}
