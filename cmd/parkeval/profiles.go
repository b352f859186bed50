package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/parkeval/internal/profile"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List and inspect evaluation profiles",
	}
	cmd.AddCommand(newProfilesListCmd(), newProfilesShowCmd())
	return cmd
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := profile.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				p, err := profile.LoadBuiltin(name)
				if err != nil {
					return exitError(3, "failed to load profile: %v", err)
				}
				fmt.Fprintf(out, "%s\t%s\n", name, firstLine(p.Description))
			}
			return nil
		},
	}
}

func newProfilesShowCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Describe a profile's criteria, weights, bands and decision rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "park"
			if len(args) == 1 {
				name = args[0]
			}
			p, err := loadProfile(name, file)
			if err != nil {
				return exitError(3, "failed to load profile: %v", err)
			}
			if err := p.Validate(); err != nil {
				return exitError(5, "%v", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), profile.Describe(p))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Describe a profile YAML file instead of a built-in")
	return cmd
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
