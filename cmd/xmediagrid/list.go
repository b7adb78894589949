package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/alexballas/xmediagrid/assets"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

func listCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list [folder]",
		Short: "List scanned folders, or the items of one folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer cat.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if len(args) == 0 {
				libs, err := cat.Libraries(cmd.Context())
				if err != nil {
					return err
				}
				lipgloss.Fprintln(tw, headerStyle.Render("FOLDER")+"\t"+headerStyle.Render("ITEMS")+"\t"+headerStyle.Render("SCANNED"))
				for _, l := range libs {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", l.URI, l.Count, l.ScannedAt.Local().Format(time.DateTime))
				}
				return nil
			}

			key, _, err := libraryKey(args[0])
			if err != nil {
				return err
			}
			items, err := cat.Assets(cmd.Context(), key)
			if err != nil {
				return err
			}
			lipgloss.Fprintln(tw, headerStyle.Render("NAME")+"\t"+headerStyle.Render("KIND")+"\t"+headerStyle.Render("DURATION"))
			for _, a := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, a.Kind, orDash(assets.FormatDuration(a.Duration)))
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
