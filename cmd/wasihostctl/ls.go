package main

import (
	"encoding/csv"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"

	"github.com/andrewmd5/wasihost/internal/sys"
)

type descriptorRow struct {
	FD          int32  `csv:"fd"`
	GuestPath   string `csv:"guest_path"`
	Filetype    string `csv:"filetype"`
	Preopen     bool   `csv:"preopen"`
	RightsBase  string `csv:"rights_base"`
	RightsInher string `csv:"rights_inheriting"`
}

func listDescriptors(fs *sys.FSContext) []descriptorRow {
	var rows []descriptorRow
	fs.Range(func(id int32, e *sys.FileEntry) bool {
		rows = append(rows, descriptorRow{
			FD:          id,
			GuestPath:   e.GuestPath,
			Filetype:    filetypeName(e.Filetype),
			Preopen:     e.IsPreopen,
			RightsBase:  formatRights(e.RightsBase),
			RightsInher: formatRights(e.RightsInheriting),
		})
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].FD < rows[j].FD })
	return rows
}

func lsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ls <config.json>",
		Short: "bind a configuration's preopens and list the resulting descriptor table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := buildHost(args[0])
			if err != nil {
				return err
			}
			defer host.Close()

			rows := listDescriptors(host.FSContext())

			switch format {
			case "csv":
				w := csv.NewWriter(cmd.OutOrStdout())
				defer w.Flush()
				enc := csvutil.NewEncoder(w)
				for _, r := range rows {
					if err := enc.Encode(&r); err != nil {
						return err
					}
				}
				return nil
			case "", "table":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
				fmt.Fprintln(tw, "FD\tGUEST PATH\tTYPE\tPREOPEN\tRIGHTS BASE\tRIGHTS INHERITING")
				for _, r := range rows {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%v\t%s\t%s\n", r.FD, r.GuestPath, r.Filetype, r.Preopen, r.RightsBase, r.RightsInher)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown format %q, want table or csv", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table or csv")
	return cmd
}
