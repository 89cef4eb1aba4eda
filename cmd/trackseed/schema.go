package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trackseed/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the declared document schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSchema(cmd.OutOrStdout(), schema.Default())
		},
	}
}

func printSchema(out io.Writer, r *schema.Registry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, e := range r.Entities() {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		suffix := ""
		if e.Timestamps {
			suffix = " +timestamps"
		}
		fmt.Fprintf(tw, "%s (%s)%s\n", e.Name, e.Collection, suffix)
		for _, f := range e.Fields {
			var flags []string
			if f.Required {
				flags = append(flags, "required")
			}
			if f.Ref != "" {
				flags = append(flags, "ref="+f.Ref)
			}
			if f.Rule != "" {
				flags = append(flags, "rule="+f.Rule)
			}
			hint := string(f.Hint)
			if hint == "" {
				hint = "-"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", f.Name, f.Type, hint, strings.Join(flags, ","))
		}
	}
	return tw.Flush()
}
