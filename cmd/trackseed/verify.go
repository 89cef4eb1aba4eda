package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"trackseed/internal/usecase"
)

func newVerifyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check users for missing required fields and duplicate emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = a.Close(ctx)
			}()

			rep, err := a.Verify(cmd.Context())
			if err != nil {
				c.log.Error("verify failed", slog.String("error", err.Error()))
				return err
			}
			printReport(cmd.OutOrStdout(), rep)
			if !rep.OK() {
				return fmt.Errorf("verify: %d incomplete users, %d duplicate emails", len(rep.MissingFields), len(rep.DuplicateEmails))
			}
			return nil
		},
	}
}

func printReport(out io.Writer, rep usecase.Report) {
	fmt.Fprintf(out, "users: %d\n", rep.Users)
	colls := make([]string, 0, len(rep.Collections))
	for name := range rep.Collections {
		colls = append(colls, name)
	}
	sort.Strings(colls)
	for _, name := range colls {
		fmt.Fprintf(out, "collection %s: %d\n", name, rep.Collections[name])
	}
	ids := make([]string, 0, len(rep.MissingFields))
	for id := range rep.MissingFields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(out, "incomplete %s: missing %v\n", id, rep.MissingFields[id])
	}
	emails := make([]string, 0, len(rep.DuplicateEmails))
	for e := range rep.DuplicateEmails {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	for _, e := range emails {
		fmt.Fprintf(out, "duplicate %s: %d users\n", e, rep.DuplicateEmails[e])
	}
}
