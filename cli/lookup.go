// ABOUTME: Read-only lookup subcommands
// ABOUTME: users check-login, contacts list, clients list and submissions list
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Look up users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check-login <login>",
		Short: "Print the id of the user with this login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.directory()
			if err != nil {
				return err
			}
			id, ok, err := dir.CheckLogin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := map[string]any{"success": ok, "data": false}
			if ok {
				out["data"] = id
			}
			return a.render(out, func(w *tabwriter.Writer) {
				if ok {
					fmt.Fprintf(w, "%s\t%d\n", args[0], id)
					return
				}
				fmt.Fprintf(w, "%s\tnot found\n", args[0])
			})
		},
	})
	return cmd
}

func newContactsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Look up contact records",
	}

	var email string
	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts recorded for an email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := a.directory()
			if err != nil {
				return err
			}
			contacts, err := dir.Contacts(cmd.Context(), email)
			if err != nil {
				return err
			}
			return a.render(contacts, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY\tTOTAL\tDEPOSIT\tTAGS")
				for _, c := range contacts {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						c.ID, c.Title, c.Email, c.Company, amount(c.Total), amount(c.Deposit), strings.Join(c.Tags, ", "))
				}
			})
		},
	}
	list.Flags().StringVar(&email, "email", "", "contact email (required)")
	_ = list.MarkFlagRequired("email")

	cmd.AddCommand(list)
	return cmd
}

func amount(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func newClientsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Look up client records",
	}

	var title string
	list := &cobra.Command{
		Use:   "list",
		Short: "List clients with a company name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := a.directory()
			if err != nil {
				return err
			}
			clients, err := dir.Clients(cmd.Context(), title)
			if err != nil {
				return err
			}
			return a.render(clients, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSTARTED\tCONTACTS")
				for _, c := range clients {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\n", c.ID, c.Title, c.Status, c.Started, c.ContactIDs)
				}
			})
		},
	}
	list.Flags().StringVar(&title, "title", "", "company name (required)")
	_ = list.MarkFlagRequired("title")

	cmd.AddCommand(list)
	return cmd
}

func newSubmissionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect the submission log",
	}

	var status string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent submissions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			records, err := a.submissions.List(cmd.Context(), status, limit)
			if err != nil {
				return err
			}
			return a.render(records, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tFORM\tSTATUS\tRECEIVED\tERROR")
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						r.ID, r.FormName, r.Status, r.ReceivedAt.Format("2006-01-02 15:04"), r.Error)
				}
			})
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status: received, processed, failed or ignored")
	list.Flags().IntVar(&limit, "limit", 50, "maximum rows")

	cmd.AddCommand(list)
	return cmd
}
