// ABOUTME: settings subcommands
// ABOUTME: Shows and updates the activation email settings stored in the database
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage activation email settings",
	}
	cmd.AddCommand(newSettingsShowCommand(a), newSettingsSetCommand(a))
	return cmd
}

func newSettingsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings, defaults filled in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			s, err := a.options.NotificationSettings(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(s, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "FROM NAME\t%s\n", s.From.Name)
				fmt.Fprintf(w, "FROM EMAIL\t%s\n", s.From.Email)
				fmt.Fprintf(w, "SUBJECT\t%s\n", s.Subject)
				fmt.Fprintf(w, "MESSAGE\n%s\n", s.Message)
			})
		},
	}
}

func newSettingsSetCommand(a *app) *cobra.Command {
	var fromName, fromEmail, subject, messageFile string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update stored settings; omitted flags keep their stored value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			ctx := cmd.Context()

			s, err := a.options.StoredNotificationSettings(ctx)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("from-name") {
				s.From.Name = fromName
			}
			if flags.Changed("from-email") {
				s.From.Email = fromEmail
			}
			if flags.Changed("subject") {
				s.Subject = subject
			}
			if messageFile != "" {
				data, err := os.ReadFile(messageFile)
				if err != nil {
					return fmt.Errorf("failed to read message: %w", err)
				}
				s.Message = string(data)
			}

			if err := a.options.SaveNotificationSettings(ctx, s); err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, "settings saved")
			return err
		},
	}

	cmd.Flags().StringVar(&fromName, "from-name", "", "sender name")
	cmd.Flags().StringVar(&fromEmail, "from-email", "", "sender address")
	cmd.Flags().StringVar(&subject, "subject", "", "email subject")
	cmd.Flags().StringVar(&messageFile, "message-file", "", "file with the message template")
	return cmd
}
