// ABOUTME: submit and replay subcommands
// ABOUTME: Feeds a form submission from flags or a JSON file through the reconciler
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/whitefoxstudios/onboarding/models"
)

func newSubmitCommand(a *app) *cobra.Command {
	var (
		form   string
		fields []string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Reconcile a form submission",
		Example: `  onboard submit --form "Billing Contact" --field billing_contact_email=a@b.com --field "billing_contact_name=Jane Doe"
  onboard submit --file submission.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, err := buildSubmission(form, fields, file)
			if err != nil {
				return err
			}
			rec, err := a.reconciler()
			if err != nil {
				return err
			}
			result, err := rec.Handle(cmd.Context(), sub)
			if err != nil {
				return err
			}
			return a.renderResult(result)
		},
	}

	cmd.Flags().StringVar(&form, "form", "", "form name")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field as id=value, repeatable")
	cmd.Flags().StringVar(&file, "file", "", "JSON file with form_name and fields")
	return cmd
}

// buildSubmission reads a file when given, then applies --form and --field on top of it.
func buildSubmission(form string, fields []string, file string) (models.Submission, error) {
	sub := models.Submission{Fields: map[string]string{}}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return sub, fmt.Errorf("failed to read %s: %w", file, err)
		}
		if err := json.Unmarshal(data, &sub); err != nil {
			return sub, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		if sub.Fields == nil {
			sub.Fields = map[string]string{}
		}
	}

	if form != "" {
		sub.FormName = form
	}
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return sub, fmt.Errorf("invalid --field %q, expected id=value", f)
		}
		sub.Fields[k] = v
	}

	if sub.FormName == "" {
		return sub, fmt.Errorf("--form or a file with form_name is required")
	}
	return sub, nil
}

func newReplayCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <submission-id>",
		Short: "Reconcile a logged submission again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.reconciler()
			if err != nil {
				return err
			}
			result, err := rec.Replay(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderResult(result)
		},
	}
}

func (a *app) renderResult(result *models.Result) error {
	return a.render(result, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "SUBMISSION\t%s\n", result.SubmissionID)
		fmt.Fprintf(w, "FORM\t%s\n", result.Form)

		var user *models.IdentityOutcome
		if result.Billing != nil {
			user = result.Billing.User
		}
		if result.Signee != nil {
			user = result.Signee.User
		}
		if user != nil && user.Identity != nil {
			state := "existing"
			if user.Created {
				state = "created"
			}
			fmt.Fprintf(w, "USER\t%d %s (%s)\n", user.Identity.ID, user.Identity.Email, state)
		}

		if result.Billing != nil {
			if c := result.Billing.Contact; c != nil {
				fmt.Fprintf(w, "CONTACT\t%d %s (created)\n", c.ID, c.Title)
			}
			for _, id := range result.Billing.Tagged {
				fmt.Fprintf(w, "CONTACT\t%d (tagged billing)\n", id)
			}
		}
		for _, c := range result.Contacts {
			fmt.Fprintf(w, "CONTACT\t%d %s\n", c.ID, c.Title)
		}
		for _, c := range result.Clients {
			fmt.Fprintf(w, "CLIENT\t%d %s %s\n", c.ID, c.Title, c.Status)
		}
	})
}
