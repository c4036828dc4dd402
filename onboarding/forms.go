// ABOUTME: Form kinds handled by the reconciler and their field ids
// ABOUTME: Maps inbound form names onto a closed set of workflows
package onboarding

import (
	"fmt"
	"strconv"
	"strings"
)

// FormKind selects the workflow for a submission.
type FormKind int

const (
	FormBillingContact FormKind = iota + 1
	FormProposalAgreement
)

const (
	FormNameBillingContact    = "Billing Contact"
	FormNameProposalAgreement = "Proposal Agreement"
)

// Submission field ids.
const (
	FieldBillingEmail = "billing_contact_email"
	FieldBillingName  = "billing_contact_name"
	FieldBillingPhone = "billing_contact_phone"

	FieldProposalEmail = "proposal_contact_email"
	FieldProposalName  = "proposal_contact_name"
	FieldUserID        = "user_id"
	FieldBusiness      = "business"
	FieldTotal         = "total"
	FieldDomain        = "domain"
	FieldPostID        = "post_id"
)

// ParseFormKind maps a form name to its kind.
func ParseFormKind(name string) (FormKind, error) {
	switch strings.TrimSpace(name) {
	case FormNameBillingContact:
		return FormBillingContact, nil
	case FormNameProposalAgreement:
		return FormProposalAgreement, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownForm, name)
	}
}

func (k FormKind) String() string {
	switch k {
	case FormBillingContact:
		return FormNameBillingContact
	case FormProposalAgreement:
		return FormNameProposalAgreement
	default:
		return "unknown"
	}
}

// parseID reads a positive integer id from a form field. Anything else, including
// the "false" a failed client-side lookup leaves behind, is no id.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
