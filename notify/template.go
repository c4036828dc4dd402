// ABOUTME: Activation email template rendering
// ABOUTME: Substitutes the NAME, KEY, LINK and EMAIL placeholders in admin-configured text
package notify

import (
	"net/url"
	"strings"

	"github.com/whitefoxstudios/onboarding/models"
)

// Placeholders recognised in activation templates. Matching is exact and case sensitive.
const (
	TokenName  = "{{NAME}}"
	TokenKey   = "{{KEY}}"
	TokenLink  = "{{LINK}}"
	TokenEmail = "{{EMAIL}}"
)

const DefaultSubject = "Activate Your New Account On: "

const DefaultMessage = `Hey {{NAME}},

A new client portal account has been created for you.

To use your new client portal account you must first set your password by visiting the following address: {{LINK}}

Your login username is your email {{EMAIL}}.

You will be able to set your own password after activating.

Once logged in you'll be able to view and manage your company and project information, follow project progress and send us content, media and assets for your project.

Thanks, talk soon.`

// ActivationLink builds the password reset URL for a login and reset key.
func ActivationLink(siteURL, key, login string) string {
	return strings.TrimRight(siteURL, "/") + "/wp-login.php?action=rp&key=" + key + "&login=" + rawURLEncode(login)
}

// RenderTemplate replaces the activation placeholders in template. Values are inserted
// as they are, without escaping.
func RenderTemplate(identity *models.Identity, key, siteURL, template string) string {
	r := strings.NewReplacer(
		TokenName, identity.FirstName,
		TokenKey, key,
		TokenLink, ActivationLink(siteURL, key, identity.Login),
		TokenEmail, identity.Email,
	)
	return r.Replace(template)
}

// rawURLEncode percent-encodes everything outside the unreserved set, spaces as %20.
func rawURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
