// ABOUTME: Tests for the onboard command tree
// ABOUTME: Runs commands end to end against a temporary database
package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whitefoxstudios/onboarding/models"
)

type testEnv struct {
	dir    string
	dbPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ONBOARD_MAILER", "log")
	t.Setenv("ONBOARD_LOG_LEVEL", "error")
	return &testEnv{dir: dir, dbPath: filepath.Join(dir, "onboard.db")}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(e.dir, "none.yaml"), "--db-path", e.dbPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSubmitProposalAndLookups(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "submit", "--form", "Proposal Agreement",
		"--field", "proposal_contact_email=a@b.com",
		"--field", "proposal_contact_name=Jane Doe",
		"--field", "business=Acme",
		"--field", "total=1,000",
		"--field", "domain=acme.com",
		"--field", "post_id=42")
	require.NoError(t, err, out)

	var result models.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.SubmissionID)
	require.Len(t, result.Clients, 1)
	assert.Equal(t, "Acme", result.Clients[0].Title)

	out, err = env.run(t, "contacts", "list", "--email", "a@b.com")
	require.NoError(t, err)
	var contacts []models.Contact
	require.NoError(t, json.Unmarshal([]byte(out), &contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, 500.0, *contacts[0].Deposit)

	out, err = env.run(t, "clients", "list", "--title", "Acme")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "Signed"`)

	out, err = env.run(t, "users", "check-login", "a@b.com")
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)

	out, err = env.run(t, "submissions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, result.SubmissionID)

	out, err = env.run(t, "replay", result.SubmissionID)
	require.NoError(t, err)
	var replayed models.Result
	require.NoError(t, json.Unmarshal([]byte(out), &replayed))
	assert.Equal(t, result.Clients[0].ID, replayed.Clients[0].ID)
}

func TestSubmitFromFileWithTableOutput(t *testing.T) {
	env := newTestEnv(t)
	file := filepath.Join(env.dir, "billing.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"form_name": "Billing Contact",
		"fields": {"billing_contact_email": "pay@acme.com", "billing_contact_name": "Jane Doe"}
	}`), 0600))

	out, err := env.run(t, "--output", "table", "submit", "--file", file, "--field", "billing_contact_phone=555")
	require.NoError(t, err, out)
	assert.Contains(t, out, "FORM")
	assert.Contains(t, out, "Billing Contact")
	assert.Contains(t, out, "(created)")
}

func TestSubmitErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "submit")
	assert.ErrorContains(t, err, "--form")

	_, err = env.run(t, "submit", "--form", "Billing Contact", "--field", "novalue")
	assert.ErrorContains(t, err, "id=value")

	_, err = env.run(t, "submit", "--form", "Newsletter")
	assert.ErrorContains(t, err, "unknown form")

	out, err := env.run(t, "submissions", "list", "--status", "ignored")
	require.NoError(t, err)
	assert.Contains(t, out, "Newsletter")

	_, err = env.run(t, "--output", "yaml", "submissions", "list")
	assert.ErrorContains(t, err, "output format")
}

func TestSettingsShowAndSet(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("ONBOARD_SITE_NAME", "White Fox")
	msg := filepath.Join(env.dir, "message.txt")
	require.NoError(t, os.WriteFile(msg, []byte("Hi {{NAME}}"), 0600))

	out, err := env.run(t, "settings", "show")
	require.NoError(t, err)
	var s models.NotificationSettings
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "White Fox", s.From.Name)
	assert.Contains(t, s.Message, "{{LINK}}")

	_, err = env.run(t, "settings", "set", "--subject", "Welcome", "--message-file", msg)
	require.NoError(t, err)
	_, err = env.run(t, "settings", "set", "--from-email", "hello@example.com")
	require.NoError(t, err)

	out, err = env.run(t, "settings", "show")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "Welcome", s.Subject)
	assert.Equal(t, "Hi {{NAME}}", s.Message)
	assert.Equal(t, "hello@example.com", s.From.Email)
	assert.Equal(t, "White Fox", s.From.Name)
}

func TestBuildSubmission(t *testing.T) {
	sub, err := buildSubmission("Billing Contact", []string{"a=1", "b=x=y", "c="}, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, sub.Fields)

	_, err = buildSubmission("", nil, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestUseTable(t *testing.T) {
	var buf bytes.Buffer
	table, err := useTable(formatAuto, &buf)
	require.NoError(t, err)
	assert.False(t, table)

	table, err = useTable(formatTable, &buf)
	require.NoError(t, err)
	assert.True(t, table)
}
