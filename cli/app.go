// ABOUTME: Lazily wired application services for CLI commands
// ABOUTME: Opens the database and builds repositories, notifier and reconciler on first use
package cli

import (
	"database/sql"
	"io"
	"strings"

	"github.com/whitefoxstudios/onboarding/config"
	"github.com/whitefoxstudios/onboarding/db"
	"github.com/whitefoxstudios/onboarding/notify"
	"github.com/whitefoxstudios/onboarding/onboarding"
	"go.uber.org/zap"
)

type app struct {
	version string
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
	format  string

	db          *sql.DB
	users       *db.UsersRepository
	posts       *db.PostsRepository
	options     *db.OptionsRepository
	submissions *db.SubmissionsRepository
}

// open connects to the database once per command.
func (a *app) open() error {
	if a.db != nil {
		return nil
	}
	database, err := db.OpenDatabase(a.cfg.DBPath)
	if err != nil {
		return err
	}
	a.db = database
	a.users = db.NewUsersRepository(database)
	a.posts = db.NewPostsRepository(database)
	a.options = db.NewOptionsRepository(database, a.cfg.NotificationDefaults())
	a.submissions = db.NewSubmissionsRepository(database)
	a.logger.Debug("database opened", zap.String("path", a.cfg.DBPath))
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) transport() notify.Transport {
	if strings.EqualFold(a.cfg.Mailer, config.MailerSMTP) {
		s := a.cfg.SMTP
		return notify.NewSMTPTransport(s.Host, s.Port, s.Username, s.Password)
	}
	return notify.NewLogTransport(a.logger)
}

func (a *app) reconciler() (*onboarding.Reconciler, error) {
	if err := a.open(); err != nil {
		return nil, err
	}
	activator := notify.NewActivator(a.users, a.transport(), a.cfg.SiteURL, a.logger)
	return onboarding.New(a.users, a.posts, a.options, activator,
		onboarding.WithSubmissionLog(a.submissions),
		onboarding.WithLogger(a.logger)), nil
}

func (a *app) directory() (*onboarding.Directory, error) {
	if err := a.open(); err != nil {
		return nil, err
	}
	return onboarding.NewDirectory(a.users, a.posts), nil
}
