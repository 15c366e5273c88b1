package app

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
)

var (
	email     *mail.Client
	onceEmail sync.Once
)

func SMTP() *mail.Client {
	onceEmail.Do(func() {
		port, err := strconv.Atoi(os.Getenv("EMAIL_PORT"))
		if err != nil {
			port = mail.DefaultPortTLS
			slog.Warn(fmt.Sprintf("The SMTP port '%s' is invalid. The port %d will be used instead.", os.Getenv("EMAIL_PORT"), port))
		}

		tlsPolicy := mail.TLSMandatory
		smtpAuth := mail.SMTPAuthCramMD5

		useTls, err := strconv.ParseBool(os.Getenv("EMAIL_TLS"))
		if err != nil {
			useTls = true
		}

		if !useTls {
			tlsPolicy = mail.TLSOpportunistic
			smtpAuth = mail.SMTPAuthLogin
		}

		// A stuck SMTP connection must fail the task, not hold an asynq worker.
		timeout, err := time.ParseDuration(os.Getenv("EMAIL_TIMEOUT"))
		if err != nil || timeout <= 0 {
			timeout = 15 * time.Second
		}

		client, err := mail.NewClient(
			os.Getenv("EMAIL_HOST"),
			mail.WithSMTPAuth(smtpAuth),
			mail.WithTLSPortPolicy(tlsPolicy),
			mail.WithPort(port),
			mail.WithTimeout(timeout),
			mail.WithUsername(os.Getenv("EMAIL_USERNAME")),
			mail.WithPassword(os.Getenv("EMAIL_PASSWORD")),
		)
		if err != nil {
			slog.Error(fmt.Sprintf("Could not create email client: %v", err))
			os.Exit(1)
		}

		email = client
	})

	return email
}
