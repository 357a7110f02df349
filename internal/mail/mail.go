// Package mail delivers composed digest notifications over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
)

// Mailer sends a single email to a recipient. Implementations must be safe
// for sequential reuse across a batch run.
type Mailer interface {
	Send(ctx context.Context, displayName, email, subject, body string) error
}

// MailerError indicates a transport failure while delivering email.
type MailerError struct {
	Recipient string
	Err       error
}

func (e *MailerError) Error() string {
	return fmt.Sprintf("sending mail to %s: %v", e.Recipient, e.Err)
}

func (e *MailerError) Unwrap() error {
	return e.Err
}

// IsMailerError reports whether err (or any error in its chain) is a
// MailerError.
func IsMailerError(err error) bool {
	var mailerErr *MailerError
	return errors.As(err, &mailerErr)
}
