// Package notifier runs the periodic job that mails customers with
// overdue loans.
package notifier

import (
	"context"
	"time"

	"github.com/netolib/library-service/internal/core"
	"github.com/netolib/library-service/internal/mailer"
	"github.com/netolib/library-service/internal/observability"
)

const (
	// DefaultSubject and DefaultMessage are what customers receive unless
	// the deployment overrides them.
	DefaultSubject = "Livro com empréstimo em atraso"
	DefaultMessage = "Atenção! Você tem um empréstimo atrasado. Favor devolver o livro o mais rápido possível."

	defaultInterval = 24 * time.Hour

	logMsgRunStarted     = "overdue loan check started"
	logMsgRunFinished    = "overdue loan check finished"
	logMsgRunFailed      = "overdue loan check failed"
	logMsgNoOverdueLoans = "no overdue loans found"
	logMsgMailBatchSent  = "overdue loan mail sent"
	logMsgStopping       = "overdue loan notifier stopping"

	logAttrError      = "error"
	logAttrLoans      = "loans"
	logAttrRecipients = "recipients"
)

// LoanFinder yields the loans currently overdue.
type LoanFinder interface {
	FindOverdue(ctx context.Context) ([]core.Loan, error)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithInterval overrides how often the job runs.
func WithInterval(interval time.Duration) Option {
	return func(n *Notifier) {
		if interval > 0 {
			n.interval = interval
		}
	}
}

// WithSubject overrides the mail subject.
func WithSubject(subject string) Option {
	return func(n *Notifier) {
		if subject != "" {
			n.subject = subject
		}
	}
}

// WithMessage overrides the mail body.
func WithMessage(message string) Option {
	return func(n *Notifier) {
		if message != "" {
			n.message = message
		}
	}
}

// Notifier periodically finds overdue loans and mails their customers in
// one batch.
type Notifier struct {
	loans    LoanFinder
	sender   mailer.Sender
	log      observability.ContextualLogger
	interval time.Duration
	subject  string
	message  string
}

// New creates a Notifier with the default interval, subject and message.
func New(loans LoanFinder, sender mailer.Sender, log observability.ContextualLogger, options ...Option) *Notifier {
	if log == nil {
		log = observability.NopLogger{}
	}

	n := &Notifier{
		loans:    loans,
		sender:   sender,
		log:      log,
		interval: defaultInterval,
		subject:  DefaultSubject,
		message:  DefaultMessage,
	}

	for _, option := range options {
		option(n)
	}

	return n
}

// Run executes the job on a ticker until the context is canceled. Errors
// are logged, a failed run does not stop the loop.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.log.InfoContext(ctx, logMsgStopping)
			return

		case <-ticker.C:
			if err := n.NotifyOverdueLoans(ctx); err != nil {
				n.log.ErrorContext(ctx, logMsgRunFailed, logAttrError, err.Error())
			}
		}
	}
}

// NotifyOverdueLoans runs one pass: collect the addresses of all overdue
// loans and send them a single batch mail. Loans without a customer email
// are skipped.
func (n *Notifier) NotifyOverdueLoans(ctx context.Context) error {
	n.log.DebugContext(ctx, logMsgRunStarted)

	overdue, err := n.loans.FindOverdue(ctx)
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(overdue))
	for _, loan := range overdue {
		if loan.CostumerEmail != "" {
			recipients = append(recipients, loan.CostumerEmail)
		}
	}

	if len(recipients) == 0 {
		n.log.DebugContext(ctx, logMsgNoOverdueLoans)
		return nil
	}

	if err := n.sender.Send(ctx, n.subject, n.message, recipients); err != nil {
		return err
	}

	n.log.InfoContext(ctx, logMsgMailBatchSent,
		logAttrLoans, len(overdue),
		logAttrRecipients, len(recipients),
	)

	n.log.DebugContext(ctx, logMsgRunFinished)

	return nil
}
