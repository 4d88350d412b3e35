package mailer

import (
	"context"
	"sync"
)

// SentMail is one recorded delivery.
type SentMail struct {
	Subject string
	Body    string
	To      []string
}

// Recorder is a Sender double that records deliveries instead of sending
// them. Useful for tests and dry runs.
type Recorder struct {
	mu   sync.Mutex
	sent []SentMail
	fail error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes every subsequent Send return the given error.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fail = err
}

// Send records the message.
func (r *Recorder) Send(_ context.Context, subject string, body string, to []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail != nil {
		return r.fail
	}

	recipients := make([]string, len(to))
	copy(recipients, to)

	r.sent = append(r.sent, SentMail{
		Subject: subject,
		Body:    body,
		To:      recipients,
	})

	return nil
}

// Sent returns a copy of all recorded deliveries.
func (r *Recorder) Sent() []SentMail {
	r.mu.Lock()
	defer r.mu.Unlock()

	sent := make([]SentMail, len(r.sent))
	copy(sent, r.sent)

	return sent
}
