package notify

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
)

// Message is one notification captured by Recorder.
type Message struct {
	Recipient domain.Email
	Subject   string
	Body      string
}

// Recorder keeps every message in memory. Tests use it to read the code that
// would have been emailed; setting Err makes every Send fail.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

var _ Notifier = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Send(_ context.Context, recipient domain.Email, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, Message{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// FailWith makes subsequent sends return err; nil restores delivery.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message to recipient.
func (r *Recorder) Last(recipient domain.Email) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].Recipient == recipient {
			return r.messages[i], true
		}
	}
	return Message{}, false
}
