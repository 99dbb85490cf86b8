package mailer

import (
	"sync"
)

// Email is one recorded delivery: the recipient plus the template and data
// that would have rendered it.
type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer implements Mailer for tests. It records deliveries instead of
// talking to an SMTP server; safe for concurrent use since receipts go out
// from background goroutines.
type MockMailer struct {
	mu     sync.RWMutex
	emails []Email
}

func NewMockMailer() *MockMailer {
	return &MockMailer{
		emails: make([]Email, 0),
	}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emails = append(m.emails, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})

	return nil
}

// GetSentEmails returns a copy, so assertions don't race with late sends.
func (m *MockMailer) GetSentEmails() []Email {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emails := make([]Email, len(m.emails))
	copy(emails, m.emails)
	return emails
}

func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emails = m.emails[:0]
}
