// Package user defines lead and profile entities captured from site forms.
package user

import "time"

// Lead is a contact captured through a form or lead-magnet download.
type Lead struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Interest  string    `json:"interest,omitempty"`
	Message   string    `json:"message,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the subset of lead data embedded in a profile token so
// returning visitors get prefilled forms.
type Profile struct {
	LeadID    string `json:"leadId"`
	Firstname string `json:"firstname"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
}

// LeadRepository persists and looks up leads.
type LeadRepository interface {
	FindByEmail(email string) (*Lead, error)
	Store(lead *Lead) error
	Count() (int, error)
}
