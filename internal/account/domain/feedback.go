package domain

import "time"

// Feedback is a support ticket submitted from the contact form.
type Feedback struct {
	ID            string
	Name          string
	Email         Email
	Subject       string
	Message       string
	Completed     bool
	DateSubmitted time.Time
	UserID        string
	Reply         string
	Replied       bool
	ReplyDate     *time.Time
}
