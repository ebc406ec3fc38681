// Package email delivers finalized invoices to komitent inboxes over SMTP.
package email

import (
	"context"
	"errors"
)

var (
	// ErrPermanent marks rejections that retrying cannot fix (bad address,
	// auth failure).
	ErrPermanent = errors.New("email_permanent_failure")
	// ErrTransient marks delivery failures worth retrying.
	ErrTransient = errors.New("email_transient_failure")
)

// Attachment is a file carried inline in the message, base64-encoded on the
// wire.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

type Provider interface {
	Send(ctx context.Context, msg Message) error
}

// NoOpProvider drops messages; used when SMTP is not configured.
type NoOpProvider struct{}

func (NoOpProvider) Send(ctx context.Context, msg Message) error { return nil }
