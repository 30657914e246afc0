// Package mail delivers briefing and failure-notification emails through
// Amazon SES or a plain SMTP relay behind a single Sender interface.
package mail
