package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
	calls int
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.calls++
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("test-message-id")}, nil
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSenderWithClient(fake)

	id, err := sender.Send(context.Background(), Message{
		From:    "sender@example.com",
		To:      "recipient@example.com",
		Subject: "Daily Briefing - January 13, 2026",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if id != "test-message-id" {
		t.Errorf("message id = %q", id)
	}

	in := fake.input
	if aws.ToString(in.FromEmailAddress) != "sender@example.com" {
		t.Errorf("from = %q", aws.ToString(in.FromEmailAddress))
	}
	if len(in.Destination.ToAddresses) != 1 || in.Destination.ToAddresses[0] != "recipient@example.com" {
		t.Errorf("to = %v", in.Destination.ToAddresses)
	}

	simple := in.Content.Simple
	if aws.ToString(simple.Subject.Data) != "Daily Briefing - January 13, 2026" {
		t.Errorf("subject = %q", aws.ToString(simple.Subject.Data))
	}
	for name, c := range map[string]*string{
		"subject": simple.Subject.Charset,
		"text":    simple.Body.Text.Charset,
		"html":    simple.Body.Html.Charset,
	} {
		if aws.ToString(c) != "UTF-8" {
			t.Errorf("%s charset = %q, want UTF-8", name, aws.ToString(c))
		}
	}
	if aws.ToString(simple.Body.Html.Data) != "<p>html</p>" || aws.ToString(simple.Body.Text.Data) != "plain" {
		t.Error("bodies not passed through")
	}
}

func TestSESSender_TextOnly(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSenderWithClient(fake)

	if _, err := sender.Send(context.Background(), Message{From: "a@example.com", To: "b@example.com", Subject: "s", Text: "t"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if fake.input.Content.Simple.Body.Html != nil {
		t.Error("HTML body should be omitted for plain-text mail")
	}
}

func TestSESSender_Error(t *testing.T) {
	fake := &fakeSES{err: errors.New("MessageRejected: Email address is not verified")}
	sender := NewSESSenderWithClient(fake)

	_, err := sender.Send(context.Background(), Message{From: "a@example.com", To: "b@example.com"})
	if err == nil || !errors.Is(err, fake.err) {
		t.Fatalf("expected wrapped SES error, got %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("SendEmail called %d times, want 1", fake.calls)
	}
}
