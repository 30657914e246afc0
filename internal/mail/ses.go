package mail

import (
	"context"
	"fmt"
	"log"

	"dailybriefing/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the subset of the SES v2 client used here
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends mail through Amazon SES
type SESSender struct {
	client sesAPI
}

// NewSESSender creates an SES sender. Without explicit keys the default
// credential chain is used (the Lambda execution role in production).
func NewSESSender(ctx context.Context, cfg config.MailConfig) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.SESAccessKeyID != "" && cfg.SESSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SESAccessKeyID, cfg.SESSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.SESEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SESEndpoint)
		}
	})

	log.Printf("📧 [MAIL] SES sender initialized (region: %s)", cfg.AWSRegion)
	return &SESSender{client: client}, nil
}

// NewSESSenderWithClient wraps an existing SES client
func NewSESSenderWithClient(client sesAPI) *SESSender {
	return &SESSender{client: client}
}

func content(data string) *types.Content {
	return &types.Content{
		Data:    aws.String(data),
		Charset: aws.String(Charset),
	}
}

func buildSendEmailInput(msg Message) *sesv2.SendEmailInput {
	body := &types.Body{Text: content(msg.Text)}
	if msg.HTML != "" {
		body.Html = content(msg.HTML)
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: content(msg.Subject),
				Body:    body,
			},
		},
	}
}

// Send submits a single email
func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	out, err := s.client.SendEmail(ctx, buildSendEmailInput(msg))
	if err != nil {
		return "", fmt.Errorf("ses send failed: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
