package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/config"
)

const charsetUTF8 = "UTF-8"

var errNoRecipient = errors.New("recipient is required")

// sesAPI is the slice of the SESv2 client used for delivery.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESClient delivers plain-text mail through AWS SESv2.
type SESClient struct {
	api    sesAPI
	sender string
}

// NewSESClient builds a client from static credentials in the email config.
func NewSESClient(ctx context.Context, cfg config.EmailConfig) (*SESClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("ses region, sender and credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESClient{api: sesv2.NewFromConfig(awsCfg), sender: cfg.Sender}, nil
}

func (c *SESClient) Send(ctx context.Context, recipient, subject, body string) error {
	if c == nil || c.api == nil {
		return fmt.Errorf("ses client is not initialized")
	}
	input, err := buildSendInput(c.sender, recipient, Message{Subject: subject, Body: body})
	if err != nil {
		return err
	}

	out, err := c.api.SendEmail(ctx, input)
	if err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("recipient", maskAddress(recipient)).
			Str("subject", subject).
			Msg("Failed to send SES email")
		return fmt.Errorf("send ses email: %w", err)
	}
	log.Ctx(ctx).Debug().Str("message_id", aws.ToString(out.MessageId)).Msg("SES email accepted")
	return nil
}

func buildSendInput(sender, recipient string, msg Message) (*sesv2.SendEmailInput, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, errNoRecipient
	}
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(sender),
		Destination:      &types.Destination{ToAddresses: []string{recipient}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charsetUTF8)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String(charsetUTF8)},
				},
			},
		},
	}, nil
}

// maskAddress keeps the domain and the first character of the local part.
func maskAddress(address string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(address), "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}
