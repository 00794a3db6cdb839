package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/conecta/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// CodeSender delivers the account verification code to a newly registered user.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, name, code string) error
}

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESCodeSender sends verification codes using AWS SES
type SESCodeSender struct {
	client      SESAPI
	fromAddress string
	logger      *slog.Logger
}

// NewSESCodeSender creates a sender backed by the default AWS credential chain.
func NewSESCodeSender(ctx context.Context, region, fromAddress string, logger *slog.Logger) (*SESCodeSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESCodeSenderWithClient(ses.NewFromConfig(cfg), fromAddress, logger), nil
}

func NewSESCodeSenderWithClient(client SESAPI, fromAddress string, logger *slog.Logger) *SESCodeSender {
	return &SESCodeSender{
		client:      client,
		fromAddress: fromAddress,
		logger:      logger,
	}
}

func (s *SESCodeSender) SendVerificationCode(ctx context.Context, email, name, code string) error {
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Hola, %s</h2>
    <p>Gracias por registrarte en Conecta UdB. Tu código de verificación es:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
    <p>Si no creaste esta cuenta puedes ignorar este mensaje.</p>
</body>
</html>
`, name, code)

	textBody := fmt.Sprintf(`Hola, %s

Gracias por registrarte en Conecta UdB. Tu código de verificación es: %s

Si no creaste esta cuenta puedes ignorar este mensaje.
`, name, code)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String("Código de verificación Conecta UdB"),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send verification code",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("verification code sent",
		slog.String("email", logger.SanitizedEmail(email)),
		slog.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}

// LogCodeSender writes the code to the log instead of sending mail. The code
// itself is redacted in production.
type LogCodeSender struct {
	logger *slog.Logger
	env    string
}

func NewLogCodeSender(logger *slog.Logger, env string) *LogCodeSender {
	return &LogCodeSender{logger: logger, env: env}
}

func (s *LogCodeSender) SendVerificationCode(ctx context.Context, email, name, code string) error {
	s.logger.InfoContext(ctx, "verification code issued",
		slog.String("email", logger.SanitizedEmail(email)),
		logger.RedactedAttr("code", code, s.env),
	)
	return nil
}
