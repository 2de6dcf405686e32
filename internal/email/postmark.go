package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

var ErrInvalidConfig = errors.New("email: invalid config")

// PostmarkSender delivers mail through Postmark's transactional API.
type PostmarkSender struct {
	client  *postmark.Client
	from    string
	product string
}

func NewPostmarkSender(serverToken, accountToken, from, product string) (*PostmarkSender, error) {
	if serverToken == "" || accountToken == "" {
		return nil, fmt.Errorf("%w: postmark tokens are required", ErrInvalidConfig)
	}
	if from == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidConfig)
	}

	return &PostmarkSender{
		client:  postmark.NewClient(serverToken, accountToken),
		from:    from,
		product: product,
	}, nil
}

func (s *PostmarkSender) SendWelcome(ctx context.Context, to, name string) error {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		To:       to,
		Subject:  welcomeSubject(s.product),
		Tag:      "welcome",
		TextBody: welcomeBody(s.product, name),
	})
	if err != nil {
		return fmt.Errorf("email: postmark send failed: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("email: postmark error %d: %s", resp.ErrorCode, resp.Message)
	}
	return nil
}
