/*
Package newsletter Application Layer - newsletter subscriptions and broadcasts.

Sign-up is double opt-in: a confirmation link is mailed first and only
confirmed, active subscribers receive broadcasts. Broadcasts go out in
batches with a pause between them to stay under SMTP rate limits.
*/
package newsletter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/domain/newsletter"
	"storefront/domain/shared"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

// UnsubscribePlaceholder replaced with each recipient's unsubscribe link
const UnsubscribePlaceholder = "{{UNSUBSCRIBE_URL}}"

const confirmationSubject = "Please confirm your newsletter subscription"

// Options links and batching
type Options struct {
	// BaseURL public API root; links are BaseURL + /newsletter/confirm/:token
	BaseURL    string
	BatchSize  int
	BatchDelay time.Duration
}

// ApplicationService newsletter application service
type ApplicationService struct {
	subscribers newsletter.Repository
	mailer      Mailer
	opts        Options
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewApplicationService(subscribers newsletter.Repository, mailer Mailer, opts Options) *ApplicationService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &ApplicationService{subscribers: subscribers, mailer: mailer, opts: opts, sleep: sleepContext}
}

// Subscribe registers an email. A pending subscriber gets the confirmation
// mail again; a confirmed subscriber who left is reactivated.
func (s *ApplicationService) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResponse, error) {
	email, err := newsletter.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	existing, err := s.subscribers.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	switch {
	case existing == nil:
		sub, err := newsletter.NewSubscriber(s.subscribers.NextIdentity(), email)
		if err != nil {
			return nil, err
		}
		if err := s.subscribers.Save(ctx, sub); err != nil {
			return nil, err
		}
		if err := s.sendConfirmation(ctx, sub); err != nil {
			return nil, err
		}
		return &SubscribeResponse{
			Outcome: OutcomeSubscribed,
			Message: "Subscription successful! Please check your email to confirm your subscription.",
		}, nil

	case existing.IsConfirmed() && existing.IsActive():
		return nil, newsletter.NewAlreadySubscribedError()

	case !existing.IsConfirmed():
		if !existing.IsActive() {
			if err := existing.Resubscribe(); err != nil {
				return nil, err
			}
			if err := s.subscribers.Save(ctx, existing); err != nil {
				return nil, err
			}
		}
		if err := s.sendConfirmation(ctx, existing); err != nil {
			return nil, err
		}
		return &SubscribeResponse{
			Outcome: OutcomeResent,
			Message: "Confirmation email has been resent. Please check your email.",
		}, nil

	default:
		if err := existing.Resubscribe(); err != nil {
			return nil, err
		}
		if err := s.subscribers.Save(ctx, existing); err != nil {
			return nil, err
		}
		return &SubscribeResponse{
			Outcome: OutcomeReactivated,
			Message: "Welcome back! Your subscription has been reactivated.",
		}, nil
	}
}

// Confirm completes the opt-in for the token's subscriber
func (s *ApplicationService) Confirm(ctx context.Context, token string) error {
	sub, err := s.subscribers.FindByConfirmationToken(ctx, token)
	if err != nil {
		return err
	}
	if sub == nil {
		return newsletter.NewInvalidTokenError("Invalid or expired confirmation token")
	}
	if err := sub.Confirm(); err != nil {
		return err
	}
	return s.subscribers.Save(ctx, sub)
}

func (s *ApplicationService) Unsubscribe(ctx context.Context, token string) error {
	sub, err := s.subscribers.FindByUnsubscribeToken(ctx, token)
	if err != nil {
		return err
	}
	if sub == nil {
		return newsletter.NewInvalidTokenError("Invalid unsubscribe token")
	}
	if err := sub.Unsubscribe(); err != nil {
		return err
	}
	return s.subscribers.Save(ctx, sub)
}

// Send broadcasts to every confirmed, active subscriber. Batches already
// sent stay sent when a later one fails; failures are counted in the report.
func (s *ApplicationService) Send(ctx context.Context, identity shared.Identity, req SendRequest) (*SendReport, error) {
	if err := identity.RequireAdmin(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.HTMLContent) == "" {
		return nil, shared.NewValidationError("newsletter", "subject", "Subject and content are required")
	}

	recipients, err := s.subscribers.FindActiveConfirmed(ctx)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, shared.NewError(shared.ErrNotFound, "subscriber", newsletter.ReasonNoSubscribers, "", "No active subscribers found")
	}

	report := &SendReport{Recipients: len(recipients)}
	for start := 0; start < len(recipients); start += s.opts.BatchSize {
		if start > 0 && s.opts.BatchDelay > 0 {
			if err := s.sleep(ctx, s.opts.BatchDelay); err != nil {
				return report, err
			}
		}
		end := min(start+s.opts.BatchSize, len(recipients))
		s.sendBatch(ctx, recipients[start:end], req, report)
		report.Batches++
	}

	logger.FromContext(ctx).Info("newsletter sent",
		zap.Int("recipients", report.Recipients), zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed), zap.Int("batches", report.Batches))
	return report, nil
}

func (s *ApplicationService) sendBatch(ctx context.Context, batch []*newsletter.Subscriber, req SendRequest, report *SendReport) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, sub := range batch {
		wg.Add(1)
		go func(sub *newsletter.Subscriber) {
			defer wg.Done()
			err := s.mailer.Send(ctx, Message{
				To:      sub.Email(),
				Subject: req.Subject,
				HTML:    s.personalize(req.HTMLContent, sub),
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.FailedTo = append(report.FailedTo, sub.Email())
				logger.FromContext(ctx).Warn("newsletter delivery failed",
					append(logger.ErrorFields(err), zap.String("email", sub.Email()))...)
				return
			}
			report.Sent++
		}(sub)
	}
	wg.Wait()
}

func (s *ApplicationService) personalize(html string, sub *newsletter.Subscriber) string {
	link := s.UnsubscribeURL(sub.UnsubscribeToken())
	return strings.ReplaceAll(html, UnsubscribePlaceholder, link) + fmt.Sprintf(`
<div style="margin-top: 40px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px;">
  <p>You're receiving this email because you subscribed to our newsletter.</p>
  <p><a href="%s" style="color: #666;">Unsubscribe</a></p>
</div>`, link)
}

func (s *ApplicationService) sendConfirmation(ctx context.Context, sub *newsletter.Subscriber) error {
	link := s.ConfirmURL(sub.ConfirmationToken())
	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to our newsletter!</h2>
  <p>Please confirm your subscription by opening the link below:</p>
  <p><a href="%[1]s">%[1]s</a></p>
  <p>If you didn't subscribe to this newsletter, please ignore this email.</p>
</div>`, link)

	err := s.mailer.Send(ctx, Message{To: sub.Email(), Subject: confirmationSubject, HTML: html})
	if err != nil {
		logger.FromContext(ctx).Error("failed to send confirmation email",
			append(logger.ErrorFields(err), zap.String("email", sub.Email()))...)
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

// ConfirmURL public confirmation link for a token
func (s *ApplicationService) ConfirmURL(token string) string {
	return s.opts.BaseURL + "/newsletter/confirm/" + token
}

// UnsubscribeURL public unsubscribe link for a token
func (s *ApplicationService) UnsubscribeURL(token string) string {
	return s.opts.BaseURL + "/newsletter/unsubscribe/" + token
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
