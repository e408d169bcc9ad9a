package email

import (
	"context"
	"fmt"
	"log"

	"github.com/dakshgoel/schedulr/internal/domain"
	"github.com/resend/resend-go/v2"
)

const startTimeLayout = "Monday, 2 January 2006 at 15:04 MST"

// Sender delivers booking notifications through Resend. It is built once
// at startup and injected, so tests can substitute a fake.
type Sender struct {
	client *resend.Client
	from   string
}

func NewSender(apiKey, from string) *Sender {
	return &Sender{client: resend.NewClient(apiKey), from: from}
}

func (s *Sender) SendConfirmation(ctx context.Context, meeting *domain.Meeting, event *domain.Event) error {
	subject := fmt.Sprintf("Booking Confirmed: %s", event.Title)
	html := fmt.Sprintf(`
		<h1>Booking Confirmation</h1>
		<p>Hello %s,</p>
		<p>Your meeting has been successfully booked:</p>
		<ul>
			<li><strong>Event:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Host:</strong> %s</li>
		</ul>
		<p>Looking forward to seeing you!</p>`,
		meeting.User.Name, event.Title, meeting.StartTime.Format(startTimeLayout), event.Host.Name)

	return s.send(ctx, meeting.User.Email, subject, html)
}

func (s *Sender) SendCancellation(ctx context.Context, meeting *domain.Meeting, event *domain.Event) error {
	subject := fmt.Sprintf("Meeting Canceled: %s", event.Title)
	html := fmt.Sprintf(`
		<h1>Meeting Cancellation</h1>
		<p>Hello %s,</p>
		<p>Your meeting has been canceled:</p>
		<ul>
			<li><strong>Event:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Host:</strong> %s</li>
		</ul>
		<p>If this was a mistake, please contact the host.</p>`,
		meeting.User.Name, event.Title, meeting.StartTime.Format(startTimeLayout), event.Host.Name)

	return s.send(ctx, meeting.User.Email, subject, html)
}

func (s *Sender) send(ctx context.Context, to, subject, html string) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	log.Printf("sent email %s to %s: %q", sent.Id, to, subject)
	return nil
}
