package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/codr1/CourtReserve/internal/booking"
	"github.com/codr1/CourtReserve/internal/config"
	dbgen "github.com/codr1/CourtReserve/internal/db/generated"
	"github.com/codr1/CourtReserve/internal/testutil"
)

type sentEmail struct {
	recipient string
	subject   string
	body      string
	ctxErr    error
}

type fakeEmailSender struct {
	mu    sync.Mutex
	sent  []sentEmail
	delay time.Duration
	done  chan sentEmail
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{done: make(chan sentEmail, 4)}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(f.delay):
		}
	}
	msg := sentEmail{recipient: recipient, subject: subject, body: body, ctxErr: ctx.Err()}
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	f.done <- msg
	return nil
}

func waitForEmail(t *testing.T, f *fakeEmailSender) sentEmail {
	t.Helper()

	select {
	case msg := <-f.done:
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected an email to be sent")
		return sentEmail{}
	}
}

func TestSendAsync_SurvivesCallerCancellation(t *testing.T) {
	sender := newFakeEmailSender()
	sender.delay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	SendAsync(ctx, sender, "pat@example.com", Message{Subject: "Subject", Body: "Body"}, nil)
	cancel()

	msg := waitForEmail(t, sender)
	if msg.ctxErr != nil {
		t.Fatalf("expected send context to outlive caller, got %v", msg.ctxErr)
	}
	if msg.recipient != "pat@example.com" {
		t.Fatalf("unexpected recipient %q", msg.recipient)
	}
}

func TestSendAsync_SkipsIncompleteMessages(t *testing.T) {
	sender := newFakeEmailSender()
	SendAsync(context.Background(), sender, "  ", Message{Subject: "Subject", Body: "Body"}, nil)
	SendAsync(context.Background(), sender, "pat@example.com", Message{Subject: "Subject"}, nil)

	select {
	case msg := <-sender.done:
		t.Fatalf("expected no send, got %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifier_CancellationIncludesReason(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, database, "Pat Member", "pat@example.com", false)
	sender := newFakeEmailSender()
	notifier := NewNotifier(database.Queries, sender, "Riverside Courts")

	err := notifier.Notify(context.Background(), booking.Event{
		Type: booking.EventCancelled,
		Reservation: booking.Reservation{
			UserID: user.ID, Date: "2025-06-10", StartTime: "09:00", EndTime: "10:00", TotalPriceCents: 2000,
		},
		CourtName: "Court 1",
		Reason:    "facility maintenance work",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	msg := waitForEmail(t, sender)
	if msg.recipient != "pat@example.com" {
		t.Fatalf("unexpected recipient %q", msg.recipient)
	}
	if msg.subject != "Court Reservation Cancelled - Riverside Courts" {
		t.Fatalf("unexpected subject %q", msg.subject)
	}
	for _, want := range []string{"Court: Court 1", "Date: Tuesday, Jun 10, 2025", "Time: 9:00 AM - 10:00 AM", "Reason: facility maintenance work"} {
		if !strings.Contains(msg.body, want) {
			t.Fatalf("expected body to contain %q, got:\n%s", want, msg.body)
		}
	}
	if strings.Contains(msg.body, "Total:") {
		t.Fatalf("cancellation should not quote a total:\n%s", msg.body)
	}
}

func TestNotifier_ConfirmationQuotesTotal(t *testing.T) {
	database := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, database, "Pat Member", "pat@example.com", false)
	sender := newFakeEmailSender()
	notifier := NewNotifier(database.Queries, sender, "Riverside Courts")

	if err := notifier.Notify(context.Background(), booking.Event{
		Type: booking.EventConfirmed,
		Reservation: booking.Reservation{
			UserID: user.ID, Date: "2025-06-10", StartTime: "10:00", EndTime: "11:30", TotalPriceCents: 3000,
		},
		CourtName: "Court 1",
	}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	msg := waitForEmail(t, sender)
	if !strings.Contains(msg.body, "Total: $30.00") {
		t.Fatalf("expected total in body, got:\n%s", msg.body)
	}
}

func TestNotifier_UnknownUserFails(t *testing.T) {
	database := testutil.NewTestDB(t)
	notifier := NewNotifier(database.Queries, newFakeEmailSender(), "Riverside Courts")

	err := notifier.Notify(context.Background(), booking.Event{
		Type:        booking.EventConfirmed,
		Reservation: booking.Reservation{UserID: 404},
	})
	if err == nil {
		t.Fatal("expected error for missing user")
	}
}

func TestNotifier_Reminder(t *testing.T) {
	sender := newFakeEmailSender()
	notifier := NewNotifier(nil, sender, "Riverside Courts")

	notifier.SendReminder(context.Background(), dbgen.ListReservationsStartingBetweenRow{
		ID: 1, Date: "2025-06-10", StartTime: "18:00", EndTime: "19:00", CourtName: "Court 2", UserEmail: "sam@example.com",
	})

	msg := waitForEmail(t, sender)
	if msg.recipient != "sam@example.com" || !strings.HasPrefix(msg.subject, "Upcoming Court Reservation") {
		t.Fatalf("unexpected reminder %+v", msg)
	}
}

func TestBuildPasswordReset(t *testing.T) {
	msg := BuildPasswordReset(PasswordResetDetails{
		FacilityName: "Riverside Courts",
		Link:         "https://courts.example.com/reset?token=abc",
		ExpiresIn:    time.Hour,
	})
	if !strings.Contains(msg.Body, "https://courts.example.com/reset?token=abc") {
		t.Fatalf("expected link in body, got:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "expires in 1 hour") {
		t.Fatalf("expected expiry in body, got:\n%s", msg.Body)
	}
}

func TestFormatCents(t *testing.T) {
	cases := map[int64]string{0: "$0.00", 3000: "$30.00", 1005: "$10.05", -250: "-$2.50"}
	for cents, want := range cases {
		if got := FormatCents(cents); got != want {
			t.Fatalf("FormatCents(%d) = %q, want %q", cents, got, want)
		}
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, input *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESClientSend(t *testing.T) {
	api := &fakeSES{}
	client := &SESClient{api: api, sender: "courts@example.com"}

	if err := client.Send(context.Background(), " pat@example.com ", "Subject", "Body"); err != nil {
		t.Fatalf("send: %v", err)
	}
	in := api.input
	if aws.ToString(in.FromEmailAddress) != "courts@example.com" || in.Destination.ToAddresses[0] != "pat@example.com" {
		t.Fatalf("unexpected addressing %+v", in)
	}
	if aws.ToString(in.Content.Simple.Body.Text.Data) != "Body" || aws.ToString(in.Content.Simple.Subject.Charset) != "UTF-8" {
		t.Fatalf("unexpected content %+v", in.Content.Simple)
	}

	if err := client.Send(context.Background(), "", "Subject", "Body"); !errors.Is(err, errNoRecipient) {
		t.Fatalf("expected errNoRecipient, got %v", err)
	}

	api.err = errors.New("throttled")
	if err := client.Send(context.Background(), "pat@example.com", "Subject", "Body"); !errors.Is(err, api.err) {
		t.Fatalf("expected wrapped SES error, got %v", err)
	}
}

func TestSESClientRequiresConfig(t *testing.T) {
	var client *SESClient
	if err := client.Send(context.Background(), "pat@example.com", "s", "b"); err == nil {
		t.Fatal("expected error from nil client")
	}
	if _, err := NewSESClient(context.Background(), config.EmailConfig{Region: "us-east-1"}); err == nil {
		t.Fatal("expected configuration error without credentials")
	}
}

func TestMaskAddress(t *testing.T) {
	for in, want := range map[string]string{"pat@example.com": "p***@example.com", "nobody": "***", "@example.com": "***"} {
		if got := maskAddress(in); got != want {
			t.Fatalf("maskAddress(%q) = %q, want %q", in, got, want)
		}
	}
}
