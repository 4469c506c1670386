package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "test",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
		Timeout: time.Minute,
	})
}

type recordingSender struct {
	mu    sync.Mutex
	calls []sentMessage
	err   error
}

type sentMessage struct {
	Recipient string
	Message   Message
}

func (s *recordingSender) Send(_ context.Context, recipient string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sentMessage{Recipient: recipient, Message: msg})
	return s.err
}

type recordingRecorder struct {
	results map[string][]bool
}

func (r *recordingRecorder) RecordNotification(channel string, ok bool) {
	if r.results == nil {
		r.results = map[string][]bool{}
	}
	r.results[channel] = append(r.results[channel], ok)
}

func TestTemplates_RenderAllKeys(t *testing.T) {
	templates := DefaultTemplates()
	for key := range templateSources {
		msg, err := templates.Render(key, map[string]any{"PetName": "Rex", "OrganizationName": "Tails"})
		require.NoError(t, err, key)
		assert.NotEmpty(t, msg.Subject, key)
		assert.NotEmpty(t, msg.Body, key)
	}

	msg, err := templates.Render(TemplateAdoptionApproved, map[string]any{"ApplicantName": "Ada", "PetName": "Rex"})
	require.NoError(t, err)
	assert.Equal(t, "Your adoption of Rex was approved", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Ada")

	_, err = templates.Render("missing", nil)
	assert.Error(t, err)
}

func TestWhatsAppSender_PostsToRelay(t *testing.T) {
	var got whatsAppRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWhatsAppSender(server.URL+"/", "tok", time.Second, testBreaker())
	err := sender.Send(context.Background(), "+1 (555) 010-2000", Message{Body: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "15550102000", got.Number)
	assert.Equal(t, "hello", got.Message)
	assert.Equal(t, "Bearer tok", auth)
}

func TestWhatsAppSender_BreakerOpensOnRelayFailures(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewWhatsAppSender(server.URL, "", time.Second, testBreaker())
	for i := 0; i < 3; i++ {
		assert.Error(t, sender.Send(context.Background(), "5550100", Message{Body: "x"}))
	}
	assert.Equal(t, 2, hits)

	err := sender.Send(context.Background(), "5550100", Message{Body: "x"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestWhatsAppSender_RejectsEmptyNumber(t *testing.T) {
	sender := NewWhatsAppSender("http://unused", "", time.Second, testBreaker())
	assert.Error(t, sender.Send(context.Background(), "n/a", Message{Body: "x"}))
}

type fakePublisher struct {
	key  string
	msg  amqp.Publishing
	err  error
	hits int
}

func (p *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	p.hits++
	p.key = key
	p.msg = msg
	return p.err
}

func TestEmailSender_PublishesEnvelope(t *testing.T) {
	pub := &fakePublisher{}
	sender := newEmailSenderWithPublisher(pub, "adoption.email", "noreply@example.com", testBreaker())

	err := sender.Send(context.Background(), "ada@example.com", Message{Subject: "Hi", Body: "Body"})
	require.NoError(t, err)

	assert.Equal(t, "adoption.email", pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	var env emailEnvelope
	require.NoError(t, json.Unmarshal(pub.msg.Body, &env))
	assert.Equal(t, "ada@example.com", env.To)
	assert.Equal(t, "noreply@example.com", env.From)
	assert.Equal(t, "Hi", env.Subject)
}

func TestEmailSender_ExpiredContextSkipsPublish(t *testing.T) {
	pub := &fakePublisher{}
	sender := newEmailSenderWithPublisher(pub, "q", "from", testBreaker())
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	assert.Error(t, sender.Send(ctx, "a@b.c", Message{}))
	assert.Zero(t, pub.hits)
}

func TestDispatcher_NotifySwallowsFailures(t *testing.T) {
	email := &recordingSender{err: errors.New("down")}
	whatsapp := &recordingSender{}
	recorder := &recordingRecorder{}
	d := NewDispatcher(map[Channel]Sender{ChannelEmail: email, ChannelWhatsApp: whatsapp}, nil, zap.NewNop(), recorder)

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), Notification{
			Channel: ChannelEmail, Recipient: "a@b.c", TemplateKey: TemplateUserUnbanned, Data: map[string]any{"Name": "Ada"},
		})
		d.Notify(context.Background(), Notification{
			Channel: ChannelWhatsApp, Recipient: "555", TemplateKey: TemplateUserUnbanned, Data: map[string]any{"Name": "Ada"},
		})
		d.Notify(context.Background(), Notification{Channel: ChannelWhatsApp, TemplateKey: TemplateUserUnbanned})
	})

	require.Len(t, email.calls, 1)
	require.Len(t, whatsapp.calls, 1)
	assert.Contains(t, whatsapp.calls[0].Message.Body, "Hi Ada")
	assert.Equal(t, []bool{false}, recorder.results["email"])
	assert.Equal(t, []bool{true}, recorder.results["whatsapp"])
}

func TestDispatcher_DeliverUnknownChannel(t *testing.T) {
	d := NewDispatcher(map[Channel]Sender{}, nil, zap.NewNop(), nil)
	err := d.Deliver(context.Background(), Notification{Channel: "sms", Recipient: "x", TemplateKey: TemplateUserBanned})
	assert.Error(t, err)
}
