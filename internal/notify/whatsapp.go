package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// WhatsAppSender posts messages to an HTTP relay that owns the WhatsApp
// session. The relay accepts POST {base}/send with {"number","message"}.
type WhatsAppSender struct {
	baseURL string
	token   string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
}

// NewWhatsAppSender builds a relay client guarded by cb.
func NewWhatsAppSender(baseURL, token string, timeout time.Duration, cb *gobreaker.CircuitBreaker) *WhatsAppSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WhatsAppSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

type whatsAppRequest struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

// Send delivers msg.Body to the phone number. The subject is not used.
func (s *WhatsAppSender) Send(ctx context.Context, recipient string, msg Message) error {
	number := normalizeNumber(recipient)
	if number == "" {
		return fmt.Errorf("whatsapp: invalid recipient %q", recipient)
	}

	payload, err := json.Marshal(whatsAppRequest{Number: number, Message: msg.Body})
	if err != nil {
		return err
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if s.token != "" {
			req.Header.Set("Authorization", "Bearer "+s.token)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("whatsapp relay returned %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}

// normalizeNumber keeps digits only, which is the form the relay expects.
func normalizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
