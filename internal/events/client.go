package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects for the diagnostic engine's boundary events.
const (
	// SubjectChatMessage carries inbound technician messages from the chat
	// gateway; payload is ChatMessage.
	SubjectChatMessage = "protech.chat.message"
	// SubjectCaseInitialized announces a case's system decision.
	SubjectCaseInitialized = "protech.case.initialized"
	// SubjectCaseTurn is emitted after every processed turn.
	SubjectCaseTurn = "protech.case.turn"
	// SubjectCasePivot is emitted once per case, on the pivot transition.
	SubjectCasePivot = "protech.case.pivot"
)

// ChatMessage is one inbound technician message for a case.
type ChatMessage struct {
	CaseID  string `json:"case_id"`
	Message string `json:"message"`
}

// CaseInitialized reports the outcome of a case's first turn.
type CaseInitialized struct {
	CaseID            string   `json:"case_id"`
	System            string   `json:"system,omitempty"`
	Legacy            bool     `json:"legacy"`
	PreCompletedSteps []string `json:"pre_completed_steps,omitempty"`
}

// CasePivot reports a key finding that short-circuits the checklist.
type CasePivot struct {
	CaseID  string `json:"case_id"`
	Finding string `json:"finding"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
