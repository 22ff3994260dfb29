package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Subscriber consumes the relay's websocket feed and reconnects with
// exponential backoff until its context is cancelled.
type Subscriber struct {
	URL            string
	Handle         func(msg []byte)
	InitialBackoff time.Duration // default 500ms
	MaxBackoff     time.Duration // default 5s
	Dialer         *websocket.Dialer
}

// Run blocks until ctx is cancelled; connection errors are logged and retried.
func (s *Subscriber) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.InitialBackoff
	if b.InitialInterval <= 0 {
		b.InitialInterval = 500 * time.Millisecond
	}
	b.MaxInterval = s.MaxBackoff
	if b.MaxInterval <= 0 {
		b.MaxInterval = 5 * time.Second
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := s.session(ctx, b)
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			logrus.Warnf("relay connection error: %v; reconnecting in %v", err, next.Round(time.Millisecond))
		}),
	)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// session handles one connection until it fails.
func (s *Subscriber) session(ctx context.Context, b *backoff.ExponentialBackOff) error {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.URL, err)
	}
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	b.Reset()
	logrus.Infof("Connected to relay at %s", s.URL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read from %s: %w", s.URL, err)
		}
		s.Handle(msg)
	}
}
