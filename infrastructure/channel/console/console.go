// Package console provides a channel that prints messages instead of
// delivering them.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/notify-go/domain/notification"
	"github.com/felixgeelhaar/notify-go/domain/template"
)

// Line is one printed message.
type Line struct {
	Time     time.Time     `json:"time"`
	To       string        `json:"to"`
	Template template.Kind `json:"template"`
	Params   []string      `json:"params"`
}

// Channel writes each message as one JSON line.
type Channel struct {
	mu  sync.Mutex
	enc *json.Encoder
	now func() time.Time
}

// New returns a Channel writing to w, or stdout when w is nil.
func New(w io.Writer) *Channel {
	if w == nil {
		w = os.Stdout
	}
	return &Channel{
		enc: json.NewEncoder(w),
		now: time.Now,
	}
}

// Send implements notification.Channel.
func (c *Channel) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", notification.ErrChannelUnavailable, err)
	}
	if want := msg.Template.Arity(); want == 0 || len(msg.Params) != want {
		return fmt.Errorf("%w: %s takes %d, got %d",
			notification.ErrArityMismatch, msg.Template, want, len(msg.Params))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line := Line{
		Time:     c.now().UTC(),
		To:       msg.To,
		Template: msg.Template,
		Params:   msg.Params,
	}
	if err := c.enc.Encode(line); err != nil {
		return fmt.Errorf("%w: %v", notification.ErrChannelUnavailable, err)
	}
	return nil
}

var _ notification.Channel = (*Channel)(nil)
