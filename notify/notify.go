// Package notify delivers alerts and reports to operators.
package notify

import (
	"context"
	"errors"
)

// Notifier delivers one message to a recipient list.
type Notifier interface {
	Send(ctx context.Context, subject, body string, recipients []string) error
}

// Multi fans a message out to every notifier. All notifiers are tried;
// failures are joined.
type Multi []Notifier

// Send implements Notifier.
func (m Multi) Send(ctx context.Context, subject, body string, recipients []string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, subject, body, recipients); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Closer is implemented by notifiers holding connections.
type Closer interface {
	Close() error
}

// Close closes every notifier in m that holds resources.
func (m Multi) Close() error {
	var errs []error
	for _, n := range m {
		if c, ok := n.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
