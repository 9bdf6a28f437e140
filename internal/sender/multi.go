package sender

import (
	"context"
	"errors"

	"github.com/speedwagon-io/satalert/internal/model"
)

// MultiSender delivers a report to every configured sink, even if an earlier
// one fails.
type MultiSender struct {
	senders []Sender
}

func NewMultiSender(senders ...Sender) *MultiSender {
	return &MultiSender{senders: senders}
}

func (m *MultiSender) Len() int {
	return len(m.senders)
}

func (m *MultiSender) Send(ctx context.Context, report *model.AlertReport) error {
	var errs []error
	for _, s := range m.senders {
		if err := s.Send(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSender) Close() error {
	var errs []error
	for _, s := range m.senders {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
