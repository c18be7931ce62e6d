// Package audit fans engine audit records out to several sinks.
package audit

import (
	"context"
	"errors"

	"github.com/cuihairu/werewolf/internal/ports"
)

// Multi records to every sink and joins their errors.
type Multi []ports.Auditor

var _ ports.Auditor = Multi(nil)

func (m Multi) Record(ctx context.Context, kind, gameID string, payload any) error {
	var errs []error
	for _, a := range m {
		if err := a.Record(ctx, kind, gameID, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
