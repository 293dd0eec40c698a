package testutils

import (
	"context"

	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/storage/inmemory"
)

// FailingDriver wraps an in-memory driver and fails the selected
// operations with ErrInjected.
type FailingDriver struct {
	*inmemory.Driver

	FailWriteScratch bool
	FailPutSnapshot  bool
}

// NewFailingDriver creates a FailingDriver that fails nothing until told to.
func NewFailingDriver() *FailingDriver {
	return &FailingDriver{Driver: inmemory.NewDriver()}
}

func (f *FailingDriver) WriteScratch(ctx context.Context, content string) error {
	if f.FailWriteScratch {
		return ErrInjected
	}
	return f.Driver.WriteScratch(ctx, content)
}

func (f *FailingDriver) PutSnapshot(ctx context.Context, name, content string) error {
	if f.FailPutSnapshot {
		return ErrInjected
	}
	return f.Driver.PutSnapshot(ctx, name, content)
}

var _ storage.Driver = (*FailingDriver)(nil)
