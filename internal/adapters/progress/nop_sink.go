package progress

import (
	"context"

	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NopSink is a no-op implementation of ProgressSink, used for --json and
// non-interactive runs where spinners would corrupt the output.
type NopSink struct{}

// NewNopSink creates a new no-op progress sink
func NewNopSink() *NopSink {
	return &NopSink{}
}

func (n *NopSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {}

func (n *NopSink) Info(message string) {}

func (n *NopSink) Error(message string) {}

// Ensure NopSink implements ProgressSink
var _ usecase.ProgressSink = (*NopSink)(nil)
