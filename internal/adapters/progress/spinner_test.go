package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

func TestSpinnerProgressReporter_Stages(t *testing.T) {
	var buf bytes.Buffer
	r := newSpinnerProgressReporter(&buf)
	ctx := context.Background()

	r.OnProgress(ctx, usecase.ProgressEvent{Stage: "loading", Message: "Loading scenario", Spinner: true})
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: "step", Current: 1, Total: 2, Message: "mine", Spinner: true})
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: "step", Current: 2, Total: 2, Message: "vote", Spinner: true})
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: "complete", Message: "Scenario complete"})

	require.Len(t, r.stages, 3)
	assert.Equal(t, "loading", r.stages[0].Stage)
	assert.Equal(t, "completed", r.stages[0].Status)
	assert.Equal(t, "vote", r.stages[1].Message)
	assert.Equal(t, "running", r.stages[2].Status)
	assert.False(t, r.spinner.Active())
}

func TestSpinnerProgressReporter_Display(t *testing.T) {
	r := newSpinnerProgressReporter(&bytes.Buffer{})
	r.enterStage("step")

	got := r.display(usecase.ProgressEvent{Stage: "step", Current: 3, Total: 7, Message: "propose"})
	assert.Contains(t, got, "[3/7] propose")
}

func TestSpinnerProgressReporter_Messages(t *testing.T) {
	var buf bytes.Buffer
	r := newSpinnerProgressReporter(&buf)

	r.Info("deployed")
	r.Error("step failed")

	assert.Contains(t, buf.String(), "deployed")
	assert.Contains(t, buf.String(), "step failed")
}
