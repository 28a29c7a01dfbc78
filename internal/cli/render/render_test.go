package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

func init() {
	color.NoColor = true
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		part, total, want string
	}{
		{"60", "65", "92.3%"},
		{"0", "10", "0.0%"},
		{"2.5", "10", "25.0%"},
		{"1", "0", "-"},
		{"x", "10", "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percentOf(tt.part, tt.total), "%s/%s", tt.part, tt.total)
	}
}

func TestSumAmounts(t *testing.T) {
	assert.Equal(t, "65.5", sumAmounts("60", "5.5", "0"))
	assert.Equal(t, "5", sumAmounts("5", "bogus"))
}

func TestShortHex(t *testing.T) {
	assert.Equal(t, "0x1234", shortHex("0x1234"))
	assert.Equal(t, "0x1234…cdef", shortHex("0x1234567890abcdef"))
}

func sampleRecords() []*domain.ProposalRecord {
	return []*domain.ProposalRecord{
		{ID: "101", Scenario: "lifecycle", Description: "Raise quorum\nlong body", State: "Executed",
			Quorum: "2.6", Votes: domain.RecordVotes{For: "60", Against: "5", Abstain: "0"}, Deadline: 62},
		{ID: "202", Scenario: "guardian", Description: "Drain treasury", State: "Canceled",
			Quorum: "2.6", Votes: domain.RecordVotes{For: "0", Against: "0", Abstain: "0"}, Deadline: 70},
	}
}

func TestProposalsRenderer(t *testing.T) {
	var buf bytes.Buffer
	result := &usecase.ProposalListResult{
		Proposals: sampleRecords(),
		Summary: usecase.ProposalSummary{
			Total:   2,
			ByState: map[string]int{"Executed": 1, "Canceled": 1},
		},
	}

	require.NoError(t, NewProposalsRenderer(&buf, false).Render(result))
	out := buf.String()

	assert.Contains(t, out, "scenario: guardian")
	assert.Contains(t, out, "scenario: lifecycle")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("guardian")), bytes.Index(buf.Bytes(), []byte("lifecycle")))
	assert.Contains(t, out, "Raise quorum")
	assert.NotContains(t, out, "long body")
	// summary follows enum order: Canceled before Executed
	assert.Contains(t, out, "2 proposals: 1 Canceled, 1 Executed")
}

func TestProposalsRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewProposalsRenderer(&buf, false).Render(&usecase.ProposalListResult{}))
	assert.Equal(t, "No proposals found\n", buf.String())
}

func TestProposalRenderer(t *testing.T) {
	var buf bytes.Buffer
	rec := sampleRecords()[0]
	rec.Calls = []domain.RecordCall{{Target: "0x00000000000000000000000000000000000000aa", Value: "0", Data: "0x1234"}}
	rec.RecordedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, NewProposalRenderer(&buf, false).Render(rec))
	out := buf.String()

	assert.Contains(t, out, "[Executed]")
	assert.Contains(t, out, "60 (92.3%)")
	assert.Contains(t, out, "2.6 (for+abstain 60)")
	assert.Contains(t, out, "Calls (1)")
	assert.Contains(t, out, "0x1234")
}

func TestScenarioRenderer(t *testing.T) {
	var buf bytes.Buffer
	result := &usecase.ScenarioResult{
		Scenario: "lifecycle",
		Steps: []usecase.StepResult{
			{Index: 1, Action: "mine", Block: 3},
			{Index: 2, Action: "vote", Block: 4, ExpectedError: "AlreadyVoted"},
		},
		Proposals:  sampleRecords()[:1],
		FinalBlock: 4,
		FinalTime:  1704067320,
	}

	require.NoError(t, NewScenarioRenderer(&buf, false, false).Render(result))
	out := buf.String()

	assert.Contains(t, out, "Scenario lifecycle")
	assert.Contains(t, out, "reverted with AlreadyVoted as expected")
	assert.Contains(t, out, "block 4 at 2024-01-01T00:02:00Z")
	assert.Contains(t, out, "1 proposal: 1 Executed")
}
