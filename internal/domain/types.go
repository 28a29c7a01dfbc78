package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Clock is the block-number and timestamp source shared by all governance
// components. BlockNumber is the block the next operation lands in.
type Clock interface {
	BlockNumber() uint64
	Timestamp() uint64
}

// ProposalRecord is the persisted summary of a proposal after a scenario run.
type ProposalRecord struct {
	ID          string       `json:"id"`
	Scenario    string       `json:"scenario"`
	Proposer    string       `json:"proposer"`
	Description string       `json:"description"`
	State       string       `json:"state"`
	Snapshot    uint64       `json:"snapshot"`
	Deadline    uint64       `json:"deadline"`
	ETA         uint64       `json:"eta,omitempty"`
	Quorum      string       `json:"quorum"`
	Votes       RecordVotes  `json:"votes"`
	Calls       []RecordCall `json:"calls"`
	RecordedAt  time.Time    `json:"recordedAt"`
}

type RecordVotes struct {
	Against string `json:"against"`
	For     string `json:"for"`
	Abstain string `json:"abstain"`
}

type RecordCall struct {
	Target string `json:"target"`
	Value  string `json:"value"`
	Data   string `json:"data"`
}

// ProposalFilter narrows ListProposals results; zero fields match everything.
type ProposalFilter struct {
	Scenario string
	State    string
}

func (f ProposalFilter) Matches(r *ProposalRecord) bool {
	if f.Scenario != "" && r.Scenario != f.Scenario {
		return false
	}
	return f.State == "" || r.State == f.State
}

// ZeroAddress is the "no delegate" and "open role" sentinel address.
var ZeroAddress = common.Address{}
