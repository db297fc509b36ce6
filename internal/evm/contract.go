package evm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"swap-mirror/internal/domain"
)

// swapABI is the subset of the escrow contract interface the mirror
// reads: the proposal getter and the creation event used to discover
// proposals by owner.
const swapABI = `[
	{
		"type": "function",
		"name": "getProposal",
		"stateMutability": "view",
		"inputs": [{"name": "proposalId", "type": "string"}],
		"outputs": [{
			"name": "proposal",
			"type": "tuple",
			"components": [
				{"name": "id", "type": "string"},
				{"name": "owner", "type": "address"},
				{"name": "fulfilledBy", "type": "address"},
				{"name": "fulfilledWithOptionId", "type": "string"},
				{"name": "expiredAt", "type": "uint256"},
				{"name": "status", "type": "uint8"}
			]
		}]
	},
	{
		"type": "event",
		"name": "ProposalCreated",
		"inputs": [
			{"name": "owner", "type": "address", "indexed": true},
			{"name": "id", "type": "string", "indexed": false}
		]
	}
]`

// Contract status codes, as stored by the escrow contract.
const (
	stateCreated   = 0
	stateDeposited = 1
	stateFulfilled = 2
	stateCanceled  = 3
	stateSwapped   = 4
	stateRedeemed  = 5
	stateWithdrawn = 6
)

// ProposalState is the decoded on-chain state of an escrow proposal.
type ProposalState struct {
	ID                    string
	Owner                 string // EIP-55 hex
	FulfilledBy           string // empty if unset
	FulfilledWithOptionID string
	ExpiredAt             int64 // unix seconds
	Status                domain.ProposalStatus
}

type proposalTuple struct {
	Id                    string
	Owner                 common.Address
	FulfilledBy           common.Address
	FulfilledWithOptionId string
	ExpiredAt             *big.Int
	Status                uint8
}

func parseSwapABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(swapABI))
}

// decodeProposal turns raw eth_call return data into a ProposalState.
func decodeProposal(parsed abi.ABI, data []byte) (*ProposalState, error) {
	out, err := parsed.Unpack("getProposal", data)
	if err != nil {
		return nil, fmt.Errorf("unpack getProposal: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected getProposal output arity %d", len(out))
	}

	tuple := *abi.ConvertType(out[0], new(proposalTuple)).(*proposalTuple)

	status, err := statusFromState(tuple.Status)
	if err != nil {
		return nil, err
	}

	state := &ProposalState{
		ID:                    tuple.Id,
		Owner:                 tuple.Owner.Hex(),
		FulfilledWithOptionID: tuple.FulfilledWithOptionId,
		ExpiredAt:             tuple.ExpiredAt.Int64(),
		Status:                status,
	}
	if tuple.FulfilledBy != (common.Address{}) {
		state.FulfilledBy = tuple.FulfilledBy.Hex()
	}
	return state, nil
}

// statusFromState maps the contract state code to a storable status.
// Created proposals read as DEPOSITED; the mirror does not track the
// pre-deposit window separately.
func statusFromState(code uint8) (domain.ProposalStatus, error) {
	switch code {
	case stateCreated, stateDeposited:
		return domain.ProposalStatusDeposited, nil
	case stateFulfilled:
		return domain.ProposalStatusFulfilled, nil
	case stateCanceled:
		return domain.ProposalStatusCanceled, nil
	case stateSwapped:
		return domain.ProposalStatusSwapped, nil
	case stateRedeemed:
		return domain.ProposalStatusRedeemed, nil
	case stateWithdrawn:
		return domain.ProposalStatusWithdrawn, nil
	}
	return "", fmt.Errorf("unknown proposal state code %d", code)
}
