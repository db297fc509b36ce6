package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ContractReader defines the escrow contract read interface.
type ContractReader interface {
	// GetProposal reads the current on-chain state of one proposal.
	GetProposal(ctx context.Context, proposalID string) (*ProposalState, error)

	// FindProposalIDsByOwner scans ProposalCreated events for proposals
	// created by the owner address.
	FindProposalIDsByOwner(ctx context.Context, ownerAddress string) ([]string, error)

	// Close releases the underlying RPC connection.
	Close()
}

// Reader reads escrow proposals from an EVM chain over JSON-RPC.
type Reader struct {
	eth      *ethclient.Client
	contract common.Address
	abi      abi.ABI
}

// NewReader dials the RPC endpoint and prepares the contract ABI.
func NewReader(ctx context.Context, rpcURL, contractAddress string) (*Reader, error) {
	parsed, err := parseSwapABI()
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc: %w", err)
	}

	return &Reader{
		eth:      eth,
		contract: common.HexToAddress(contractAddress),
		abi:      parsed,
	}, nil
}

// Compile-time interface check.
var _ ContractReader = (*Reader)(nil)

// GetProposal reads the current on-chain state of one proposal.
func (r *Reader) GetProposal(ctx context.Context, proposalID string) (*ProposalState, error) {
	input, err := r.abi.Pack("getProposal", proposalID)
	if err != nil {
		return nil, fmt.Errorf("pack getProposal: %w", err)
	}

	output, err := r.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &r.contract,
		Data: input,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call getProposal: %w", err)
	}

	return decodeProposal(r.abi, output)
}

// FindProposalIDsByOwner scans ProposalCreated events for proposals
// created by the owner address.
func (r *Reader) FindProposalIDsByOwner(ctx context.Context, ownerAddress string) ([]string, error) {
	event := r.abi.Events["ProposalCreated"]
	ownerTopic := common.BytesToHash(common.LeftPadBytes(common.HexToAddress(ownerAddress).Bytes(), 32))

	logs, err := r.eth.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{r.contract},
		Topics:    [][]common.Hash{{event.ID}, {ownerTopic}},
	})
	if err != nil {
		return nil, fmt.Errorf("filter ProposalCreated logs: %w", err)
	}

	ids := make([]string, 0, len(logs))
	for _, lg := range logs {
		out, err := r.abi.Unpack("ProposalCreated", lg.Data)
		if err != nil {
			return nil, fmt.Errorf("unpack ProposalCreated: %w", err)
		}
		if len(out) != 1 {
			continue
		}
		if id, ok := out[0].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Close releases the underlying RPC connection.
func (r *Reader) Close() {
	r.eth.Close()
}
