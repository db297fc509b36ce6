package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// proposalSeed is the static seed prefix of swap proposal accounts.
var proposalSeed = []byte("SEED::SWAP::PROPOSAL_SEED")

// ErrNoViableBump means no off-curve address exists for the seeds, which
// is astronomically unlikely for well-formed input.
var ErrNoViableBump = errors.New("no viable program address bump")

// FindProposalAddress derives the account address holding the proposal
// with the given id under the swap program.
func FindProposalAddress(programID, proposalID string) (string, error) {
	addr, _, err := findProgramAddress([][]byte{proposalSeed, []byte(proposalID)}, programID)
	return addr, err
}

// findProgramAddress searches bump seeds from 255 downward for the first
// derived address that is not a curve point.
func findProgramAddress(seeds [][]byte, programID string) (string, byte, error) {
	program, err := base58.Decode(programID)
	if err != nil || len(program) != 32 {
		return "", 0, fmt.Errorf("invalid program id %q", programID)
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(program)
		h.Write([]byte("ProgramDerivedAddress"))
		sum := h.Sum(nil)

		if !isOnCurveBytes(sum) {
			return base58.Encode(sum), byte(bump), nil
		}
	}
	return "", 0, ErrNoViableBump
}
