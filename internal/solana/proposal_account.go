package solana

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"swap-mirror/internal/domain"
)

// proposalDiscriminator tags swap proposal accounts. The first 8 bytes
// of every program account identify its type.
var proposalDiscriminator = [8]byte{0x8f, 0x2b, 0xd0, 0x3e, 0x51, 0x97, 0x6a, 0xc4}

// OwnerMemcmpOffset is the byte offset of the owner pubkey inside a
// proposal account. Account layout:
//
//	discriminator [8] | owner [32] | id len [4] | id [len] |
//	fulfilled_by option [1(+32)] | fulfilled_with_option_id option [1(+4+len)] |
//	expired_at i64 | status u8
//
// Placing the fixed-size owner before the variable-length id keeps the
// owner addressable by getProgramAccounts memcmp filters.
const OwnerMemcmpOffset = 8

// On-chain status codes.
const (
	stateCreated   = 0
	stateDeposited = 1
	stateFulfilled = 2
	stateCanceled  = 3
	stateSwapped   = 4
	stateRedeemed  = 5
	stateWithdrawn = 6
)

// Decode errors.
var (
	ErrNotProposalAccount = errors.New("not a swap proposal account")
	ErrTruncatedAccount   = errors.New("truncated swap proposal account")
)

// ProposalAccount is the decoded on-chain state of a swap proposal.
type ProposalAccount struct {
	ID                    string
	Owner                 string // base58
	FulfilledBy           string // base58, empty if unset
	FulfilledWithOptionID string
	ExpiredAt             int64 // unix seconds
	Status                domain.ProposalStatus
}

// DecodeProposalAccount decodes base64 account data into a ProposalAccount.
func DecodeProposalAccount(data string) (*ProposalAccount, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}

	d := &accountDecoder{buf: raw}

	disc, err := d.bytes(8)
	if err != nil {
		return nil, err
	}
	if [8]byte(disc) != proposalDiscriminator {
		return nil, ErrNotProposalAccount
	}

	owner, err := d.pubkey()
	if err != nil {
		return nil, err
	}

	id, err := d.str()
	if err != nil {
		return nil, err
	}

	fulfilledBy, err := d.optionPubkey()
	if err != nil {
		return nil, err
	}

	fulfilledWith, err := d.optionStr()
	if err != nil {
		return nil, err
	}

	expiredAt, err := d.i64()
	if err != nil {
		return nil, err
	}

	stateCode, err := d.u8()
	if err != nil {
		return nil, err
	}

	status, err := statusFromState(stateCode)
	if err != nil {
		return nil, err
	}

	return &ProposalAccount{
		ID:                    id,
		Owner:                 owner,
		FulfilledBy:           fulfilledBy,
		FulfilledWithOptionID: fulfilledWith,
		ExpiredAt:             expiredAt,
		Status:                status,
	}, nil
}

// statusFromState maps the on-chain state code to a storable status.
// A freshly created proposal with no deposit yet reads as DEPOSITED;
// the mirror does not track the pre-deposit window separately.
func statusFromState(code byte) (domain.ProposalStatus, error) {
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

// IsOnCurve reports whether a base58 pubkey is a valid ed25519 curve
// point. Wallet owners are on-curve; program-derived addresses are not.
func IsOnCurve(pubkey string) bool {
	raw, err := base58.Decode(pubkey)
	if err != nil || len(raw) != 32 {
		return false
	}
	return isOnCurveBytes(raw)
}

func isOnCurveBytes(raw []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

// accountDecoder reads borsh-encoded fields from account data.
type accountDecoder struct {
	buf []byte
	off int
}

func (d *accountDecoder) bytes(n int) ([]byte, error) {
	if d.off+n > len(d.buf) {
		return nil, ErrTruncatedAccount
	}
	out := d.buf[d.off : d.off+n]
	d.off += n
	return out, nil
}

func (d *accountDecoder) u8() (byte, error) {
	b, err := d.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *accountDecoder) i64() (int64, error) {
	b, err := d.bytes(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (d *accountDecoder) str() (string, error) {
	lb, err := d.bytes(4)
	if err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lb)
	b, err := d.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *accountDecoder) pubkey() (string, error) {
	b, err := d.bytes(32)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

func (d *accountDecoder) optionPubkey() (string, error) {
	tag, err := d.u8()
	if err != nil {
		return "", err
	}
	if tag == 0 {
		return "", nil
	}
	return d.pubkey()
}

func (d *accountDecoder) optionStr() (string, error) {
	tag, err := d.u8()
	if err != nil {
		return "", err
	}
	if tag == 0 {
		return "", nil
	}
	return d.str()
}
