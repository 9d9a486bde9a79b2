package consensus

import (
	"errors"

	"github.com/eth2030/eclipsemon/types"
)

// Header validation errors.
var (
	ErrNilHeader         = errors.New("consensus: header is nil")
	ErrNilParent         = errors.New("consensus: parent header is nil")
	ErrInvalidNumber     = errors.New("consensus: block number is not parent+1")
	ErrInvalidParentHash = errors.New("consensus: parentHash does not match the parent header's hash")
	ErrInvalidDifficulty = errors.New("consensus: difficulty does not match the expected value")
	ErrNonZeroPoSDiff    = errors.New("consensus: Paris-or-later block must report zero difficulty")
)

// Validator runs the single-header parent-link and difficulty check.
//
// Clock-skew validation and Proof-of-Work puzzle verification are left as
// TODO, matching a documented gap: an embedder must either accept it or
// extend CommonValidate.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator { return &Validator{} }

// CommonValidate checks, in order: (1) current.number == parent.number+1;
// (2) current.parentHash equals Keccak(parent.raw); (3) if current is
// Paris-or-later, current.difficulty must be zero, otherwise it must equal
// DAA(parent, current).
func (v *Validator) CommonValidate(parent, current *types.HeaderMgr) error {
	if current == nil {
		return ErrNilHeader
	}
	if parent == nil {
		return ErrNilParent
	}

	if current.Number() != parent.Number()+1 {
		return ErrInvalidNumber
	}

	if current.ParentHash() != parent.Hash() {
		return ErrInvalidParentHash
	}

	// TODO: clock-skew validation against the trusted clock is not
	// performed here.
	// TODO: Proof-of-Work puzzle verification is not performed here.

	if current.Number() >= ParisBlock {
		if current.Difficulty() != 0 {
			return ErrNonZeroPoSDiff
		}
		return nil
	}

	expected, err := CalcDifficulty(parent, current)
	if err != nil {
		return err
	}
	if current.Difficulty() != expected {
		return ErrInvalidDifficulty
	}
	return nil
}
