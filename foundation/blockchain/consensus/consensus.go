// Package consensus implements the longest-valid-chain rule used to
// resolve conflicting views of the chain between peers.
package consensus

import (
	"errors"

	"github.com/minichain/minichain/foundation/blockchain/database"
)

// ErrBothChainsInvalid indicates that neither the local nor the remote
// chain passes validation. There is no safe continuation from this
// state; the caller must treat it as fatal and stop the node instead of
// guessing.
var ErrBothChainsInvalid = errors.New("local and remote chains are both invalid")

// Validator knows how to fully validate a chain of blocks.
type Validator interface {
	ValidateChain(chain []database.Block) error
}

// Resolve chooses between the local chain and a remote candidate. When
// both are valid the longer chain wins and ties keep local, which
// breaks ties deterministically and minimizes churn. When exactly one
// is valid, the valid chain wins.
func Resolve(v Validator, local []database.Block, remote []database.Block, ev func(v string, args ...any)) ([]database.Block, error) {
	localErr := v.ValidateChain(local)
	remoteErr := v.ValidateChain(remote)

	switch {
	case localErr == nil && remoteErr == nil:
		if len(remote) > len(local) {
			ev("consensus: Resolve: remote chain wins: len[%d] over len[%d]", len(remote), len(local))
			return remote, nil
		}
		ev("consensus: Resolve: local chain kept: len[%d] vs len[%d]", len(local), len(remote))
		return local, nil

	case localErr == nil:
		ev("consensus: Resolve: remote chain rejected: %s", remoteErr)
		return local, nil

	case remoteErr == nil:
		ev("consensus: Resolve: local chain invalid, adopting remote: %s", localErr)
		return remote, nil

	default:
		return nil, ErrBothChainsInvalid
	}
}
