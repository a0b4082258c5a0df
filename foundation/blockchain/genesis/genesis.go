// Package genesis maintains the network wide parameters and the
// hardcoded first block every node starts from.
package genesis

// The genesis block is a fixed constant so chains from different nodes
// are comparable. The nonce and hash were computed once; the hash is
// never recomputed because pair validation starts at block 1.
const (
	BlockID   uint64 = 0
	PrevHash         = "genesis"
	Payload          = "genesis!"
	Nonce     uint64 = 2836
	Hash             = "0000f816a87f806bb0073dcf026a64fb40c946b5abee2573702828694d5b4c43"
	Timestamp int64  = 1648000000
)

// Genesis represents the settings a node is constructed with. Every
// node on a network must run with identical values.
type Genesis struct {
	DifficultyPrefix string `json:"difficulty_prefix"` // Required leading bits of a block hash's binary expansion.
}

// New constructs the genesis settings for the specified difficulty.
func New(difficultyPrefix string) Genesis {
	return Genesis{
		DifficultyPrefix: difficultyPrefix,
	}
}
