package public

// status summarizes the node for the status endpoint.
type status struct {
	NodeID          string `json:"node_id"`
	Height          int    `json:"height"`
	LatestBlockHash string `json:"latest_block_hash"`
	KnownPeers      int    `json:"known_peers"`
}

// newBlock is the content staged for the next mining operation.
type newBlock struct {
	Payload string `json:"payload" validate:"required"`
}
