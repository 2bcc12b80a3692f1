package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

const defaultNodeID = 1

var (
	node    *snowflake.Node
	initErr error
	once    sync.Once
)

// Init sets the Snowflake node used for request IDs. Only the first call has
// any effect; server and CLI processes call it at start-up with NODE_ID.
func Init(nodeID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// New returns a time-ordered request ID. Processes that never called Init
// get IDs from node 1.
func New() int64 {
	if err := Init(defaultNodeID); err != nil || node == nil {
		return 0
	}
	return node.Generate().Int64()
}
