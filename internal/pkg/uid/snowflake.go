package uid

import (
	"math/rand/v2"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 IDs.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake constructs a Snowflake generator with a random node number.
//
// Node collisions across replicas are tolerable here: IDs only need to be
// unique within a single deployment's write path.
func NewSnowflake() (*Snowflake, error) {
	node, err := snowflake.NewNode(rand.Int64N(1024))
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new int64 ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
