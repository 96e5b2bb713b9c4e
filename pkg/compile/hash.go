package compile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/sunstflower/modelsee/pkg/graph"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// inputHash fingerprints a compile request: the serialized graph plus the
// options that affect the output. Two runs with the same hash produce
// byte-identical code, which lets callers skip recompiles.
func inputHash(g *graph.Graph, opts Options) string {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return ""
	}
	extra, _ := json.Marshal(opts)
	return Hash(append(data, extra...))
}
