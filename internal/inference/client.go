// Package inference talks to the model server that produces the extra
// embedding for a row from its scalar inputs. The transport is the
// KServe/Triton ModelInfer RPC.
package inference

type Client interface {
	// ExtraEmbedding runs the model on one (offerable, created_at) pair and
	// returns the output vector.
	ExtraEmbedding(offerable, createdAt float32) ([]float32, error)
}
