package embeddings

import (
	"fmt"
)

// IDToPath maps an item id to its blob path relative to the store root,
// fanning ids out over 1000 directories to keep listings small.
func IDToPath(id int64) string {
	return fmt.Sprintf("%03d/%d.emb", id%1000, id)
}
