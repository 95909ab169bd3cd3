package shared

import "context"

// NumberGenerator hands back a unique formatted document number per
// (prefix, year). Implementations must guarantee one number per call even
// under concurrent callers; the reference implementation locks the sequence
// row for update while incrementing.
type NumberGenerator interface {
	Generate(ctx context.Context, prefix string, year int) (string, error)
}
