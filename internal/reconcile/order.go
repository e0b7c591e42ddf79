package reconcile

import (
	"slices"

	"github.com/sakif/portfolio/internal/model"
)

// OrderComments sorts pinned comments first, then newest first. A comment
// with no timestamp counts as the oldest possible. Equal comments keep
// their input order. The input slice is not modified.
func OrderComments(comments []model.Comment) []model.Comment {
	out := slices.Clone(comments)
	if out == nil {
		out = []model.Comment{}
	}

	slices.SortStableFunc(out, func(a, b model.Comment) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return 0
		case a.CreatedAt == nil:
			return 1
		case b.CreatedAt == nil:
			return -1
		}
		// descending
		return b.CreatedAt.Compare(*a.CreatedAt)
	})
	return out
}
