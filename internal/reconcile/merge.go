// Package reconcile combines record collections from several sources.
//
// Every source (document store, local cache, bundled dataset) yields a
// possibly overlapping list of the same logical records. Merge keeps the
// first copy of each merge key in priority order and drops the rest, so a
// record fetched remotely shadows its cached and bundled copies.
//
// Everything here is pure: no I/O, no logging, inputs are never modified.
package reconcile

// KeyFunc derives the merge key of a record. Two records with the same key
// are the same logical entity.
type KeyFunc[T any] func(T) string

// Merge returns primary followed by the records of secondary whose keys
// were not already seen. Within either input, a repeated key also keeps
// its first occurrence only.
//
// Output order is first-seen order. The result is always a new slice.
func Merge[T any](primary, secondary []T, keyOf KeyFunc[T]) []T {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	out := make([]T, 0, len(primary)+len(secondary))

	for _, batch := range [2][]T{primary, secondary} {
		for _, rec := range batch {
			k := keyOf(rec)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}

// Compose folds Merge over tiers in precedence order:
// Compose(k, remote, cache, static) == Merge(Merge(remote, cache, k), static, k).
func Compose[T any](keyOf KeyFunc[T], tiers ...[]T) []T {
	out := make([]T, 0)
	for _, tier := range tiers {
		out = Merge(out, tier, keyOf)
	}
	return out
}
