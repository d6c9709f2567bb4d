// Package upsert merges freshly extracted sub-records into a Person's stored
// collection by natural key.
//
// Candidates are first folded by key: incomplete ones are skipped and
// repeated keys inside one batch collapse into a single candidate, the later
// one winning. Each folded candidate is then looked up once in an index built
// from the stored collection. Hits overwrite the stored non-key fields when
// any differ, misses are appended.
package upsert

import (
	"vitae/internal/profile/dates"
)

// Result is the outcome of one category upsert. Records is the full updated
// collection; Inserted entries have zero IDs, Updated entries keep theirs.
type Result[T any] struct {
	Records  []T
	Inserted []T
	Updated  []T
	Skipped  int
}

// Changed reports whether the upsert wrote anything.
func (r Result[T]) Changed() bool {
	return len(r.Inserted) > 0 || len(r.Updated) > 0
}

// Upserter converts extraction candidates into records and merges them.
type Upserter struct {
	dates *dates.Normalizer
}

// New returns an Upserter that normalizes dates with n. A nil n drops
// unparseable dates silently.
func New(n *dates.Normalizer) *Upserter {
	return &Upserter{dates: n}
}

func (u *Upserter) date(raw string) dates.Value {
	return u.dates.Normalize(raw)
}

// keyFunc returns a record's natural key, or false when a required key
// component is missing.
type keyFunc[T any] func(*T) (string, bool)

// mergeFunc copies src's non-key fields into dst and reports whether any of
// them differed.
type mergeFunc[T any] func(dst *T, src T) bool

func apply[T any](existing, candidates []T, key keyFunc[T], merge mergeFunc[T]) Result[T] {
	res := Result[T]{Records: make([]T, len(existing), len(existing)+len(candidates))}
	copy(res.Records, existing)

	batch, keys, skipped := fold(candidates, key, merge)
	res.Skipped = skipped

	index := make(map[string]int, len(existing)+len(batch))
	for i := range res.Records {
		if k, ok := key(&res.Records[i]); ok {
			if _, seen := index[k]; !seen {
				index[k] = i
			}
		}
	}

	for j, c := range batch {
		if i, hit := index[keys[j]]; hit {
			if merge(&res.Records[i], c) {
				res.Updated = append(res.Updated, res.Records[i])
			}
			continue
		}
		res.Records = append(res.Records, c)
		index[keys[j]] = len(res.Records) - 1
		res.Inserted = append(res.Inserted, c)
	}
	return res
}

// fold collapses candidates sharing a key into one, in first-seen order.
// Later candidates are merged over earlier ones so the last value of every
// field wins.
func fold[T any](candidates []T, key keyFunc[T], merge mergeFunc[T]) ([]T, []string, int) {
	var (
		batch   []T
		keys    []string
		skipped int
	)
	seen := make(map[string]int, len(candidates))
	for _, c := range candidates {
		k, ok := key(&c)
		if !ok {
			skipped++
			continue
		}
		if i, dup := seen[k]; dup {
			merge(&batch[i], c)
			continue
		}
		seen[k] = len(batch)
		batch = append(batch, c)
		keys = append(keys, k)
	}
	return batch, keys, skipped
}

func setText(dst *string, src string) bool {
	if *dst == src {
		return false
	}
	*dst = src
	return true
}

func setDate(dst *dates.Value, src dates.Value) bool {
	if dst.Equal(src) {
		return false
	}
	*dst = src
	return true
}
