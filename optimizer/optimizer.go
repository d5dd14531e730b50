// Package optimizer is Atlas's C12: three idempotent bytecode-to-bytecode
// passes run over the output of the compiler (C11) before the VM (C13)
// executes it (spec.md §4.12). Grounded on the staged, single-purpose-pass
// convention protocompile's experimental/ir lowering steps use (each pass
// does one rewrite and reports what it touched, rather than one monolithic
// walk) — applied here to constant folding, dead code elimination, and
// peephole simplification instead of IR lowering.
package optimizer

import "github.com/atlas-lang/atlas/bytecode"

// Level selects how aggressively Optimize rewrites a chunk (spec.md §4.12
// "Optimizer levels: 0 (none, for debugging), 1 (folding only), 2 (all)").
type Level int

const (
	LevelNone Level = iota
	LevelFold
	LevelAll
)

// Stats reports what a pass run actually changed (spec.md §4.12 "The
// optimizer reports counts of modifications and bytes saved").
type Stats struct {
	ConstantsFolded int
	PeepholeHits    int
	DeadInstrs      int
	BytesBefore     int
	BytesAfter      int
}

func (s Stats) BytesSaved() int { return s.BytesBefore - s.BytesAfter }

// Optimize rewrites chunk at the given level and returns the new chunk
// plus a report of what changed. chunk itself is never mutated. Nested
// FuncProto constants (lambda/function bodies) are optimized recursively
// at the same level.
func Optimize(chunk *bytecode.Chunk, level Level) (*bytecode.Chunk, Stats) {
	out, stats := optimizeChunk(chunk, level)
	stats.BytesBefore = len(chunk.Code)
	stats.BytesAfter = len(out.Code)
	return out, stats
}

func optimizeChunk(chunk *bytecode.Chunk, level Level) (*bytecode.Chunk, Stats) {
	if level == LevelNone {
		return cloneUnoptimized(chunk), Stats{BytesBefore: len(chunk.Code), BytesAfter: len(chunk.Code)}
	}

	cur := decode(chunk)
	origCount := len(cur)
	mergeAlias := map[int]int{}
	var stats Stats

	for {
		changed := false

		before := len(cur)
		if folded, did := foldConstants(cur, mergeAlias, chunk.Constants); did {
			cur = folded
			changed = true
			stats.ConstantsFolded += before - len(cur)
		}

		if level < LevelAll {
			if !changed {
				break
			}
			continue
		}

		before = len(cur)
		if swept, did := deadCode(cur); did {
			cur = swept
			changed = true
			stats.DeadInstrs += before - len(cur)
		}
		before = len(cur)
		if simplified, did := peephole(cur); did {
			cur = simplified
			changed = true
			stats.PeepholeHits += before - len(cur)
		}

		if !changed {
			break
		}
	}

	deletedAlias := finalizeAliases(cur, origCount, mergeAlias)
	result := encode(cur, chunk.Constants, chunk.NumLocals, level, deletedAlias)
	stats.BytesBefore = len(chunk.Code)
	stats.BytesAfter = len(result.Code)
	return result, stats
}

// finalizeAliases resolves, for every original instruction id (and the
// endID sentinel), where a jump that used to target it should now land:
// itself if it survived, its merge target if constant folding absorbed
// it, or the next surviving id in program order if a peephole/dead-code
// pass deleted it outright with no replacement.
func finalizeAliases(cur []*inst, origCount int, mergeAlias map[int]int) map[int]int {
	survivor := make(map[int]bool, len(cur))
	for _, in := range cur {
		survivor[in.id] = true
	}
	alias := map[int]int{endID: endID}
	next := endID
	for id := origCount - 1; id >= 0; id-- {
		if survivor[id] {
			alias[id] = id
			next = id
			continue
		}
		if t, ok := mergeAlias[id]; ok {
			alias[id] = t
			continue
		}
		alias[id] = next
	}
	return alias
}

// cloneUnoptimized rebuilds chunk with a freshly interned constant pool
// (recursing into nested FuncProtos at LevelNone) but no instruction
// rewriting, so level 0 still returns an independently owned artifact.
func cloneUnoptimized(chunk *bytecode.Chunk) *bytecode.Chunk {
	cur := decode(chunk)
	alias := map[int]int{endID: endID}
	for _, in := range cur {
		alias[in.id] = in.id
	}
	return encode(cur, chunk.Constants, chunk.NumLocals, LevelNone, alias)
}
