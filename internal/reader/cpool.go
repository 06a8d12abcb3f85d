package reader

import (
	"fmt"

	"github.com/parttimenerd/jfr-redact-sub000/internal/format"
	"github.com/parttimenerd/jfr-redact-sub000/jfr"
	"github.com/parttimenerd/jfr-redact-sub000/pkg/types"
)

// poolSet indexes every checkpoint event of a chunk and resolves entries
// lazily. Entries are memoized; an entry that (transitively) references
// itself resolves to null rather than recursing forever.
type poolSet struct {
	chunk   *Chunk
	entries map[poolKey]*poolEntry
}

type poolKey struct {
	class jfr.TypeID
	id    uint64
}

type poolEntry struct {
	off       int
	resolved  bool
	resolving bool
	value     jfr.Value
}

const maxPoolEntries = 1 << 24

func newPoolSet(c *Chunk) *poolSet {
	return &poolSet{chunk: c, entries: make(map[poolKey]*poolEntry)}
}

// index walks the checkpoint chain starting at off (each checkpoint stores a
// delta to its predecessor) and records the byte offset of every pool entry.
func (p *poolSet) index(off int) error {
	seen := map[int]bool{}
	for off > 0 && !seen[off] {
		seen[off] = true
		prev, err := p.indexOne(off)
		if err != nil {
			return err
		}
		if prev == 0 {
			break
		}
		off += prev // delta is negative or zero
	}
	return nil
}

func (p *poolSet) indexOne(off int) (delta int, err error) {
	b := p.chunk.data
	size, n, err := format.Uvarint(b, off)
	if err != nil {
		return 0, fmt.Errorf("reader: checkpoint size: %w", err)
	}
	if off+int(size) > len(b) {
		return 0, &types.Error{Kind: types.ErrKindCorrupt, Msg: "reader: checkpoint overruns chunk"}
	}
	pos := off + n
	typeID, n, err := format.Uvarint(b, pos)
	if err != nil {
		return 0, err
	}
	if typeID != format.CheckpointTypeID {
		return 0, &types.Error{Kind: types.ErrKindCorrupt, Msg: fmt.Sprintf("reader: expected checkpoint event, got type %d", typeID)}
	}
	pos += n
	// startTicks, duration
	for i := 0; i < 2; i++ {
		_, n, err = format.Uvarint(b, pos)
		if err != nil {
			return 0, err
		}
		pos += n
	}
	d, n, err := format.Varint(b, pos)
	if err != nil {
		return 0, err
	}
	pos += n
	if pos >= len(b) {
		return 0, format.ErrTruncated
	}
	pos++ // flush flag
	poolCnt, n, err := format.Uvarint(b, pos)
	if err != nil {
		return 0, err
	}
	pos += n
	if poolCnt > maxPoolEntries {
		return 0, format.ErrSanityLimit
	}
	for i := uint64(0); i < poolCnt; i++ {
		classID, n, err := format.Uvarint(b, pos)
		if err != nil {
			return 0, err
		}
		pos += n
		entryCnt, n, err := format.Uvarint(b, pos)
		if err != nil {
			return 0, err
		}
		pos += n
		if entryCnt > maxPoolEntries {
			return 0, format.ErrSanityLimit
		}
		t, ok := p.chunk.Types[jfr.TypeID(classID)]
		if !ok {
			return 0, &types.Error{Kind: types.ErrKindCorrupt, Msg: fmt.Sprintf("reader: pool for unknown class %d", classID)}
		}
		for j := uint64(0); j < entryCnt; j++ {
			id, n, err := format.Uvarint(b, pos)
			if err != nil {
				return 0, err
			}
			pos += n
			key := poolKey{class: jfr.TypeID(classID), id: id}
			if _, dup := p.entries[key]; !dup {
				p.entries[key] = &poolEntry{off: pos}
			}
			// Skip over the entry payload to find the next id.
			next, err := p.chunk.skipValue(t, pos)
			if err != nil {
				return 0, fmt.Errorf("reader: pool entry %s/%d: %w", t.Name, id, err)
			}
			pos = next
		}
	}
	return int(d), nil
}

// resolve returns the pooled value for (class, id). Id 0 is the null
// reference. Unknown ids resolve to null: the recording writer may have
// flushed a pool segment we do not retain.
func (p *poolSet) resolve(t *jfr.Type, id uint64) (jfr.Value, error) {
	if id == 0 {
		return jfr.Null, nil
	}
	e, ok := p.entries[poolKey{class: t.ID, id: id}]
	if !ok {
		return jfr.Null, nil
	}
	if e.resolved {
		return e.value, nil
	}
	if e.resolving {
		// Cycle through the pool graph; break with null.
		return jfr.Null, nil
	}
	e.resolving = true
	v, _, err := p.chunk.decodeInline(t, e.off)
	e.resolving = false
	if err != nil {
		return jfr.Null, err
	}
	e.resolved = true
	e.value = v
	return v, nil
}
