package vm

import "hash/fnv"

// Persistent Hash Array Mapped Trie (HAMT), adapted from the reference
// module-scope map: same structure-sharing algorithm, retyped to hold
// the interpreter's own Value instead of a generic language object.
// Globals are mutated only by the single mutator (define/set! at top
// level), so persistence buys nothing beyond what a plain Go map would;
// it keeps the reference implementation's structure-sharing idiom. No
// caller keeps or restores an older version of the map: the VM always
// replaces its Globals with the result of Put.

const (
	hamtBits = 5
	hamtSize = 1 << hamtBits
	hamtMask = hamtSize - 1
)

// Globals is an immutable Symbol-name -> Value map; Put returns a new
// map sharing unmodified structure with the old one.
type Globals struct {
	root  *hamtNode
	count int
}

type hamtNode struct {
	bitmap   uint32
	contents []interface{} // *hamtEntry, *hamtNode, or []*hamtEntry (collision bucket)
}

type hamtEntry struct {
	hash  uint32
	key   string
	value Value
}

// NewGlobals returns an empty globals map.
func NewGlobals() *Globals {
	return &Globals{}
}

func (g *Globals) Len() int { return g.count }

// Get looks up a bound global by name.
func (g *Globals) Get(key string) (Value, bool) {
	if g.root == nil {
		return Value{}, false
	}
	return g.root.get(hashString(key), key, 0)
}

// Put returns a new Globals with key bound to value.
func (g *Globals) Put(key string, value Value) *Globals {
	hash := hashString(key)
	var newRoot *hamtNode
	var added bool
	if g.root == nil {
		newRoot, added = (&hamtNode{}).put(hash, key, value, 0)
	} else {
		newRoot, added = g.root.put(hash, key, value, 0)
	}
	count := g.count
	if added {
		count++
	}
	return &Globals{root: newRoot, count: count}
}

func (n *hamtNode) get(hash uint32, key string, shift uint) (Value, bool) {
	idx := (hash >> shift) & hamtMask
	bit := uint32(1) << idx
	if n.bitmap&bit == 0 {
		return Value{}, false
	}
	pos := popcount(n.bitmap & (bit - 1))
	switch v := n.contents[pos].(type) {
	case *hamtEntry:
		if v.hash == hash && v.key == key {
			return v.value, true
		}
		return Value{}, false
	case *hamtNode:
		return v.get(hash, key, shift+hamtBits)
	case []*hamtEntry:
		for _, e := range v {
			if e.hash == hash && e.key == key {
				return e.value, true
			}
		}
	}
	return Value{}, false
}

func (n *hamtNode) put(hash uint32, key string, value Value, shift uint) (*hamtNode, bool) {
	idx := (hash >> shift) & hamtMask
	bit := uint32(1) << idx

	newNode := &hamtNode{bitmap: n.bitmap, contents: make([]interface{}, len(n.contents))}
	copy(newNode.contents, n.contents)

	if n.bitmap&bit == 0 {
		newNode.bitmap |= bit
		pos := popcount(newNode.bitmap & (bit - 1))
		entry := &hamtEntry{hash: hash, key: key, value: value}
		newNode.contents = append(newNode.contents, nil)
		copy(newNode.contents[pos+1:], newNode.contents[pos:])
		newNode.contents[pos] = entry
		return newNode, true
	}

	pos := popcount(n.bitmap & (bit - 1))
	switch v := newNode.contents[pos].(type) {
	case *hamtEntry:
		if v.hash == hash && v.key == key {
			newNode.contents[pos] = &hamtEntry{hash: hash, key: key, value: value}
			return newNode, false
		}
		if shift >= 30 {
			newNode.contents[pos] = []*hamtEntry{v, {hash: hash, key: key, value: value}}
			return newNode, true
		}
		child := &hamtNode{}
		child, _ = child.put(v.hash, v.key, v.value, shift+hamtBits)
		child, added := child.put(hash, key, value, shift+hamtBits)
		newNode.contents[pos] = child
		return newNode, added
	case *hamtNode:
		newChild, added := v.put(hash, key, value, shift+hamtBits)
		newNode.contents[pos] = newChild
		return newNode, added
	case []*hamtEntry:
		for i, e := range v {
			if e.hash == hash && e.key == key {
				bucket := make([]*hamtEntry, len(v))
				copy(bucket, v)
				bucket[i] = &hamtEntry{hash: hash, key: key, value: value}
				newNode.contents[pos] = bucket
				return newNode, false
			}
		}
		bucket := make([]*hamtEntry, len(v)+1)
		copy(bucket, v)
		bucket[len(v)] = &hamtEntry{hash: hash, key: key, value: value}
		newNode.contents[pos] = bucket
		return newNode, true
	}
	return newNode, false
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func popcount(x uint32) int {
	x = x - ((x >> 1) & 0x55555555)
	x = (x & 0x33333333) + ((x >> 2) & 0x33333333)
	x = (x + (x >> 4)) & 0x0f0f0f0f
	x = x + (x >> 8)
	x = x + (x >> 16)
	return int(x & 0x3f)
}
