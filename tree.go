// Package algebra provides an arena-backed term-rewriting kernel for
// elementary algebra.
//
// Design goals:
//   - Expressions live in a Tree of index-addressed slots, not a pointer graph
//   - Local combination rules (constant folding, like terms, exponents)
//   - A non-recursive fixpoint driver with an explicit step limit
//   - Deterministic canonical ordering and TeX output
//   - JSON and MCP-ready tool APIs for embedding in services and CLIs
package algebra

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
)

// ============================================================
// Kinds and references
// ============================================================

// Kind tags the variant held by a node slot.
type Kind uint8

const (
	KindNone Kind = iota
	KindNumber
	KindSymbol
	KindAdd
	KindMul
	KindDiv
	KindPow
	KindRoot
)

var kindNames = [...]string{
	KindNone:   "none",
	KindNumber: "num",
	KindSymbol: "sym",
	KindAdd:    "add",
	KindMul:    "mul",
	KindDiv:    "div",
	KindPow:    "pow",
	KindRoot:   "root",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsLeaf reports whether k is a Number or a Symbol.
func (k Kind) IsLeaf() bool { return k == KindNumber || k == KindSymbol }

// IsGroup reports whether nodes of kind k have children.
func (k Kind) IsGroup() bool { return k >= KindAdd && k <= KindRoot }

// Side selects a child slot.
type Side uint8

const (
	Left Side = iota
	Right
)

const absentIndex = math.MaxUint32

// Ref addresses a node slot inside one Tree. The generation guards against
// dereferencing a slot that was removed and reused since the Ref was taken.
type Ref struct {
	index uint32
	gen   uint32
}

// Absent marks an unused child slot.
var Absent = Ref{index: absentIndex}

func (r Ref) IsAbsent() bool { return r.index == absentIndex }

// Index returns the slot index, or -1 for Absent.
func (r Ref) Index() int {
	if r.IsAbsent() {
		return -1
	}
	return int(r.index)
}

func (r Ref) String() string {
	if r.IsAbsent() {
		return "ref(absent)"
	}
	return fmt.Sprintf("ref(%d@%d)", r.index, r.gen)
}

// Node is the contents of one slot. Value is meaningful for numbers, Name
// for symbols, Left and Right for groups.
type Node struct {
	Kind  Kind
	Value int
	Name  rune
	Left  Ref
	Right Ref
}

var (
	// ErrInvalidRef is raised (by panic) when an absent, freed or foreign
	// reference is dereferenced. It always indicates a logic defect.
	ErrInvalidRef = errors.New("algebra: invalid node reference")
	// ErrDisposed is raised (by panic) when a disposed tree is used.
	ErrDisposed = errors.New("algebra: tree has been disposed")
)

// ============================================================
// Tree: the node arena
// ============================================================

type slot struct {
	node Node
	gen  uint32
}

// Tree owns every node of one expression. It is not safe for concurrent use.
type Tree struct {
	id       uuid.UUID
	slots    []slot
	free     []uint32
	live     int
	root     Ref
	disposed bool

	// journal records allocations while an exported builder runs, so a
	// failed build can release what it allocated.
	journal   []Ref
	recording bool
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{id: uuid.New(), root: Absent}
}

func (t *Tree) ID() uuid.UUID { return t.id }
func (t *Tree) Root() Ref     { return t.root }
func (t *Tree) Len() int      { return t.live }
func (t *Tree) Disposed() bool {
	return t.disposed
}

// SetRoot designates ref as the root. Absent empties the tree logically.
func (t *Tree) SetRoot(ref Ref) {
	if !ref.IsAbsent() {
		t.slotOf(ref)
	}
	t.root = ref
}

// Dispose releases all nodes at once. Any Ref into the tree becomes invalid.
func (t *Tree) Dispose() {
	if t.disposed {
		slog.Default().Warn("algebra: dispose called on a tree that has already been disposed", "tree", t.id)
		return
	}
	t.disposed = true
	t.slots = nil
	t.free = nil
	t.live = 0
	t.root = Absent
}

func (t *Tree) slotOf(ref Ref) *slot {
	if t.disposed {
		panic(ErrDisposed)
	}
	if ref.IsAbsent() || int(ref.index) >= len(t.slots) {
		panic(fmt.Errorf("%w: %v", ErrInvalidRef, ref))
	}
	s := &t.slots[ref.index]
	if s.gen != ref.gen || s.node.Kind == KindNone {
		panic(fmt.Errorf("%w: %v is stale", ErrInvalidRef, ref))
	}
	return s
}

// Valid reports whether ref currently addresses a live slot of t.
func (t *Tree) Valid(ref Ref) bool {
	if t.disposed || ref.IsAbsent() || int(ref.index) >= len(t.slots) {
		return false
	}
	s := t.slots[ref.index]
	return s.gen == ref.gen && s.node.Kind != KindNone
}

// Alloc returns a fresh or reclaimed slot of the given kind with absent
// children.
func (t *Tree) Alloc(kind Kind) Ref {
	if t.disposed {
		panic(ErrDisposed)
	}
	if kind == KindNone {
		panic(fmt.Errorf("%w: cannot allocate a none node", ErrInvalidRef))
	}
	n := Node{Kind: kind, Left: Absent, Right: Absent}
	t.live++
	if k := len(t.free); k > 0 {
		idx := t.free[k-1]
		t.free = t.free[:k-1]
		s := &t.slots[idx]
		s.node = n
		return t.record(Ref{index: idx, gen: s.gen})
	}
	if uint64(len(t.slots)) >= absentIndex {
		panic(fmt.Errorf("%w: arena exhausted", ErrInvalidRef))
	}
	t.slots = append(t.slots, slot{node: n, gen: 1})
	return t.record(Ref{index: uint32(len(t.slots) - 1), gen: 1})
}

func (t *Tree) record(r Ref) Ref {
	if t.recording {
		t.journal = append(t.journal, r)
	}
	return r
}

// build runs fn and, when it fails, removes every node fn allocated. Nodes
// that existed before the call are left alone.
func (t *Tree) build(fn func() (Ref, error)) (Ref, error) {
	if t.recording {
		return fn()
	}
	t.recording = true
	defer func() {
		t.recording = false
		t.journal = t.journal[:0]
	}()
	root, err := fn()
	if err != nil {
		for i := len(t.journal) - 1; i >= 0; i-- {
			if t.Valid(t.journal[i]) {
				t.Remove(t.journal[i])
			}
		}
		return Absent, err
	}
	return root, nil
}

// Remove tags the slot as none. Its contents are otherwise irrelevant and
// the slot may be handed out again by Alloc.
func (t *Tree) Remove(ref Ref) {
	s := t.slotOf(ref)
	s.node = Node{Kind: KindNone, Left: Absent, Right: Absent}
	s.gen++
	t.live--
	t.free = append(t.free, ref.index)
}

// Node returns a copy of the slot contents.
func (t *Tree) Node(ref Ref) Node { return t.slotOf(ref).node }

// Kind returns the kind of ref, or KindNone when ref is absent.
func (t *Tree) Kind(ref Ref) Kind {
	if ref.IsAbsent() {
		return KindNone
	}
	return t.slotOf(ref).node.Kind
}

func (t *Tree) Left(ref Ref) Ref  { return t.slotOf(ref).node.Left }
func (t *Tree) Right(ref Ref) Ref { return t.slotOf(ref).node.Right }

// ============================================================
// Construction
// ============================================================

func (t *Tree) N(v int) Ref {
	r := t.Alloc(KindNumber)
	t.slots[r.index].node.Value = v
	return r
}

func (t *Tree) S(name rune) Ref {
	r := t.Alloc(KindSymbol)
	t.slots[r.index].node.Name = name
	return r
}

// Group allocates a binary node of the given kind over left and right.
func (t *Tree) Group(kind Kind, left, right Ref) Ref {
	if !kind.IsGroup() {
		panic(fmt.Errorf("%w: %s is not a group kind", ErrInvalidRef, kind))
	}
	r := t.Alloc(kind)
	s := &t.slots[r.index]
	s.node.Left = left
	s.node.Right = right
	return r
}

// AddOf builds a right-leaning chain of sums: AddOf(a, b, c) is a+(b+c).
func (t *Tree) AddOf(terms ...Ref) Ref { return t.chain(KindAdd, terms) }

// MulOf builds a right-leaning chain of products.
func (t *Tree) MulOf(factors ...Ref) Ref { return t.chain(KindMul, factors) }

func (t *Tree) PowOf(base, exp Ref) Ref       { return t.Group(KindPow, base, exp) }
func (t *Tree) DivOf(num, den Ref) Ref        { return t.Group(KindDiv, num, den) }
func (t *Tree) RootOf(radicand, index Ref) Ref { return t.Group(KindRoot, radicand, index) }

func (t *Tree) chain(kind Kind, refs []Ref) Ref {
	switch len(refs) {
	case 0:
		return Absent
	case 1:
		return refs[0]
	}
	acc := refs[len(refs)-1]
	for i := len(refs) - 2; i >= 0; i-- {
		acc = t.Group(kind, refs[i], acc)
	}
	return acc
}

// Attach sets one child slot of parent.
func (t *Tree) Attach(parent Ref, side Side, child Ref) {
	s := t.slotOf(parent)
	if !s.node.Kind.IsGroup() {
		panic(fmt.Errorf("%w: cannot attach a child to a %s node", ErrInvalidRef, s.node.Kind))
	}
	if side == Left {
		s.node.Left = child
	} else {
		s.node.Right = child
	}
}

// AttachNew allocates a node of kind and attaches it as a child of parent.
func (t *Tree) AttachNew(parent Ref, side Side, kind Kind) Ref {
	child := t.Alloc(kind)
	t.Attach(parent, side, child)
	return child
}

func (t *Tree) SetValue(ref Ref, v int) {
	s := t.slotOf(ref)
	if s.node.Kind != KindNumber {
		panic(fmt.Errorf("%w: SetValue on a %s node", ErrInvalidRef, s.node.Kind))
	}
	s.node.Value = v
}

func (t *Tree) SetName(ref Ref, name rune) {
	s := t.slotOf(ref)
	if s.node.Kind != KindSymbol {
		panic(fmt.Errorf("%w: SetName on a %s node", ErrInvalidRef, s.node.Kind))
	}
	s.node.Name = name
}

// ============================================================
// Cloning and grafting
// ============================================================

// Clone deep-copies the subtree at ref within t.
func (t *Tree) Clone(ref Ref) Ref { return t.CloneFrom(t, ref) }

// CloneFrom deep-copies the subtree at ref of src into t. src may be t.
// The copy holds no references into src.
func (t *Tree) CloneFrom(src *Tree, ref Ref) Ref {
	n := src.Node(ref)
	out := t.Alloc(n.Kind)
	switch n.Kind {
	case KindNumber:
		t.slots[out.index].node.Value = n.Value
		return out
	case KindSymbol:
		t.slots[out.index].node.Name = n.Name
		return out
	}
	left, right := Absent, Absent
	if !n.Left.IsAbsent() {
		left = t.CloneFrom(src, n.Left)
	}
	if !n.Right.IsAbsent() {
		right = t.CloneFrom(src, n.Right)
	}
	// Alloc may have grown the slice; index again.
	s := &t.slots[out.index]
	s.node.Left = left
	s.node.Right = right
	return out
}

// Graft combines the content of sub into t. When t has no root, or its
// root is a group still missing its right operand, the two trees swap
// storage wholesale. Otherwise sub's root is cloned into t and a new root
// Add(clone, previousRoot) is synthesized. sub stays owned by the caller.
func (t *Tree) Graft(sub *Tree) {
	if t.disposed || sub.disposed {
		panic(ErrDisposed)
	}
	if sub.root.IsAbsent() {
		return
	}
	if t.root.IsAbsent() || (t.Kind(t.root).IsGroup() && t.Right(t.root).IsAbsent()) {
		t.slots, sub.slots = sub.slots, t.slots
		t.free, sub.free = sub.free, t.free
		t.live, sub.live = sub.live, t.live
		t.root, sub.root = sub.root, t.root
		return
	}
	clone := t.CloneFrom(sub, sub.root)
	t.root = t.Group(KindAdd, clone, t.root)
}

// ============================================================
// Equality and reachability
// ============================================================

// Equal reports whether the subtree a of t and the subtree b of other are
// structurally identical, values included.
func (t *Tree) Equal(a Ref, other *Tree, b Ref) bool {
	if a.IsAbsent() || b.IsAbsent() {
		return a.IsAbsent() && b.IsAbsent()
	}
	na, nb := t.Node(a), other.Node(b)
	if na.Kind != nb.Kind {
		return false
	}
	switch na.Kind {
	case KindNumber:
		return na.Value == nb.Value
	case KindSymbol:
		return na.Name == nb.Name
	}
	return t.Equal(na.Left, other, nb.Left) && t.Equal(na.Right, other, nb.Right)
}

// reachable marks every slot index reachable from ref.
func (t *Tree) reachable(ref Ref, seen map[uint32]bool) map[uint32]bool {
	if seen == nil {
		seen = make(map[uint32]bool)
	}
	if ref.IsAbsent() {
		return seen
	}
	stack := []Ref{ref}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[r.index] {
			continue
		}
		seen[r.index] = true
		n := t.Node(r)
		if !n.Kind.IsGroup() {
			continue
		}
		if !n.Right.IsAbsent() {
			stack = append(stack, n.Right)
		}
		if !n.Left.IsAbsent() {
			stack = append(stack, n.Left)
		}
	}
	return seen
}

// Collect removes every live slot that is not reachable from the root and
// returns how many were removed.
func (t *Tree) Collect() int {
	if t.disposed {
		panic(ErrDisposed)
	}
	seen := t.reachable(t.root, nil)
	removed := 0
	for i := range t.slots {
		s := &t.slots[i]
		if s.node.Kind == KindNone || seen[uint32(i)] {
			continue
		}
		t.Remove(Ref{index: uint32(i), gen: s.gen})
		removed++
	}
	return removed
}

// replace overwrites dst with the contents of src, frees src and every slot
// of dst's old subtree that the new contents no longer reference.
func (t *Tree) replace(dst, src Ref) {
	before := t.reachable(dst, nil)
	t.slotOf(dst).node = t.Node(src)
	t.Remove(src)
	after := t.reachable(dst, nil)
	for idx := range before {
		if after[idx] || t.slots[idx].node.Kind == KindNone {
			continue
		}
		t.Remove(Ref{index: idx, gen: t.slots[idx].gen})
	}
}
