package console

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies a structure page. Values double as catalog ids.
type Kind string

const (
	KindQueue Kind = "queues"
	KindStack Kind = "stacks"
	KindList  Kind = "lists"
)

// Wording holds the localized phrases a descriptor's messages are built from.
type Wording struct {
	Noun        string // "fila"
	Title       string // "Fila"
	AddPlace    string // "ao final da fila"
	RemovePlace string // "do início da fila"
	PeekPlace   string // "do início da fila"
}

// Descriptor parameterizes the generic console for one structure: the
// operation menu, the challenge script, and how the visualizer adds,
// removes and labels cells.
type Descriptor struct {
	Kind    Kind
	Wording Wording
	Ops     []OpSpec
	Rules   []Rule

	// AddOp and RemoveOp are the operations the visualizer animates.
	AddOp    Op
	RemoveOp Op
	// RemoveAt returns the index RemoveOp takes out of a sequence of length n.
	RemoveAt func(n int) int
	// Role labels cell i of n, or returns "".
	Role func(i, n int) string

	index map[Op]int
}

func (d *Descriptor) lookup(op Op) (*OpSpec, bool) {
	i, ok := d.index[op]
	if !ok {
		return nil, false
	}
	return &d.Ops[i], true
}

// Spec returns the table row for op.
func (d *Descriptor) Spec(op Op) (OpSpec, bool) {
	spec, ok := d.lookup(op)
	if !ok {
		return OpSpec{}, false
	}
	return *spec, true
}

// RemoveRequest builds the visualizer's removal request for a sequence of
// length n.
func (d *Descriptor) RemoveRequest(n int) Request {
	req := Request{Op: d.RemoveOp}
	if spec, ok := d.lookup(d.RemoveOp); ok && spec.NeedsIndex {
		req = req.At(d.RemoveAt(n))
	}
	return req
}

func newDescriptor(d Descriptor) *Descriptor {
	d.index = make(map[Op]int, len(d.Ops))
	for i, spec := range d.Ops {
		if _, dup := d.index[spec.Op]; dup {
			panic(fmt.Sprintf("console: duplicate operation %q in %s", spec.Op, d.Kind))
		}
		d.index[spec.Op] = i
	}
	return &d
}

var registry = map[Kind]*Descriptor{}

func register(d *Descriptor) *Descriptor {
	registry[d.Kind] = d
	return d
}

// Lookup returns the descriptor registered for kind.
func Lookup(kind Kind) (*Descriptor, bool) {
	d, ok := registry[kind]
	return d, ok
}

// Kinds lists the registered structure kinds in a stable order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

var (
	queueWording = Wording{
		Noun:        "fila",
		Title:       "Fila",
		AddPlace:    "ao final da fila",
		RemovePlace: "do início da fila",
		PeekPlace:   "do início da fila",
	}
	stackWording = Wording{
		Noun:        "pilha",
		Title:       "Pilha",
		AddPlace:    "ao topo da pilha",
		RemovePlace: "do topo da pilha",
		PeekPlace:   "do topo da pilha",
	}
	listWording = Wording{
		Noun:        "lista",
		Title:       "Lista",
		AddPlace:    "ao final da lista",
		RemovePlace: "do início da lista",
		PeekPlace:   "do início da lista",
	}
)

// Queue, Stack and List are the built-in structure descriptors.
var (
	Queue = register(newDescriptor(Descriptor{
		Kind:    KindQueue,
		Wording: queueWording,
		Ops: []OpSpec{
			appendSpec(OpEnqueue, "Enqueue", queueWording),
			removeEndSpec(OpDequeue, "Dequeue", queueWording, false),
			peekSpec(OpFront, "Front/Peek", queueWording, false),
			isEmptySpec(queueWording),
			sizeSpec(queueWording),
		},
		Rules:    queueRules(),
		AddOp:    OpEnqueue,
		RemoveOp: OpDequeue,
		RemoveAt: func(int) int { return 0 },
		Role: func(i, n int) string {
			switch i {
			case 0:
				return "Início"
			case n - 1:
				return "Final"
			}
			return ""
		},
	}))

	Stack = register(newDescriptor(Descriptor{
		Kind:    KindStack,
		Wording: stackWording,
		Ops: []OpSpec{
			appendSpec(OpPush, "Push", stackWording),
			removeEndSpec(OpPop, "Pop", stackWording, true),
			peekSpec(OpPeek, "Peek", stackWording, true),
			isEmptySpec(stackWording),
			sizeSpec(stackWording),
		},
		Rules:    stackRules(),
		AddOp:    OpPush,
		RemoveOp: OpPop,
		RemoveAt: func(n int) int { return n - 1 },
		Role: func(i, n int) string {
			switch i {
			case n - 1:
				return "Topo"
			case 0:
				return "Base"
			}
			return ""
		},
	}))

	List = register(newDescriptor(Descriptor{
		Kind:    KindList,
		Wording: listWording,
		Ops: []OpSpec{
			appendSpec(OpAdd, "Add", listWording),
			insertSpec(),
			removeAtSpec(),
			getSpec(),
			indexOfSpec(),
			sizeSpec(listWording),
			isEmptySpec(listWording),
		},
		Rules:    listRules(),
		AddOp:    OpAdd,
		RemoveOp: OpRemove,
		RemoveAt: func(int) int { return 0 },
		Role: func(i, n int) string {
			switch i {
			case 0:
				return "Início"
			case n - 1:
				return "Fim"
			}
			return ""
		},
	}))
)

func appendSpec(op Op, label string, w Wording) OpSpec {
	return OpSpec{
		Op:         op,
		Label:      label,
		ValueHint:  fmt.Sprintf("Digite um valor para adicionar à %s.", w.Noun),
		NeedsValue: true,
		Mutates:    true,
		Transform: func(seq Sequence, req Request) (Sequence, string) {
			return seq.appended(req.Value), req.Value
		},
		Message: func(_ Request, out string) string {
			return fmt.Sprintf("Elemento %q adicionado %s", out, w.AddPlace)
		},
	}
}

func removeEndSpec(op Op, label string, w Wording, fromTail bool) OpSpec {
	return OpSpec{
		Op:      op,
		Label:   label,
		Mutates: true,
		Check: func(seq Sequence, _ Request) error {
			if seq.Len() == 0 {
				return emptyStructure(w.Title+" vazia",
					fmt.Sprintf("Não é possível remover elementos de uma %s vazia.", w.Noun))
			}
			return nil
		},
		Transform: func(seq Sequence, _ Request) (Sequence, string) {
			i := 0
			if fromTail {
				i = seq.Len() - 1
			}
			return seq.removed(i), seq[i]
		},
		Message: func(_ Request, out string) string {
			return fmt.Sprintf("Elemento %q removido %s", out, w.RemovePlace)
		},
	}
}

func peekSpec(op Op, label string, w Wording, fromTail bool) OpSpec {
	return OpSpec{
		Op:    op,
		Label: label,
		Transform: func(seq Sequence, _ Request) (Sequence, string) {
			if fromTail {
				v, _ := seq.Tail()
				return seq, v
			}
			v, _ := seq.Head()
			return seq, v
		},
		Message: func(_ Request, out string) string {
			if out == "" {
				return fmt.Sprintf("A %s está vazia", w.Noun)
			}
			return fmt.Sprintf("O elemento %s é %q", w.PeekPlace, out)
		},
	}
}

func sizeSpec(w Wording) OpSpec {
	return OpSpec{
		Op:    OpSize,
		Label: "Size",
		Transform: func(seq Sequence, _ Request) (Sequence, string) {
			return seq, strconv.Itoa(seq.Len())
		},
		Message: func(_ Request, out string) string {
			return fmt.Sprintf("A %s contém %s elemento(s)", w.Noun, out)
		},
	}
}

func isEmptySpec(w Wording) OpSpec {
	return OpSpec{
		Op:    OpIsEmpty,
		Label: "isEmpty",
		Transform: func(seq Sequence, _ Request) (Sequence, string) {
			return seq, strconv.FormatBool(seq.Len() == 0)
		},
		Message: func(_ Request, out string) string {
			if out == "true" {
				return fmt.Sprintf("Verdadeiro (%s vazia)", w.Noun)
			}
			return fmt.Sprintf("Falso (%s não está vazia)", w.Noun)
		},
	}
}

// checkIndex accepts req.Index in [0, max].
func checkIndex(req Request, max int) error {
	if req.Index == nil || *req.Index < 0 || *req.Index > max {
		return invalidIndex(max)
	}
	return nil
}

func insertSpec() OpSpec {
	return OpSpec{
		Op:         OpInsert,
		Label:      "Insert",
		ValueHint:  "Digite um valor para inserir na lista.",
		NeedsValue: true,
		NeedsIndex: true,
		Mutates:    true,
		Check: func(seq Sequence, req Request) error {
			return checkIndex(req, seq.Len())
		},
		Transform: func(seq Sequence, req Request) (Sequence, string) {
			return seq.inserted(*req.Index, req.Value), req.Value
		},
		Message: func(req Request, out string) string {
			return fmt.Sprintf("Elemento %q inserido na posição %d", out, *req.Index)
		},
	}
}

func removeAtSpec() OpSpec {
	return OpSpec{
		Op:         OpRemove,
		Label:      "Remove",
		NeedsIndex: true,
		Mutates:    true,
		Check: func(seq Sequence, req Request) error {
			if seq.Len() == 0 {
				return emptyStructure("Lista vazia", "Não é possível remover de uma lista vazia.")
			}
			return checkIndex(req, seq.Len()-1)
		},
		Transform: func(seq Sequence, req Request) (Sequence, string) {
			i := *req.Index
			return seq.removed(i), seq[i]
		},
		Message: func(req Request, out string) string {
			return fmt.Sprintf("Elemento %q removido da posição %d", out, *req.Index)
		},
	}
}

func getSpec() OpSpec {
	return OpSpec{
		Op:         OpGet,
		Label:      "Get",
		NeedsIndex: true,
		Check: func(seq Sequence, req Request) error {
			if seq.Len() == 0 {
				return emptyStructure("Lista vazia", "Não é possível obter elemento de uma lista vazia.")
			}
			return checkIndex(req, seq.Len()-1)
		},
		Transform: func(seq Sequence, req Request) (Sequence, string) {
			return seq, seq[*req.Index]
		},
		Message: func(req Request, out string) string {
			return fmt.Sprintf("O elemento na posição %d é %q", *req.Index, out)
		},
	}
}

func indexOfSpec() OpSpec {
	return OpSpec{
		Op:         OpIndexOf,
		Label:      "indexOf",
		ValueHint:  "Digite um valor para buscar na lista.",
		NeedsValue: true,
		Transform: func(seq Sequence, req Request) (Sequence, string) {
			return seq, strconv.Itoa(seq.IndexOf(req.Value))
		},
		Message: func(req Request, out string) string {
			if out == "-1" {
				return fmt.Sprintf("O elemento %q não foi encontrado na lista", req.Value)
			}
			return fmt.Sprintf("O elemento %q está na posição %s", req.Value, out)
		},
	}
}
