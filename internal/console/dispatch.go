package console

import (
	"fmt"
	"strings"
)

// Op names an operation a user can invoke against a sequence.
type Op string

const (
	OpEnqueue Op = "enqueue"
	OpDequeue Op = "dequeue"
	OpFront   Op = "front"
	OpPush    Op = "push"
	OpPop     Op = "pop"
	OpPeek    Op = "peek"
	OpAdd     Op = "add"
	OpInsert  Op = "insert"
	OpRemove  Op = "remove"
	OpGet     Op = "get"
	OpIndexOf Op = "indexOf"
	OpSize    Op = "size"
	OpIsEmpty Op = "isEmpty"
)

// Request is a selected operation with its optional arguments.
type Request struct {
	Op    Op     `json:"op"`
	Value string `json:"value,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// At returns a copy of r carrying index i.
func (r Request) At(i int) Request {
	r.Index = &i
	return r
}

// Result is the outcome of a successful operation. Output is the canonical
// textual value the operation produced (removed or inspected element, count,
// boolean, found index) and is what challenge expectations compare against.
type Result struct {
	Op      Op     `json:"op"`
	Message string `json:"message"`
	Output  string `json:"output"`
}

// OpSpec is one row of a structure's operation table.
type OpSpec struct {
	Op    Op
	Label string
	// ValueHint is the notification text shown when a required value is blank.
	ValueHint  string
	NeedsValue bool
	NeedsIndex bool
	Mutates    bool
	// Check rejects the request before any transform runs.
	Check func(seq Sequence, req Request) error
	// Transform returns the next sequence and the operation output.
	Transform func(seq Sequence, req Request) (Sequence, string)
	// Message renders the human-readable result.
	Message func(req Request, out string) string
}

// Dispatch validates req against d's table and applies it to seq. It never
// modifies seq; on error the caller's state stays as it was.
func Dispatch(d *Descriptor, seq Sequence, req Request) (Sequence, Result, error) {
	spec, ok := d.lookup(req.Op)
	if !ok {
		return seq, Result{}, &OpError{
			Kind:        KindUnknownOp,
			Title:       "Operação desconhecida",
			Description: fmt.Sprintf("A operação %q não existe para %s.", req.Op, d.Wording.Noun),
		}
	}

	if spec.NeedsValue && strings.TrimSpace(req.Value) == "" {
		return seq, Result{}, invalidInput(spec.ValueHint)
	}
	if spec.Check != nil {
		if err := spec.Check(seq, req); err != nil {
			return seq, Result{}, err
		}
	}

	next, out := spec.Transform(seq, req)
	return next, Result{Op: spec.Op, Message: spec.Message(req, out), Output: out}, nil
}
