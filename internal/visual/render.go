// Package visual renders structure contents as labelled cells and drives the
// animate-then-commit protocol used by the visualization page.
package visual

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ashureev/dslabs/internal/console"
)

// Cell is one rendered element.
type Cell struct {
	Index     int    `json:"index"`
	Value     string `json:"value"`
	Label     string `json:"label,omitempty"`
	Animating bool   `json:"animating,omitempty"`
	// Pending marks an element that is shown but not yet committed.
	Pending bool `json:"pending,omitempty"`
}

// Frame is a complete picture of a visualizer at one instant.
type Frame struct {
	Kind      console.Kind `json:"kind"`
	Cells     []Cell       `json:"cells"`
	Size      int          `json:"size"`
	Capacity  int          `json:"capacity,omitempty"`
	Animating bool         `json:"animating"`
	Status    string       `json:"status"`
}

// Animation is the transient part of the visualizer state: an add or remove
// that has been accepted but not yet committed.
type Animation struct {
	Op console.Op
	// Target is the highlighted index. For an add it is the slot the new
	// element will occupy.
	Target  int
	Value   string
	Pending console.Sequence
	Result  console.Result
}

func (a *Animation) adds(d *console.Descriptor) bool {
	return a.Op == d.AddOp
}

// View is everything Render needs.
type View struct {
	Sequence console.Sequence
	// Active is the in-flight animation, if any.
	Active *Animation
	// Last is the most recently committed animation, if any.
	Last     *Animation
	Capacity int
}

// Render draws v. It has no side effects.
func Render(d *console.Descriptor, v View) Frame {
	n := v.Sequence.Len()
	ghost := v.Active != nil && v.Active.adds(d)
	if ghost {
		n++
	}

	cells := make([]Cell, 0, n)
	for i, value := range v.Sequence {
		cells = append(cells, Cell{Index: i, Value: value})
	}
	if ghost {
		cells = append(cells, Cell{Index: v.Active.Target, Value: v.Active.Value, Pending: true})
	}
	for i := range cells {
		if d.Role != nil {
			cells[i].Label = d.Role(i, n)
		}
		if v.Active != nil && i == v.Active.Target {
			cells[i].Animating = true
		}
	}

	return Frame{
		Kind:      d.Kind,
		Cells:     cells,
		Size:      v.Sequence.Len(),
		Capacity:  v.Capacity,
		Animating: v.Active != nil,
		Status:    status(d, v),
	}
}

func status(d *console.Descriptor, v View) string {
	w := d.Wording
	switch {
	case v.Active != nil && v.Active.adds(d):
		return fmt.Sprintf("Adicionando %q %s...", v.Active.Value, w.AddPlace)
	case v.Active != nil:
		return fmt.Sprintf("Removendo %q %s...", v.Active.Value, w.RemovePlace)
	case v.Last != nil && v.Last.adds(d):
		return fmt.Sprintf("%q foi adicionado %s.", v.Last.Value, w.AddPlace)
	case v.Last != nil:
		return fmt.Sprintf("%q foi removido %s.", v.Last.Value, w.RemovePlace)
	}
	return fmt.Sprintf("Utilize os controles abaixo para adicionar ou remover elementos da %s.", w.Noun)
}

// Text renders f for a terminal. Stacks are drawn top first, one cell per
// line; other structures are drawn left to right with labels underneath.
func (f Frame) Text() string {
	var b strings.Builder
	b.WriteString(f.Status)
	b.WriteString("\n")

	if len(f.Cells) == 0 {
		b.WriteString("  (vazia)\n")
		return b.String()
	}

	if f.Kind == console.KindStack {
		for i := len(f.Cells) - 1; i >= 0; i-- {
			c := f.Cells[i]
			b.WriteString("  ")
			b.WriteString(box(c))
			if c.Label != "" {
				b.WriteString("  ")
				b.WriteString(c.Label)
			}
			b.WriteString("\n")
		}
		return b.String()
	}

	var boxes, labels strings.Builder
	boxes.WriteString("  ")
	labels.WriteString("  ")
	for _, c := range f.Cells {
		cell := box(c)
		width := max(utf8.RuneCountInString(cell), utf8.RuneCountInString(c.Label)) + 1
		boxes.WriteString(pad(cell, width))
		labels.WriteString(pad(c.Label, width))
	}
	b.WriteString(strings.TrimRight(boxes.String(), " "))
	b.WriteString("\n")
	if l := strings.TrimRight(labels.String(), " "); l != "" {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

func box(c Cell) string {
	if c.Animating {
		return "[*" + c.Value + "*]"
	}
	return "[" + c.Value + "]"
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
