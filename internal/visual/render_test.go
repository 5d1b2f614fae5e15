package visual_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/visual"
)

func labels(f visual.Frame) []string {
	out := make([]string, len(f.Cells))
	for i, c := range f.Cells {
		out[i] = c.Label
	}
	return out
}

func TestRender(t *testing.T) {
	tests := map[string]struct {
		desc      *console.Descriptor
		view      visual.View
		expLabels []string
		expAnim   []bool
		expStatus string
	}{
		"An empty queue shows the idle prompt.": {
			desc:      console.Queue,
			view:      visual.View{},
			expLabels: []string{},
			expAnim:   []bool{},
			expStatus: "Utilize os controles abaixo para adicionar ou remover elementos da fila.",
		},
		"Queue roles mark both ends.": {
			desc:      console.Queue,
			view:      visual.View{Sequence: console.Sequence{"A", "B", "C"}},
			expLabels: []string{"Início", "", "Final"},
			expAnim:   []bool{false, false, false},
			expStatus: "Utilize os controles abaixo para adicionar ou remover elementos da fila.",
		},
		"A single stack element is the top.": {
			desc:      console.Stack,
			view:      visual.View{Sequence: console.Sequence{"X"}},
			expLabels: []string{"Topo"},
			expAnim:   []bool{false},
			expStatus: "Utilize os controles abaixo para adicionar ou remover elementos da pilha.",
		},
		"An add in flight shows a pending cell at the tail.": {
			desc: console.Queue,
			view: visual.View{
				Sequence: console.Sequence{"A"},
				Active:   &visual.Animation{Op: console.OpEnqueue, Target: 1, Value: "B"},
			},
			expLabels: []string{"Início", "Final"},
			expAnim:   []bool{false, true},
			expStatus: `Adicionando "B" ao final da fila...`,
		},
		"A pop in flight highlights the top.": {
			desc: console.Stack,
			view: visual.View{
				Sequence: console.Sequence{"X", "Y"},
				Active:   &visual.Animation{Op: console.OpPop, Target: 1, Value: "Y"},
			},
			expLabels: []string{"Base", "Topo"},
			expAnim:   []bool{false, true},
			expStatus: `Removendo "Y" do topo da pilha...`,
		},
		"A committed removal is reported.": {
			desc: console.Queue,
			view: visual.View{
				Sequence: console.Sequence{"B"},
				Last:     &visual.Animation{Op: console.OpDequeue, Target: 0, Value: "A"},
			},
			expLabels: []string{"Início"},
			expAnim:   []bool{false},
			expStatus: `"A" foi removido do início da fila.`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f := visual.Render(test.desc, test.view)

			anim := make([]bool, len(f.Cells))
			for i, c := range f.Cells {
				anim[i] = c.Animating
			}
			assert.Equal(t, test.expLabels, labels(f))
			assert.Equal(t, test.expAnim, anim)
			assert.Equal(t, test.expStatus, f.Status)
			assert.Equal(t, test.view.Sequence.Len(), f.Size)
			assert.Equal(t, test.view.Active != nil, f.Animating)
		})
	}
}

func TestRenderPendingCell(t *testing.T) {
	f := visual.Render(console.List, visual.View{
		Sequence: console.Sequence{"A"},
		Active:   &visual.Animation{Op: console.OpAdd, Target: 1, Value: "B"},
	})

	assert.Equal(t, []visual.Cell{
		{Index: 0, Value: "A", Label: "Início"},
		{Index: 1, Value: "B", Label: "Fim", Animating: true, Pending: true},
	}, f.Cells)
	assert.Equal(t, 1, f.Size)
}

func TestFrameText(t *testing.T) {
	stack := visual.Render(console.Stack, visual.View{Sequence: console.Sequence{"X", "Y"}})
	assert.Equal(t,
		"Utilize os controles abaixo para adicionar ou remover elementos da pilha.\n"+
			"  [Y]  Topo\n"+
			"  [X]  Base\n",
		stack.Text())

	queue := visual.Render(console.Queue, visual.View{
		Sequence: console.Sequence{"A"},
		Active:   &visual.Animation{Op: console.OpEnqueue, Target: 1, Value: "B"},
	})
	assert.Equal(t,
		"Adicionando \"B\" ao final da fila...\n"+
			"  [A]    [*B*]\n"+
			"  Início Final\n",
		queue.Text())

	empty := visual.Render(console.List, visual.View{})
	assert.Contains(t, empty.Text(), "(vazia)")
}
