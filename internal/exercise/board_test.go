package exercise_test

import (
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/dslabs/internal/exercise"
)

func TestBoardCompletesAll(t *testing.T) {
	calls := 0
	b := exercise.NewBoard(func() { calls++ }, nil)

	att, err := b.Submit(exercise.IDParentheses, exercise.Submission{Input: "(]"})
	require.NoError(t, err)
	assert.False(t, att.Correct)
	assert.Empty(t, att.Notice)

	att, err = b.Submit(exercise.IDParentheses, exercise.Submission{Input: "([])"})
	require.NoError(t, err)
	assert.True(t, att.Correct)
	assert.Equal(t, "Exercício concluído!", att.Notice)

	// Repeating a finished exercise changes nothing.
	att, err = b.Submit(exercise.IDParentheses, exercise.Submission{Input: "()"})
	require.NoError(t, err)
	assert.Empty(t, att.Notice)

	att, err = b.Submit(exercise.IDReverse, exercise.Submission{Input: "abc", Reveal: true})
	require.NoError(t, err)
	assert.False(t, att.Correct)
	require.NotNil(t, att.Reversal)
	assert.Equal(t, "cba", att.Reversal.Reversed)

	_, err = b.Submit(exercise.IDReverse, exercise.Submission{Input: "abc", Answer: "cba"})
	require.NoError(t, err)
	_, err = b.Submit(exercise.IDBinary, exercise.Submission{Input: "10"})
	require.NoError(t, err)

	done, total := b.Progress()
	assert.Equal(t, 3, done)
	assert.Equal(t, 4, total)
	assert.Equal(t, 0, calls)

	att, err = b.Submit(exercise.IDExpression, exercise.Submission{Input: "(3 + 4) * 2"})
	require.NoError(t, err)
	assert.True(t, att.AllCompleted)
	assert.Equal(t, "Parabéns! Você completou todos os exercícios de pilhas!", att.Notice)
	assert.Equal(t, "Resultado: 14", att.Message)
	assert.Equal(t, 1, calls)

	for _, info := range b.Exercises() {
		assert.True(t, info.Completed, info.ID)
	}

	assert.Equal(t, "Progresso dos exercícios reiniciado", b.Reset())
	done, _ = b.Progress()
	assert.Equal(t, 0, done)
}

func TestBoardMarkDoneAfterReveal(t *testing.T) {
	b := exercise.NewBoard(nil, nil)

	att, err := b.Submit(exercise.IDReverse, exercise.Submission{Input: "abc", MarkDone: true})
	require.NoError(t, err)
	assert.True(t, att.Correct)
	assert.Equal(t, "Exercício concluído!", att.Notice)
}

func TestBoardFailedAttemptsDoNotComplete(t *testing.T) {
	b := exercise.NewBoard(nil, nil)

	_, err := b.Submit(exercise.IDExpression, exercise.Submission{Input: "1 +"})
	require.Error(t, err)
	_, err = b.Submit(exercise.IDBinary, exercise.Submission{Input: "-1"})
	require.Error(t, err)
	att, err := b.Submit(exercise.IDReverse, exercise.Submission{Input: "abc", Answer: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "Incorreto. Tente novamente!", att.Message)

	done, _ := b.Progress()
	assert.Equal(t, 0, done)
}

func TestBoardUnknownExercise(t *testing.T) {
	b := exercise.NewBoard(nil, nil)
	_, err := b.Submit("sorting", exercise.Submission{Input: "x"})
	assert.True(t, errdefs.IsNotFound(err))
}

func TestBoardExercisesOrder(t *testing.T) {
	infos := exercise.NewBoard(nil, nil).Exercises()
	require.Len(t, infos, 4)
	assert.Equal(t, exercise.IDParentheses, infos[0].ID)
	assert.Equal(t, exercise.Hard, infos[3].Difficulty)
}
