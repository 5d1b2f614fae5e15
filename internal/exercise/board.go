package exercise

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/containerd/errdefs"
)

// ID names one exercise.
type ID string

const (
	IDParentheses ID = "parentheses"
	IDReverse     ID = "reverse"
	IDBinary      ID = "binary"
	IDExpression  ID = "expression"
)

// Difficulty grades an exercise.
type Difficulty string

const (
	Easy   Difficulty = "Fácil"
	Medium Difficulty = "Médio"
	Hard   Difficulty = "Difícil"
)

// Info describes one exercise on the board.
type Info struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Completed   bool       `json:"completed"`
}

var exercises = []Info{
	{
		ID:          IDParentheses,
		Title:       "Validador de Parênteses",
		Description: "Verifique se uma expressão tem parênteses, colchetes e chaves balanceados",
		Difficulty:  Easy,
	},
	{
		ID:          IDReverse,
		Title:       "Inversão de String",
		Description: "Use uma pilha para inverter uma string",
		Difficulty:  Easy,
	},
	{
		ID:          IDBinary,
		Title:       "Decimal para Binário",
		Description: "Converta números decimais para binário usando uma pilha",
		Difficulty:  Medium,
	},
	{
		ID:          IDExpression,
		Title:       "Avaliação de Expressões",
		Description: "Entenda como as pilhas são usadas para avaliar expressões matemáticas",
		Difficulty:  Hard,
	},
}

// Submission is one attempt at an exercise. Input is the expression, string
// or number to work on. For the reversal exercise, Answer is checked against
// Input; Reveal asks for the worked solution instead; MarkDone records the
// exercise as finished after a reveal.
type Submission struct {
	Input    string `json:"input"`
	Answer   string `json:"answer,omitempty"`
	Reveal   bool   `json:"reveal,omitempty"`
	MarkDone bool   `json:"mark_done,omitempty"`
}

// Attempt is the outcome of a submission.
type Attempt struct {
	ID      ID     `json:"id"`
	Correct bool   `json:"correct"`
	Message string `json:"message"`
	// Exactly one of the payloads below is set, matching ID.
	Balance    *BalanceResult    `json:"balance,omitempty"`
	Reversal   *ReverseResult    `json:"reversal,omitempty"`
	Binary     *BinaryResult     `json:"binary,omitempty"`
	Expression *ExpressionResult `json:"expression,omitempty"`

	// Notice is the board-level toast text when this attempt finished an
	// exercise.
	Notice       string `json:"notice,omitempty"`
	AllCompleted bool   `json:"all_completed"`
}

// Board tracks which exercises are done. It is safe for concurrent use.
type Board struct {
	mu        sync.Mutex
	done      map[ID]bool
	onAllDone func()
	logger    *slog.Logger
}

// NewBoard creates a board with nothing completed. onAllDone, if set, runs
// each time the last exercise is completed.
func NewBoard(onAllDone func(), logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		done:      make(map[ID]bool),
		onAllDone: onAllDone,
		logger:    logger,
	}
}

// Exercises lists the board in display order.
func (b *Board) Exercises() []Info {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Info, len(exercises))
	for i, ex := range exercises {
		ex.Completed = b.done[ex.ID]
		out[i] = ex
	}
	return out
}

// Progress returns how many exercises are done out of the total.
func (b *Board) Progress() (done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.done), len(exercises)
}

// Submit runs one attempt and records completion when it succeeds.
func (b *Board) Submit(id ID, sub Submission) (Attempt, error) {
	att := Attempt{ID: id}

	switch id {
	case IDParentheses:
		res, err := CheckBalanced(sub.Input)
		if err != nil {
			return Attempt{}, err
		}
		att.Balance = &res
		att.Correct = res.Valid
		att.Message = res.Message

	case IDReverse:
		switch {
		case sub.Reveal || sub.MarkDone:
			res, err := Reverse(sub.Input)
			if err != nil {
				return Attempt{}, err
			}
			att.Reversal = &res
			att.Correct = sub.MarkDone
			att.Message = fmt.Sprintf("String revertida: %s", res.Reversed)
		default:
			ok, err := CheckReverse(sub.Input, sub.Answer)
			if err != nil {
				return Attempt{}, err
			}
			att.Correct = ok
			att.Message = "Incorreto. Tente novamente!"
			if ok {
				att.Message = "Correto! Você conseguiu reverter a string!"
			}
		}

	case IDBinary:
		res, err := ToBinary(sub.Input)
		if err != nil {
			return Attempt{}, err
		}
		att.Binary = &res
		att.Correct = true
		att.Message = fmt.Sprintf("%d em binário é %s", res.Decimal, res.Binary)

	case IDExpression:
		res, err := Evaluate(sub.Input)
		if err != nil {
			return Attempt{}, err
		}
		att.Expression = &res
		att.Correct = true
		att.Message = fmt.Sprintf("Resultado: %s", res.Display)

	default:
		return Attempt{}, fmt.Errorf("exercise %q: %w", id, errdefs.ErrNotFound)
	}

	if att.Correct {
		att.Notice, att.AllCompleted = b.complete(id)
	} else {
		att.AllCompleted = b.allDone()
	}
	return att, nil
}

func (b *Board) complete(id ID) (string, bool) {
	b.mu.Lock()
	if b.done[id] {
		all := len(b.done) == len(exercises)
		b.mu.Unlock()
		return "", all
	}
	b.done[id] = true
	all := len(b.done) == len(exercises)
	b.mu.Unlock()

	b.logger.Info("Exercise completed", "exercise", string(id), "all_completed", all)
	if !all {
		return "Exercício concluído!", false
	}
	if b.onAllDone != nil {
		b.onAllDone()
	}
	return "Parabéns! Você completou todos os exercícios de pilhas!", true
}

func (b *Board) allDone() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.done) == len(exercises)
}

// Reset clears every completion and returns the notice to show.
func (b *Board) Reset() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.done)
	return "Progresso dos exercícios reiniciado"
}
