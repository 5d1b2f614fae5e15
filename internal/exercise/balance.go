package exercise

import (
	"fmt"
	"strings"

	"github.com/ashureev/dslabs/internal/console"
)

var closers = map[rune]rune{')': '(', ']': '[', '}': '{'}

// BalanceResult is the verdict on one expression.
type BalanceResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	// Char and Position locate the first offending closer. Position is
	// 1-based and zero when the problem is an unclosed opener.
	Char     string `json:"char,omitempty"`
	Position int    `json:"position,omitempty"`
}

// CheckBalanced reports whether every (, [ and { in expr is closed in order.
// Other characters are ignored.
func CheckBalanced(expr string) (BalanceResult, error) {
	if strings.TrimSpace(expr) == "" {
		return BalanceResult{}, console.NewInvalidInputError("Digite uma expressão para validar")
	}

	var open Stack[rune]
	pos := 0
	for _, ch := range expr {
		pos++
		switch ch {
		case '(', '[', '{':
			open.Push(ch)
		case ')', ']', '}':
			top, ok := open.Pop()
			if !ok || top != closers[ch] {
				return BalanceResult{
					Message:  fmt.Sprintf("Expressão inválida! Problema com o caractere '%c' na posição %d.", ch, pos),
					Char:     string(ch),
					Position: pos,
				}, nil
			}
		}
	}

	if open.Len() > 0 {
		return BalanceResult{
			Message: "Expressão inválida! Existem parênteses abertos que não foram fechados.",
		}, nil
	}
	return BalanceResult{
		Valid:   true,
		Message: "Expressão válida! Todos os parênteses estão balanceados.",
	}, nil
}
