package exercise

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ashureev/dslabs/internal/console"
)

// BinaryResult is a decimal-to-binary conversion with its worked steps.
type BinaryResult struct {
	Decimal int64    `json:"decimal"`
	Binary  string   `json:"binary"`
	Steps   []string `json:"steps"`
}

// maxExact is the largest integer the decimal input represents exactly.
const maxExact = 1 << 53

// ToBinary converts the decimal in input by repeated division by two,
// pushing each remainder and popping them back in reverse. Fractions are
// truncated.
func ToBinary(input string) (BinaryResult, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxExact {
		return BinaryResult{}, console.NewInvalidInputError("Digite um número decimal válido")
	}
	n := int64(f)
	if n < 0 {
		return BinaryResult{}, console.NewInvalidInputError("Por favor, use apenas números positivos para este exercício")
	}

	var (
		digits Stack[int64]
		steps  []string
	)
	if n == 0 {
		digits.Push(0)
		steps = append(steps, "0 ÷ 2 = 0 com resto 0 (Push 0 na pilha)")
	}
	for num := n; num > 0; num /= 2 {
		rem := num % 2
		digits.Push(rem)
		steps = append(steps, fmt.Sprintf("%d ÷ 2 = %d com resto %d (Push %d na pilha)", num, num/2, rem, rem))
	}

	steps = append(steps, "Desempilhando os valores:")
	var b strings.Builder
	for {
		d, ok := digits.Pop()
		if !ok {
			break
		}
		b.WriteString(strconv.FormatInt(d, 10))
		steps = append(steps, fmt.Sprintf("Pop: %d", d))
	}

	return BinaryResult{Decimal: n, Binary: b.String(), Steps: steps}, nil
}
