package exercise

import (
	"strings"

	"github.com/ashureev/dslabs/internal/console"
)

// ReverseResult is the worked solution for a string reversal.
type ReverseResult struct {
	Reversed string   `json:"reversed"`
	Steps    []string `json:"steps"`
}

var reverseSteps = []string{
	"Criamos uma pilha vazia.",
	"Percorremos cada caractere da string original e o adicionamos à pilha.",
	"Após adicionar todos os caracteres, criamos uma nova string vazia.",
	"Removemos um por um os caracteres da pilha e os concatenamos na nova string.",
	"Como a pilha segue o princípio LIFO, os caracteres são retirados na ordem inversa, resultando na string revertida.",
}

// Reverse reverses s character by character through a stack.
func Reverse(s string) (ReverseResult, error) {
	if strings.TrimSpace(s) == "" {
		return ReverseResult{}, console.NewInvalidInputError("Digite uma string para reverter")
	}

	var st Stack[rune]
	for _, r := range s {
		st.Push(r)
	}

	var b strings.Builder
	b.Grow(len(s))
	for {
		r, ok := st.Pop()
		if !ok {
			break
		}
		b.WriteRune(r)
	}

	return ReverseResult{Reversed: b.String(), Steps: reverseSteps}, nil
}

// CheckReverse reports whether answer is input reversed.
func CheckReverse(input, answer string) (bool, error) {
	if strings.TrimSpace(answer) == "" {
		return false, console.NewInvalidInputError("Digite sua resposta antes de verificar")
	}
	res, err := Reverse(input)
	if err != nil {
		return false, err
	}
	return res.Reversed == answer, nil
}
