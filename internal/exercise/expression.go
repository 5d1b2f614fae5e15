package exercise

import (
	"strconv"
	"strings"

	"github.com/ashureev/dslabs/internal/console"
)

var (
	// ErrInvalidExpression is returned for malformed arithmetic.
	ErrInvalidExpression = console.NewInvalidInputError("Expressão inválida. Verifique a sintaxe.")
	// ErrDivisionByZero is returned when a divisor evaluates to zero.
	ErrDivisionByZero = console.NewInvalidInputError("Divisão por zero não é permitida.")
)

// negate is the operator-stack symbol for unary minus.
const negate = '~'

// ExpressionResult is an evaluated expression.
type ExpressionResult struct {
	Expression string  `json:"expression"`
	Value      float64 `json:"value"`
	Display    string  `json:"display"`
}

func precedence(op byte) int {
	switch op {
	case negate:
		return 3
	case '*', '/':
		return 2
	case '+', '-':
		return 1
	}
	return 0
}

// Evaluate computes an arithmetic expression of decimal numbers, + - * /,
// unary minus and parentheses with one operand stack and one operator stack.
func Evaluate(expr string) (ExpressionResult, error) {
	if strings.TrimSpace(expr) == "" {
		return ExpressionResult{}, console.NewInvalidInputError("Digite uma expressão para avaliar")
	}

	var (
		nums          Stack[float64]
		ops           Stack[byte]
		expectOperand = true
	)

	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++

		case isNumberByte(c):
			if !expectOperand {
				return ExpressionResult{}, ErrInvalidExpression
			}
			j := i
			for j < len(expr) && isNumberByte(expr[j]) {
				j++
			}
			v, err := strconv.ParseFloat(expr[i:j], 64)
			if err != nil {
				return ExpressionResult{}, ErrInvalidExpression
			}
			nums.Push(v)
			expectOperand = false
			i = j

		case c == '(':
			if !expectOperand {
				return ExpressionResult{}, ErrInvalidExpression
			}
			ops.Push(c)
			i++

		case c == ')':
			if expectOperand {
				return ExpressionResult{}, ErrInvalidExpression
			}
			for {
				top, ok := ops.Peek()
				if !ok {
					return ExpressionResult{}, ErrInvalidExpression
				}
				if top == '(' {
					ops.Pop()
					break
				}
				if err := reduce(&nums, &ops); err != nil {
					return ExpressionResult{}, err
				}
			}
			i++

		case c == '+' || c == '-' || c == '*' || c == '/':
			i++
			if expectOperand {
				switch c {
				case '-':
					ops.Push(negate)
				case '+':
				default:
					return ExpressionResult{}, ErrInvalidExpression
				}
				continue
			}
			for {
				top, ok := ops.Peek()
				if !ok || top == '(' || precedence(top) < precedence(c) {
					break
				}
				if err := reduce(&nums, &ops); err != nil {
					return ExpressionResult{}, err
				}
			}
			ops.Push(c)
			expectOperand = true

		default:
			return ExpressionResult{}, ErrInvalidExpression
		}
	}

	if expectOperand {
		return ExpressionResult{}, ErrInvalidExpression
	}
	for ops.Len() > 0 {
		if top, _ := ops.Peek(); top == '(' {
			return ExpressionResult{}, ErrInvalidExpression
		}
		if err := reduce(&nums, &ops); err != nil {
			return ExpressionResult{}, err
		}
	}

	v, ok := nums.Pop()
	if !ok || nums.Len() != 0 {
		return ExpressionResult{}, ErrInvalidExpression
	}
	return ExpressionResult{
		Expression: expr,
		Value:      v,
		Display:    strconv.FormatFloat(v, 'f', -1, 64),
	}, nil
}

// reduce applies the operator on top of ops.
func reduce(nums *Stack[float64], ops *Stack[byte]) error {
	op, _ := ops.Pop()

	b, ok := nums.Pop()
	if !ok {
		return ErrInvalidExpression
	}
	if op == negate {
		nums.Push(-b)
		return nil
	}
	a, ok := nums.Pop()
	if !ok {
		return ErrInvalidExpression
	}

	switch op {
	case '+':
		nums.Push(a + b)
	case '-':
		nums.Push(a - b)
	case '*':
		nums.Push(a * b)
	case '/':
		if b == 0 {
			return ErrDivisionByZero
		}
		nums.Push(a / b)
	}
	return nil
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.'
}
