package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/ashureev/dslabs/internal/console"
	"github.com/ashureev/dslabs/internal/visual"
)

const prompt = "> "

// session is one terminal run over a console and its visualizer. Frames
// committed by the animator timer are printed as they arrive.
type session struct {
	desc    *console.Descriptor
	console *console.Console
	anim    *visual.Animator

	mu  sync.Mutex
	out io.Writer

	unsubscribe func()
}

func newSession(d *console.Descriptor, out io.Writer, copts []console.Option, vopts []visual.Option) *session {
	s := &session{
		desc: d,
		out:  out,
	}
	copts = append(copts, console.OnAllCompleted(func(console.Kind) {
		s.printf("Parabéns! Você completou todos os desafios da %s!\n", d.Wording.Noun)
	}))
	s.console = console.New(d, copts...)
	s.anim = visual.NewAnimator(d, vopts...)
	s.unsubscribe = s.anim.Subscribe(func(f visual.Frame) {
		if !f.Animating {
			s.printf("%s", f.Text())
		}
	})
	return s
}

func (s *session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// Close stops the visualizer.
func (s *session) Close() {
	s.unsubscribe()
	s.anim.Close()
}

// Run reads commands from in until quit, end of input or ctx is done.
func (s *session) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	s.printf("Console de %s. Digite \"ajuda\" para ver os comandos.\n%s", s.desc.Wording.Noun, prompt)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if s.Handle(line) {
				return nil
			}
			s.printf("%s", prompt)
		}
	}
}

// Handle runs one command line and reports whether the session should end.
func (s *session) Handle(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "sair", "quit", "exit":
		return true
	case "ajuda", "help":
		s.help()
	case "estado", "state":
		s.state()
	case "reset":
		s.console.Reset()
		s.printf("Console reiniciado.\n")
	case "dica", "hint":
		s.hint(args)
	case "visual":
		s.visual(args)
	default:
		s.execute(console.Op(cmd), args)
	}
	return false
}

func (s *session) help() {
	var b strings.Builder
	b.WriteString("Operações:\n")
	for _, op := range s.desc.Menu() {
		b.WriteString("  ")
		b.WriteString(string(op.Op))
		if op.NeedsValue {
			b.WriteString(" <valor>")
		}
		if op.NeedsIndex {
			b.WriteString(" <índice>")
		}
		b.WriteString("\n")
	}
	b.WriteString("Comandos:\n")
	b.WriteString("  estado | reset | dica <desafio>\n")
	b.WriteString("  visual add <valor> | visual remove | visual reset | visual show\n")
	b.WriteString("  sair\n")
	s.printf("%s", b.String())
}

func (s *session) state() {
	snap := s.console.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "%s: [%s]\n", s.desc.Wording.Title, strings.Join(snap.Sequence, ", "))
	for _, ch := range snap.Challenges {
		mark := " "
		if ch.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "  [%s] %d. %s\n", mark, ch.ID, ch.Description)
	}
	s.printf("%s", b.String())
}

func (s *session) hint(args []string) {
	if len(args) != 1 {
		s.printf("Uso: dica <desafio>\n")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		s.printf("Desafio inválido: %s\n", args[0])
		return
	}
	hint, ok := s.console.NextHint(id)
	switch {
	case !ok:
		s.printf("Desafio %d não existe.\n", id)
	case hint == "":
		s.printf("Não há mais dicas para o desafio %d.\n", id)
	default:
		s.printf("Dica: %s\n", hint)
	}
}

// parseRequest reads the arguments an operation needs: the value first, then
// the index.
func (s *session) parseRequest(op console.Op, args []string) (console.Request, error) {
	spec, ok := s.desc.Spec(op)
	if !ok {
		return console.Request{Op: op}, nil
	}

	req := console.Request{Op: op}
	if spec.NeedsValue {
		if len(args) == 0 {
			return req, console.NewInvalidInputError(spec.ValueHint)
		}
		req.Value, args = args[0], args[1:]
	}
	if spec.NeedsIndex {
		if len(args) == 0 {
			return req, console.NewInvalidInputError("Informe um índice.")
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return req, console.NewInvalidInputError("O índice deve ser um número inteiro.")
		}
		req = req.At(i)
	}
	return req, nil
}

func (s *session) execute(op console.Op, args []string) {
	req, err := s.parseRequest(op, args)
	if err != nil {
		s.reject(err)
		return
	}

	out, err := s.console.Execute(req)
	if err != nil {
		s.reject(err)
		return
	}

	s.printf("%s\n", out.Result.Message)
	for _, id := range out.Completed {
		s.printf("Desafio %d concluído!\n", id)
	}
}

func (s *session) visual(args []string) {
	if len(args) == 0 {
		s.printf("Uso: visual add <valor> | remove | reset | show\n")
		return
	}

	var (
		f   visual.Frame
		err error
	)
	switch args[0] {
	case "add":
		if len(args) < 2 {
			s.printf("Uso: visual add <valor>\n")
			return
		}
		f, err = s.anim.Add(args[1])
	case "remove":
		f, err = s.anim.Remove()
	case "reset":
		s.anim.Reset()
		return
	case "show":
		f = s.anim.Frame()
	default:
		s.printf("Comando visual desconhecido: %s\n", args[0])
		return
	}
	if err != nil {
		s.reject(err)
		return
	}
	s.printf("%s", f.Text())
}

func (s *session) reject(err error) {
	if opErr, ok := console.AsOpError(err); ok {
		s.printf("Erro: %s. %s\n", opErr.Title, opErr.Description)
		return
	}
	s.printf("Erro: %s\n", err)
}
