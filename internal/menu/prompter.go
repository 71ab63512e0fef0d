package menu

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrQuit is returned by a Prompter when the operator aborts (Ctrl-C, EOF).
var ErrQuit = errors.New("quit")

// Prompter is the operator-facing side of the menu.
type Prompter interface {
	// Select shows label and items and returns the chosen index.
	Select(label string, items []string) (int, error)
	// Input asks for one line of text.
	Input(label string) (string, error)
	// Status replaces the screen with a progress line.
	Status(text string)
}

// Terminal is a Prompter drawing promptui menus on a terminal.
type Terminal struct {
	out  io.Writer
	size int
}

// NewTerminal creates a terminal prompter writing status lines to out.
// size is the number of menu items visible at once.
func NewTerminal(out io.Writer, size int) *Terminal {
	if size <= 0 {
		size = 10
	}
	return &Terminal{out: out, size: size}
}

const clearScreen = "\033[H\033[2J"

func (t *Terminal) Select(label string, items []string) (int, error) {
	t.clear()
	sel := promptui.Select{
		Label:        label,
		Items:        items,
		Size:         t.size,
		HideSelected: true,
		Templates: &promptui.SelectTemplates{
			Label: "{{ . }}",
		},
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
	}
	i, _, err := sel.Run()
	if err != nil {
		return 0, quitOr(err)
	}
	return i, nil
}

func (t *Terminal) Input(label string) (string, error) {
	t.clear()
	p := promptui.Prompt{Label: label}
	s, err := p.Run()
	if err != nil {
		return "", quitOr(err)
	}
	return strings.TrimSpace(s), nil
}

func (t *Terminal) Status(text string) {
	t.clear()
	fmt.Fprintln(t.out, text)
}

func (t *Terminal) clear() {
	fmt.Fprint(t.out, clearScreen)
}

func quitOr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return ErrQuit
	}
	return err
}
