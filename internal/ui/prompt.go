package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
)

// ErrNotInteractive is returned when a prompt needs a terminal on stdin.
var ErrNotInteractive = errors.New("confirmation requires an interactive terminal")

// Confirm asks a yes/no question on the terminal. It defaults to no.
func Confirm(title, description string) (bool, error) {
	if !IsTerminal(os.Stdin) {
		return false, ErrNotInteractive
	}

	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Revert").
		Negative("Keep").
		Value(&ok)
	if description != "" {
		field = field.Description(description)
	}

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return false, err
	}
	return ok, nil
}
