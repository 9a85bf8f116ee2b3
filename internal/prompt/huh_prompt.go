package prompt

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
)

// HuhPrompter implements Prompter using the charmbracelet/huh library.
type HuhPrompter struct{}

// NewHuhPrompter creates a new huh-based prompter.
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{}
}

func (p *HuhPrompter) Select(title string, options []string) (string, error) {
	var result string

	opts := make([]huh.Option[string], len(options))
	for i, opt := range options {
		opts[i] = huh.NewOption(opt, opt)
	}

	err := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&result).
		Run()

	return result, mapErr(err)
}

func (p *HuhPrompter) Input(title string, defaultValue string) (string, error) {
	result := defaultValue

	err := huh.NewInput().
		Title(title).
		Value(&result).
		Run()

	return result, mapErr(err)
}

func (p *HuhPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	result := defaultValue

	err := huh.NewConfirm().
		Title(title).
		Value(&result).
		Run()

	return result, mapErr(err)
}

func (p *HuhPrompter) MultiSelect(title string, options []string) ([]string, error) {
	var result []string

	opts := make([]huh.Option[string], len(options))
	for i, opt := range options {
		opts[i] = huh.NewOption(opt, opt)
	}

	err := huh.NewMultiSelect[string]().
		Title(title).
		Options(opts...).
		Value(&result).
		Run()

	return result, mapErr(err)
}

func (p *HuhPrompter) PickFile(title string) (string, error) {
	var result string

	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}

	err = huh.NewFilePicker().
		Title(title).
		CurrentDirectory(dir).
		AllowedTypes(ImageTypes).
		FileAllowed(true).
		DirAllowed(false).
		Picking(true).
		Height(12).
		Value(&result).
		Run()
	if err != nil {
		return "", mapErr(err)
	}
	if result == "" {
		return "", ErrAborted
	}
	return result, nil
}

func mapErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
