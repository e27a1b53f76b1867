package ui

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ConfirmPush prints the plan and asks whether to push it
func ConfirmPush(summary string) (bool, error) {
	fmt.Println(summary)

	prompt := promptui.Prompt{
		Label:     "Push this commit and open the pull request",
		IsConfirm: true,
	}

	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
}
