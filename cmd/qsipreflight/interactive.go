package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// promptValidate asks for the subject ID and data root, pre-filled with
// whatever the command line already provided.
func promptValidate(subject, dataRoot string) (string, string, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject ID").
				Description("BIDS subject directory, e.g. sub-01").
				Value(&subject).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("subject ID is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Data root").
				Description("Directory containing the subject directories").
				Value(&dataRoot),
		),
	)

	if err := form.Run(); err != nil {
		return "", "", err
	}
	if dataRoot == "" {
		dataRoot = "."
	}
	return subject, dataRoot, nil
}
