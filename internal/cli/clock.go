package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPeopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people",
		Short: "List the roster with each person's clock status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PeopleResult

			if err := client.Get("/api/v1/people", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newClockInCmd() *cobra.Command {
	return newClockCmd("clock-in", "Clock a person in", "/api/v1/clock-in")
}

func newClockOutCmd() *cobra.Command {
	return newClockCmd("clock-out", "Clock a person out", "/api/v1/clock-out")
}

func newClockCmd(use, short, path string) *cobra.Command {
	var number string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if number == "" {
				return fmt.Errorf("--number is required")
			}

			req := map[string]string{"student_number": number}
			var result ClockEvent

			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "Student number (required)")
	_ = cmd.MarkFlagRequired("number")

	return cmd
}
