package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/choicegroup/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				t, ok := errors.GetTemplate(args[0])
				if !ok {
					return errors.New("E400").WithSuggestionf("unknown error code %q", args[0])
				}
				fmt.Fprintf(w, "%s [%s] %s\n\n", args[0], t.Category, t.Message)
				fmt.Fprintf(w, "%s\n", t.Detail)
				return nil
			}
			for _, code := range errors.GetAllCodes() {
				t, _ := errors.GetTemplate(code)
				fmt.Fprintf(w, "%s  %-13s %s\n", code, t.Category, t.Message)
			}
			return nil
		},
	}
}
