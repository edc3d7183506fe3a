package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the reading history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List visited articles, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		entries := a.History()
		if len(entries) == 0 {
			fmt.Println("no history yet")
			return nil
		}
		for _, h := range entries {
			fmt.Printf("%s  %s\n    %s\n", h.At.Format("01/02 15:04"), h.Title, h.URL)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the reading history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.ClearHistory()
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd, historyClearCmd)
}
