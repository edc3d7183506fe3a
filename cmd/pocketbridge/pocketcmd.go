package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/masato-nasu/pocketbridge/internal/pocket"
)

var pocketCmd = &cobra.Command{
	Use:   "pocket",
	Short: "Manage the pocket of captured words and phrases",
}

var pocketListUnsent bool

var pocketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pocket items, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items := a.Items()
		if pocketListUnsent {
			items = pocket.Unsent(items)
		}
		if len(items) == 0 {
			fmt.Println("pocket is empty")
			return nil
		}
		for _, it := range items {
			sent := "unsent"
			if it.Sent() {
				sent = fmt.Sprintf("sent×%d", it.SentCount)
			}
			fmt.Printf("%s  [%s ×%d %s]  %s\n", it.Text, it.Kind, it.Count, sent, it.ID)
		}
		return nil
	},
}

var pocketAddKind string

var pocketAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Capture a word or phrase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind pocket.Kind
		switch pocketAddKind {
		case "":
		case string(pocket.KindWord), string(pocket.KindPhrase):
			kind = pocket.Kind(pocketAddKind)
		default:
			return fmt.Errorf("unknown kind %q (want word or phrase)", pocketAddKind)
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		it, created, err := a.Collect(strings.Join(args, " "), kind)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("collected %s: %s\n", it.Kind, it.Text)
		} else {
			fmt.Printf("already pocketed, count now %d: %s\n", it.Count, it.Text)
		}
		return nil
	},
}

var pocketSendCmd = &cobra.Command{
	Use:   "send <id-or-text>",
	Short: "Build the TANGO-CHO hand-off URL for an item and mark it sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id := args[0]
		// Convenience: allow sending by exact text when the ID is unknown.
		for _, it := range a.Items() {
			if it.Text == args[0] {
				id = it.ID
				break
			}
		}
		sendURL, err := a.Send(id)
		if err != nil {
			return err
		}
		fmt.Println(sendURL)
		return nil
	},
}

var pocketDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a pocket item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.DeleteItem(args[0])
	},
}

var pocketClearSentCmd = &cobra.Command{
	Use:   "clear-sent",
	Short: "Remove every item already sent to the vocabulary app",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ClearSent()
		if err != nil {
			return err
		}
		fmt.Printf("removed %d sent item(s)\n", n)
		return nil
	},
}

func init() {
	pocketListCmd.Flags().BoolVar(&pocketListUnsent, "unsent", false, "Show only unsent items")
	pocketAddCmd.Flags().StringVar(&pocketAddKind, "kind", "", "Force the item kind (word or phrase)")
	pocketCmd.AddCommand(pocketListCmd, pocketAddCmd, pocketSendCmd, pocketDeleteCmd, pocketClearSentCmd)
}

func hostnameOf(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		return u.Hostname()
	}
	return raw
}
