package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sales-assistant-be/internal/dto"
)

var languageHint string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation (type /reset to start over, /quit to leave)",
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message and print the outcome",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newContainer()
		defer c.Close()

		out, err := c.AssistantService.Process(cmd.Context(), &dto.ProcessRequest{
			UserID:       userID,
			Text:         strings.Join(args, " "),
			LanguageHint: languageHint,
		})
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{chatCmd, askCmd} {
		cmd.Flags().StringVarP(&languageHint, "lang", "l", "", "language hint (de, en, tr, ...)")
		rootCmd.AddCommand(cmd)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	c := newContainer()
	defer c.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		_ = c.ConsumerService.Consume(ctx)
	}()

	w := cmd.OutOrStdout()
	headerColor.Fprintf(w, "Sales assistant (user %s)\n", userID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		promptColor.Fprint(w, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := c.AssistantService.Reset(ctx, userID); err != nil {
				errorColor.Fprintln(w, err)
			} else {
				dimColor.Fprintln(w, "session cleared")
			}
			continue
		case "/summary":
			res, err := c.AssistantService.Summary(ctx, userID)
			if err != nil {
				errorColor.Fprintln(w, err)
				continue
			}
			fmt.Fprintln(w, res.Summary)
			continue
		}

		out, err := c.AssistantService.Process(ctx, &dto.ProcessRequest{
			UserID:       userID,
			Text:         text,
			LanguageHint: languageHint,
		})
		if err != nil {
			errorColor.Fprintln(w, err)
			continue
		}
		printOutcome(w, out)
	}
}
