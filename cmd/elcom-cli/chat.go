package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elcom/backend/internal/app"
)

const popularCommand = ":popular"

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	botColor    = color.New(color.FgGreen)
	noticeColor = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive search session",
		Long: `Type a query and press enter. "exit" or "quit" ends the session and
":popular" lists the products returned most often so far.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			return runChat(cmd.Context(), engine, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runChat reads queries line by line until exit, quit or end of input.
func runChat(ctx context.Context, engine *app.App, in io.Reader, out io.Writer) error {
	noticeColor.Fprintf(out, "Elcom product search (%d products). Type \"exit\" to quit.\n", engine.Search.CatalogSize())

	scanner := bufio.NewScanner(in)
	for {
		promptColor.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			noticeColor.Fprintln(out, "Goodbye!")
			return nil
		case popularCommand:
			printPopular(engine, out)
			continue
		}

		outcome, err := engine.Search.Search(ctx, line)
		if err != nil {
			errorColor.Fprintf(out, "error: %v\n", err)
			continue
		}
		botColor.Fprintln(out, engine.Formatter.RenderOutcome(outcome))
	}
}

func printPopular(engine *app.App, out io.Writer) {
	entries := engine.Search.Popular(5)
	if len(entries) == 0 {
		noticeColor.Fprintln(out, "No searches yet.")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(out, "%d. %s (%d)\n", i+1, e.Product, e.Count)
	}
}
