package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Run logs in, opens the websocket session, and drives the TUI until
// the user quits.
func Run(serverURL, email, password string) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("the chat client needs an interactive terminal")
	}

	token, err := Login(serverURL, email, password)
	if err != nil {
		return err
	}

	client, err := Dial(serverURL, token)
	if err != nil {
		return err
	}
	defer client.Close()

	p := tea.NewProgram(NewModel(client), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
