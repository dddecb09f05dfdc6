package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/personachat/internal/chatclient"
	"github.com/personachat/internal/personas"
	"github.com/personachat/pkg/models"
)

// ChatCommand returns the interactive terminal chat client
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with a persona through a running API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Usage: "Chat API base URL (overrides client.server_url)",
			},
			&cli.StringFlag{
				Name:  "persona",
				Usage: "Persona to start with",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory for the saved transcript (overrides client.data_dir)",
			},
		},
		Action: runChat,
	}
}

func runChat(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	registry, err := personas.New(cfg.PersonaTable())
	if err != nil {
		return fmt.Errorf("invalid personas: %w", err)
	}

	serverURL := cfg.Client.ServerURL
	if c.IsSet("server") {
		serverURL = c.String("server")
	}
	dataDir := cfg.Client.DataDir
	if c.IsSet("data-dir") {
		dataDir = c.String("data-dir")
	}

	store, err := chatclient.NewFileStore(dataDir)
	if err != nil {
		return err
	}

	session := chatclient.NewSession(chatclient.NewHTTPTransport(serverURL), store, registry.Default().ID)
	if id := c.String("persona"); id != "" {
		if _, ok := registry.GetByID(id); !ok {
			return fmt.Errorf("unknown persona %q", id)
		}
		session.SwitchPersona(id)
	}

	return chatLoop(c.Context, session, registry, os.Stdin, os.Stdout)
}

// chatLoop reads lines from in until EOF or /quit. Lines starting with a slash are commands.
func chatLoop(ctx context.Context, session *chatclient.Session, registry *personas.Registry, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Chatting with %s. Commands: /persona <id>, /retry, /clear, /history, /quit\n",
		personaName(registry, session.CurrentPersona()))
	if session.HasMessages() {
		fmt.Fprintf(out, "Restored %d earlier messages. Use /history to show them.\n", len(session.Messages()))
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/clear":
			if err := session.ClearChat(); err != nil {
				fmt.Fprintf(out, "Failed to clear history: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "Chat history cleared.")
		case line == "/history":
			for _, m := range session.Messages() {
				printMessage(out, registry, m)
			}
		case line == "/retry":
			before := len(session.Messages())
			session.RetryLastMessage(ctx)
			printSince(out, registry, session, before)
		case strings.HasPrefix(line, "/persona"):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/persona"))
			if _, ok := registry.GetByID(id); !ok {
				fmt.Fprintf(out, "Unknown persona %q. Available: %s\n", id, strings.Join(personaIDs(registry), ", "))
				continue
			}
			before := len(session.Messages())
			session.SwitchPersona(id)
			printSince(out, registry, session, before)
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(out, "Unknown command %s\n", line)
		default:
			before := len(session.Messages())
			session.SendMessage(ctx, line)
			// skip echoing the user's own line
			printSince(out, registry, session, before+1)
		}
	}
	return scanner.Err()
}

func printSince(out io.Writer, registry *personas.Registry, session *chatclient.Session, from int) {
	msgs := session.Messages()
	for i := from; i < len(msgs); i++ {
		printMessage(out, registry, msgs[i])
	}
}

func printMessage(out io.Writer, registry *personas.Registry, m models.Message) {
	ts := time.UnixMilli(m.Timestamp).Format("15:04")
	if m.Role == models.RoleUser {
		fmt.Fprintf(out, "[%s] You: %s\n", ts, m.Content)
		return
	}
	fmt.Fprintf(out, "[%s] %s: %s\n", ts, personaName(registry, m.PersonaID), m.Content)
}

func personaName(registry *personas.Registry, id string) string {
	if p, ok := registry.GetByID(id); ok {
		return p.Name
	}
	if id == "" {
		return "Assistant"
	}
	return id
}

func personaIDs(registry *personas.Registry) []string {
	var ids []string
	for _, p := range registry.All() {
		ids = append(ids, p.ID)
	}
	return ids
}
