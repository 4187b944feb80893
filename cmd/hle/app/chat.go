package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/hle-eval/hle/internal/api"
	"github.com/hle-eval/hle/internal/client"
)

// ChatOptions holds options for the chat command
type ChatOptions struct {
	*GlobalOptions

	// URL is the engine API base URL from the optional positional
	// argument; empty means the configured default
	URL string
}

// NewChatCommand creates the chat command.
//
// The chat command starts an interactive chat session against the served
// model, mainly useful for eyeballing the engine before committing to a
// long prediction run.
//
// Usage:
//
//	hle chat [URL]
func NewChatCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ChatOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "chat [URL]",
		Short: "Chat interactively with the served model",
		Long: `Start an interactive chat session with the served model.

Responses stream in real time; reasoning output from the engine's
reasoning parser is shown between <think> markers before the answer.

Type a message and press Enter. Use '/h' or '/?' for help, '/quit' to
exit.`,
		Example: `  # Chat with the local engine
  hle chat

  # Chat with a remote engine
  hle chat http://10.0.0.5:9000/v1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.URL = args[0]
			}
			return runChat(opts)
		},
	}

	return cmd
}

// chatSession holds the state of a chat session
type chatSession struct {
	client       *client.Client
	model        string
	messages     []api.ChatMessage
	systemPrompt string
	temperature  float64
	topP         float64
	maxTokens    int
	readline     *readline.Instance
	output       io.Writer
}

// runChat executes the chat command logic
func runChat(opts *ChatOptions) error {
	cfg, err := loadConfig(opts.GlobalOptions)
	checkError(err)

	endpoint := cfg.Predict.Endpoint
	if opts.URL != "" {
		endpoint = opts.URL
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	session := &chatSession{
		client:      client.NewClient(endpoint),
		model:       cfg.Predict.Model,
		temperature: cfg.Predict.Temperature,
		topP:        0.95,
		maxTokens:   8192,
		readline:    rl,
		output:      rl.Stdout(),
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Chat session with %s at %s\n", session.model, endpoint)
	fmt.Println("Type your message and press Enter. Use '/h' or '/?' for help, '/quit' to exit.")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			break
		}

		userInput := strings.TrimSpace(line)
		if userInput == "" {
			continue
		}

		if strings.HasPrefix(userInput, "/") {
			if shouldExit := session.handleCommand(userInput); shouldExit {
				break
			}
			continue
		}

		session.messages = append(session.messages, api.ChatMessage{
			Role:    "user",
			Content: userInput,
		})

		ctx, cancel := context.WithCancel(context.Background())

		// Ctrl+C during generation cancels the request, not the session.
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		fmt.Fprint(session.output, "\nAssistant: ")
		response, err := session.streamResponse(ctx)

		signal.Stop(sigChan)
		close(sigChan)
		cancel()

		if err != nil {
			if ctx.Err() != context.Canceled {
				fmt.Fprintf(session.output, "\nError: %v\n", err)
			} else {
				fmt.Fprint(session.output, "\n")
			}
			// Drop the failed user message so history stays consistent
			// with what the model actually saw.
			session.messages = session.messages[:len(session.messages)-1]
			session.readline.Refresh()
			continue
		}

		fmt.Fprint(session.output, "\n")
		session.readline.Refresh()

		session.messages = append(session.messages, api.ChatMessage{
			Role:    "assistant",
			Content: response,
		})
	}

	return nil
}

// streamResponse sends the conversation to the engine and streams the
// reply, printing reasoning output between <think> markers. It returns
// the accumulated visible content.
func (s *chatSession) streamResponse(ctx context.Context) (string, error) {
	messages := s.messages
	if s.systemPrompt != "" {
		messages = append([]api.ChatMessage{
			{Role: "system", Content: s.systemPrompt},
		}, messages...)
	}

	req := api.ChatRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: s.temperature,
		TopP:        s.topP,
		MaxTokens:   s.maxTokens,
	}

	var content strings.Builder
	inReasoning := false

	err := s.client.StreamChat(ctx, req, func(delta api.ChatDelta) {
		if delta.ReasoningContent != "" {
			if !inReasoning {
				fmt.Fprint(s.output, "<think>\n")
				inReasoning = true
			}
			fmt.Fprint(s.output, delta.ReasoningContent)
		}
		if delta.Content != "" {
			if inReasoning {
				fmt.Fprint(s.output, "\n</think>\n\n")
				inReasoning = false
			}
			fmt.Fprint(s.output, delta.Content)
			content.WriteString(delta.Content)
		}
	})
	if err != nil {
		return "", err
	}

	return content.String(), nil
}

// handleCommand processes slash commands.
// Returns true if the session should exit.
func (s *chatSession) handleCommand(cmd string) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "/quit":
		fmt.Println("Goodbye!")
		return true

	case "/h", "/?":
		s.showHelp()

	case "/clear":
		s.messages = nil
		fmt.Println("Context cleared.")

	case "/history":
		s.showHistory()

	case "/set":
		s.handleSetCommand(parts[1:])

	case "/show":
		s.showConfig()

	default:
		fmt.Printf("Unknown command: %s\n", parts[0])
		fmt.Println("Type /h to see available commands.")
	}

	return false
}

// handleSetCommand handles /set commands
func (s *chatSession) handleSetCommand(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: /set <parameter> <value>")
		fmt.Println("Available parameters: system-prompt, temperature, top-p, max-tokens")
		return
	}

	param := args[0]
	value := strings.Join(args[1:], " ")

	switch param {
	case "system-prompt", "system":
		s.systemPrompt = value
		fmt.Printf("System prompt set to: %s\n", value)

	case "temperature", "temp":
		temp, err := parseFloat(value)
		if err != nil || temp < 0 || temp > 2 {
			fmt.Println("Invalid temperature. Must be between 0 and 2.")
			return
		}
		s.temperature = temp
		fmt.Printf("Temperature set to: %.2f\n", temp)

	case "top-p", "top_p":
		topP, err := parseFloat(value)
		if err != nil || topP < 0 || topP > 1 {
			fmt.Println("Invalid top-p. Must be between 0 and 1.")
			return
		}
		s.topP = topP
		fmt.Printf("Top-p set to: %.2f\n", topP)

	case "max-tokens", "max_tokens":
		maxTokens, err := parseInt(value)
		if err != nil || maxTokens < 1 {
			fmt.Println("Invalid max-tokens. Must be a positive integer.")
			return
		}
		s.maxTokens = maxTokens
		fmt.Printf("Max tokens set to: %d\n", maxTokens)

	default:
		fmt.Printf("Unknown parameter: %s\n", param)
		fmt.Println("Available: system-prompt, temperature, top-p, max-tokens")
	}
}

// showHelp displays available commands
func (s *chatSession) showHelp() {
	fmt.Println()
	fmt.Println("  /h, /?                  Show this help")
	fmt.Println("  /quit                   Exit the chat session")
	fmt.Println("  /clear                  Clear conversation history")
	fmt.Println("  /history                Show conversation history")
	fmt.Println("  /show                   Show current configuration")
	fmt.Println("  /set <param> <value>    Set a parameter:")
	fmt.Println("    system-prompt <text>    Set system prompt")
	fmt.Println("    temperature <0-2>       Set temperature")
	fmt.Println("    top-p <0-1>             Set top-p")
	fmt.Println("    max-tokens <number>     Set max tokens")
	fmt.Println()
}

// showHistory displays the conversation history
func (s *chatSession) showHistory() {
	if len(s.messages) == 0 {
		fmt.Println("No messages in history.")
		return
	}

	fmt.Println("\n" + strings.Repeat("-", 60))
	fmt.Println("Conversation History:")
	fmt.Println(strings.Repeat("-", 60))

	for i, msg := range s.messages {
		if msg.Role == "user" {
			fmt.Printf("\n[%d] You:\n%s\n", i+1, msg.Content)
		} else {
			fmt.Printf("\n[%d] Assistant:\n%s\n", i+1, msg.Content)
		}
	}
	fmt.Println(strings.Repeat("-", 60))
}

// showConfig displays current configuration
func (s *chatSession) showConfig() {
	fmt.Println("\n" + strings.Repeat("-", 60))
	fmt.Println("Current Configuration:")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Model:          %s\n", s.model)
	fmt.Printf("Endpoint:       %s\n", s.client.BaseURL())
	if s.systemPrompt != "" {
		fmt.Printf("System Prompt:  %s\n", s.systemPrompt)
	} else {
		fmt.Printf("System Prompt:  (using model default)\n")
	}
	fmt.Printf("Temperature:    %.2f\n", s.temperature)
	fmt.Printf("Top-p:          %.2f\n", s.topP)
	fmt.Printf("Max Tokens:     %d\n", s.maxTokens)
	fmt.Printf("Messages:       %d\n", len(s.messages))
	fmt.Println(strings.Repeat("-", 60))
}

// parseFloat parses a string to float64
func parseFloat(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(s, "%f", &f)
	return f, err
}

// parseInt parses a string to int
func parseInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	return i, err
}
