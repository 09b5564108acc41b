package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/void-terminal/voidterm/internal/client"
	"github.com/void-terminal/voidterm/internal/model"
)

func main() {
	cfg := client.Config{
		BaseURL:    getEnv("VOIDTERM_URL", "ws://localhost:8080"),
		TerminalID: getEnv("VOIDTERM_ID", "terminal-1"),
		Sender:     getEnv("VOIDTERM_SENDER", ""),
		MaxRetries: getEnvInt("VOIDTERM_MAX_RETRIES", 0),
		MaxHistory: getEnvInt("VOIDTERM_MAX_HISTORY", 0),
	}

	term, err := client.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create terminal: %v", err)
	}
	defer term.Destroy()

	term.Events().OnConnected(func() {
		fmt.Println("* connected")
	})
	term.Events().OnDisconnected(func(detail string) {
		if detail == "" {
			detail = "connection lost"
		}
		fmt.Printf("* disconnected: %s\n", detail)
	})
	term.Events().OnMessage(func(msg *model.Message) {
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Local().Format(time.TimeOnly), msg.Sender, msg.Content)
	})
	term.Events().OnError(func(err error) {
		fmt.Printf("* error: %v\n", err)
	})

	term.Connect()

	// Tear down cleanly on Ctrl-C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		term.Destroy()
		os.Exit(0)
	}()

	fmt.Printf("voidterm %s -> %s (/reconnect, /clear, /state to control)\n", term.TerminalID(), cfg.BaseURL)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/reconnect":
			term.Reconnect()
		case "/clear":
			term.ClearHistory()
			fmt.Println("* history cleared")
		case "/state":
			fmt.Printf("* state=%s queued=%d history=%d\n", term.State(), term.Queued(), len(term.History()))
		default:
			if err := term.Send(line); err != nil {
				fmt.Printf("* send failed: %v\n", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("stdin error: %v", err)
	}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("ignoring invalid %s=%q", key, raw)
		return defaultValue
	}
	return value
}
