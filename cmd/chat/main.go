package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	server := flag.String("server", "http://localhost:8888", "Recursive Witness server URL")
	user := flag.String("user", "cli-user", "User name for chat")
	flag.Parse()

	fmt.Println("Recursive Witness CLI")
	fmt.Printf("Server: %s | User: %s\n", *server, *user)
	fmt.Println("Type 'exit' or 'quit' to leave. Chat commands start with '!'.")
	fmt.Println("Commands: /status, /modes")
	fmt.Println("---")

	fetchModes(*server)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			return
		}
		if input == "/status" {
			fetchStatus(*server)
			continue
		}
		if input == "/modes" {
			fetchModes(*server)
			continue
		}

		sendMessage(*server, *user, input)
	}
}

func fetchModes(server string) {
	resp, err := http.Get(server + "/quantum/modes")
	if err != nil {
		printError("Failed to fetch modes: %v", err)
		return
	}
	defer resp.Body.Close()

	var modes []struct {
		Mode        string  `json:"mode"`
		Description string  `json:"description"`
		Temperature float64 `json:"temperature"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&modes); err != nil {
		printError("Failed to parse modes: %v", err)
		return
	}
	fmt.Println("Thinking modes:")
	for _, m := range modes {
		fmt.Printf("  %s (temp %g): %s\n", m.Mode, m.Temperature, m.Description)
	}
}

func fetchStatus(server string) {
	resp, err := http.Get(server + "/quantum/status")
	if err != nil {
		printError("Failed to fetch status: %v", err)
		return
	}
	defer resp.Body.Close()

	var status struct {
		Status            string   `json:"status"`
		Model             string   `json:"model"`
		ThoughtsProcessed int      `json:"thoughts_processed"`
		Uptime            string   `json:"uptime"`
		ModesAvailable    []string `json:"modes_available"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		printError("Failed to parse status: %v", err)
		return
	}
	fmt.Printf("Status: %s | Model: %s\n", status.Status, status.Model)
	fmt.Printf("Thoughts processed: %d | Uptime: %s\n", status.ThoughtsProcessed, status.Uptime)
	fmt.Printf("Modes: %s\n", strings.Join(status.ModesAvailable, ", "))
}

func sendMessage(server, user, content string) {
	body, _ := json.Marshal(map[string]string{
		"user_id":   user,
		"user_name": user,
		"content":   content,
	})

	client := &http.Client{Timeout: 65 * time.Second}
	resp, err := client.Post(
		server+"/api/gateway/rest/message",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		printError("Request failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		printError("Server error (%d): %s", resp.StatusCode, string(data))
		return
	}

	var msg struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		printError("Failed to parse response: %v", err)
		return
	}
	fmt.Println(msg.Content)
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\033[31m"+format+"\033[0m\n", args...)
}
