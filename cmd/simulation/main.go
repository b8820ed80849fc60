package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// Scripted conversations replayed against a running server. Each one uses a
// fresh user id so sessions never leak between scripts.
var conversations = []struct {
	name  string
	turns []string
}{
	{"model-then-reference", []string{
		"Haben Sie den Embraco NJ 9238?",
		"what's the price of that",
		"is it in stock?",
	}},
	{"category-paging", []string{
		"Zeig mir Kompressoren",
		"mehr anzeigen",
		"show more",
	}},
	{"price-range", []string{
		"Kompressoren unter 300 Euro",
		"anything under 100 euro?",
	}},
	{"order-status", []string{
		"Wo ist meine Bestellung #4711?",
		"what's the status of that order",
	}},
}

type sendRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type outcome struct {
	Kind     string `json:"kind"`
	Intent   string `json:"intent"`
	Language string `json:"language"`
	Topic    string `json:"topic"`
	Match    *struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"match"`
	Candidates []struct {
		Name string `json:"name"`
	} `json:"candidates"`
	Page *struct {
		Start     int `json:"start"`
		End       int `json:"end"`
		Total     int `json:"total"`
		Remaining int `json:"remaining"`
	} `json:"page"`
}

type sendResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    outcome `json:"data"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api/chat/v1", "chat API base URL")
	only := flag.String("script", "", "run a single conversation")
	flag.Parse()

	token := os.Getenv("SIMULATION_TOKEN")

	fmt.Println("=== Sales Assistant Simulation Client ===")
	for _, conv := range conversations {
		name, turns := conv.name, conv.turns
		if *only != "" && *only != name {
			continue
		}
		userID := "sim-" + uuid.NewString()
		fmt.Printf("\n--- %s (%s) ---\n", name, userID)

		for _, text := range turns {
			fmt.Printf("USER: %s\n", text)

			start := time.Now()
			out, err := send(*baseURL, token, userID, text)
			elapsed := time.Since(start)
			if err != nil {
				log.Printf("Error: %v", err)
				break
			}
			fmt.Printf("BOT (%v): %s\n", elapsed, describe(out))
		}
	}
}

func send(baseURL, token, userID, text string) (*outcome, error) {
	body, _ := json.Marshal(sendRequest{UserID: userID, Text: text})
	req, err := http.NewRequest(http.MethodPost, baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}

	var res sendResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func describe(o *outcome) string {
	s := fmt.Sprintf("[%s] intent=%s lang=%s topic=%s", o.Kind, o.Intent, o.Language, o.Topic)
	if o.Match != nil {
		s += fmt.Sprintf(" -> %s (%.2f)", o.Match.Name, o.Match.Price)
	}
	if len(o.Candidates) > 0 {
		s += fmt.Sprintf(" -> %d candidates", len(o.Candidates))
	}
	if o.Page != nil {
		s += fmt.Sprintf(" [%d-%d of %d, %d more]", o.Page.Start+1, o.Page.End, o.Page.Total, o.Page.Remaining)
	}
	return s
}
