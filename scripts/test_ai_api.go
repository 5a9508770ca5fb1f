package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func envelopeData(body []byte) map[string]interface{} {
	var env map[string]interface{}
	json.Unmarshal(body, &env)
	data, _ := env["data"].(map[string]interface{})
	return data
}

func main() {
	color.Cyan("🚀 Starting Assistant Chat API Smoke Test\n")

	// 1. Anonymous sign-in
	color.Yellow("\n1. Anonymous Sign-In")
	resp, body, err := sendRequest("POST", "/auth/anonymous", "", map[string]interface{}{"display_name": "Smoke Tester"})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	authData := envelopeData(body)
	prettyPrint(authData)

	token, _ := authData["token"].(string)
	if token == "" {
		color.Red("No token in response, aborting")
		os.Exit(1)
	}

	// 2. Create a chat session
	color.Yellow("\n2. Create Chat Session")
	resp, body, err = sendRequest("POST", "/chat/sessions", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	sessionData := envelopeData(body)
	prettyPrint(sessionData)

	sessionId, _ := sessionData["id"].(string)

	// 3. Canned tiers: identity, clock, calculator
	utterances := []string{
		"who are you",
		"what time is it",
		"what is 5 plus 5 times 2",
		"my interests are football and space",
		"what are the trends in space",
	}
	for i, u := range utterances {
		color.Yellow("\n3.%d. Send Chat: %q", i+1, u)
		resp, body, err = sendRequest("POST", "/chat", token, map[string]interface{}{
			"chat_session_id": sessionId,
			"chat":            u,
			"offline":         true,
		})
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)
		prettyPrint(envelopeData(body))
	}

	// 4. Low-confidence transcript is re-prompted
	color.Yellow("\n4. Low-Confidence Transcript")
	resp, body, err = sendRequest("POST", "/chat/transcript", token, map[string]interface{}{
		"chat_session_id": sessionId,
		"transcript":      "whats the weather",
		"confidence":      0.42,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(envelopeData(body))

	// 5. History
	color.Yellow("\n5. Get Chat History")
	resp, body, err = sendRequest("GET", "/chat/sessions/"+sessionId+"/history", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var env map[string]interface{}
	json.Unmarshal(body, &env)
	prettyPrint(env["data"])

	// 6. Clear history back to greeting
	color.Yellow("\n6. Clear History")
	resp, _, err = sendRequest("DELETE", "/chat/sessions/"+sessionId+"/messages", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	color.Cyan("\n✅ Smoke test finished")
}
