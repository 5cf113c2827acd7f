package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/saja-boys/jinwoo-server/types"
)

// Simple CLI tool that sends one chat turn (or a voice/translate request)
// to a running server. Useful for smoke-testing a deployment.
func main() {
	server := flag.String("server", "http://localhost:3001", "server base URL")
	action := flag.String("action", "chat", "action: chat|voice|translate|missions|health")
	message := flag.String("message", "안녕하세요!", "user message (chat) or text (voice/translate)")
	missionIdx := flag.Int("mission", 0, "current mission index (chat)")
	isKorean := flag.Bool("korean", true, "source text is Korean (translate)")
	flag.Parse()

	base := strings.TrimRight(*server, "/")

	var (
		resp *http.Response
		err  error
	)

	switch strings.ToLower(*action) {
	case "chat":
		idx := *missionIdx
		body, _ := json.Marshal(types.ChatRequest{Message: *message, CurrentMission: &idx})
		resp, err = http.Post(base+"/api/chat", "application/json", bytes.NewReader(body))

	case "voice":
		body, _ := json.Marshal(types.VoiceRequest{Text: *message})
		resp, err = http.Post(base+"/api/jinu-voice", "application/json", bytes.NewReader(body))

	case "translate":
		body, _ := json.Marshal(types.TranslateRequest{Text: *message, IsKorean: *isKorean})
		resp, err = http.Post(base+"/api/translate", "application/json", bytes.NewReader(body))

	case "missions":
		resp, err = http.Get(base + "/api/missions")

	case "health":
		resp, err = http.Get(base + "/api/health")

	default:
		fmt.Fprintf(os.Stderr, "unknown action: %s\n", *action)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "HTTP error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		fmt.Fprintf(os.Stderr, "HTTP %d: %s\n", resp.StatusCode, string(data))
		os.Exit(2)
	}

	// Pretty-print when the body is JSON; fallback to raw
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(data))
	}
}
