// Command google-authorize runs the one-time OAuth2 authorization flow for
// the Google Calendar backend and writes the token file the scheduling
// service reads at startup. Run it once per deployment, paste the code from
// the browser, done.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

func main() {
	var (
		credentialsPath = flag.String("credentials", getenv("GOOGLE_CREDENTIALS_PATH", "credentials.json"), "OAuth client secrets JSON")
		tokenPath       = flag.String("token", getenv("GOOGLE_TOKEN_PATH", "token.json"), "where to write the authorized token")
	)
	flag.Parse()

	creds, err := os.ReadFile(*credentialsPath)
	if err != nil {
		fatal("read credentials: " + err.Error())
	}
	conf, err := google.ConfigFromJSON(creds, gcal.CalendarScope)
	if err != nil {
		fatal("parse credentials: " + err.Error())
	}

	authURL := conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Println("Open this URL in a browser, authorize the calendar account, and paste the code below:")
	fmt.Println()
	fmt.Println("  " + authURL)
	fmt.Println()
	fmt.Print("Authorization code: ")

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		fatal("read code: " + err.Error())
	}
	code = strings.TrimSpace(code)
	if code == "" {
		fatal("no authorization code provided")
	}

	token, err := conf.Exchange(context.Background(), code)
	if err != nil {
		fatal("exchange code: " + err.Error())
	}

	out, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		fatal("encode token: " + err.Error())
	}
	if err := os.WriteFile(*tokenPath, out, 0600); err != nil {
		fatal("write token: " + err.Error())
	}
	fmt.Println("Token written to " + *tokenPath)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
