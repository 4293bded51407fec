package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

func main() {
	adminSecret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
	if adminSecret == "" {
		fmt.Println("Missing ADMIN_SECRET environment variable")
		os.Exit(1)
	}

	source := "SAM_GOV"
	if len(os.Args) > 1 {
		source = strings.ToUpper(os.Args[1])
	}

	base := os.Getenv("API_BASE")
	if base == "" {
		base = "http://localhost:8081"
	}

	url := base + "/api/v1/scraper/run/" + source
	if source == "ALL" {
		url = base + "/api/v1/scraper/run"
	}

	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("X-Admin-Secret", adminSecret)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	fmt.Printf("Response Status: %s\n", resp.Status)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
