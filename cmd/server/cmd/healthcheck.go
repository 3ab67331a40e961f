package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /healthz endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.
It exits with code 0 if the server is healthy, non-zero otherwise.`,
		RunE: runHealthcheck,
	}

	healthcheckTimeout int
	healthcheckURL     string
)

func init() {
	healthcheckCmd.Flags().IntVar(&healthcheckTimeout, "timeout", 5, "timeout in seconds")
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/healthz)")
}

type healthResponse struct {
	Status string `json:"status"`
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	url := healthcheckURL
	if url == "" {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		url = fmt.Sprintf("http://localhost:%s/healthz", port)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(healthcheckTimeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("parse health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("unhealthy: status=%s", health.Status)
	}
	return nil
}
