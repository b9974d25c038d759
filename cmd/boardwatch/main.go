// boardwatch renders a clinic's whiteboard in the terminal, refreshed on an
// interval. It is a thin client over the API server's board endpoint and
// doubles as a smoke test for the polling loop.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clearpaw/vetclinic-platform/internal/boardsync"
	appconfig "github.com/clearpaw/vetclinic-platform/internal/config"
	"github.com/clearpaw/vetclinic-platform/internal/whiteboard"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	var (
		baseURL  = flag.String("url", envOr("BOARD_API_URL", "http://localhost:8080"), "API server base URL")
		clinicID = flag.String("clinic", os.Getenv("CLINIC_ID"), "clinic id (required)")
		show     = flag.String("show", "all", "status filter: all|waiting|attending|completed|scheduled")
		query    = flag.String("q", "", "free-text search over owner, patient and reason")
		token    = flag.String("token", os.Getenv("STAFF_JWT"), "staff bearer token")
		interval = flag.Duration("interval", refreshInterval(cfg), "refresh interval (default from BOARD_POLL_INTERVAL)")
	)
	flag.Parse()

	if strings.TrimSpace(*clinicID) == "" {
		fmt.Fprintln(os.Stderr, "boardwatch: -clinic is required")
		os.Exit(2)
	}

	logger := logging.New(envOr("LOG_LEVEL", "warn"))

	client := &http.Client{Timeout: 10 * time.Second}
	fetch := func(ctx context.Context) ([]whiteboard.Row, error) {
		return fetchBoard(ctx, client, *baseURL, *clinicID, *show, *query, *token)
	}

	poller := boardsync.New(fetch, renderBoard).
		WithInterval(*interval).
		WithLogger(logger).
		WithOnError(func(err error) {
			fmt.Fprintf(os.Stderr, "boardwatch: refresh failed: %v\n", err)
		})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller.Run(ctx)
}

func fetchBoard(ctx context.Context, client *http.Client, baseURL, clinicID, show, query, token string) ([]whiteboard.Row, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/api/v1/board/")
	if err != nil {
		return nil, fmt.Errorf("boardwatch: parse url: %w", err)
	}
	params := u.Query()
	params.Set("show", show)
	if query != "" {
		params.Set("q", query)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("boardwatch: build request: %w", err)
	}
	req.Header.Set("X-Clinic-Id", clinicID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boardwatch: fetch board: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("boardwatch: fetch board: status %d", resp.StatusCode)
	}

	var payload struct {
		Data []whiteboard.Row `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("boardwatch: decode board: %w", err)
	}
	return payload.Data, nil
}

func renderBoard(rows []whiteboard.Row) {
	// ANSI clear screen and home.
	fmt.Print("\033[2J\033[H")
	fmt.Printf("Whiteboard  %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("%-4s %-20s %-20s %-10s %-10s %-8s %-8s\n",
		"#", "Patient", "Owner", "Status", "Priority", "Wait", "Turnd")
	for _, row := range rows {
		fmt.Printf("%-4d %-20s %-20s %-10s %-10s %-8s %-8s\n",
			row.Sno,
			orDash(row.PatientName),
			orDash(row.OwnerName),
			string(row.Status),
			string(row.Priority),
			minutesCell(row.WaitingTimeMinutes, row.WaitingLive),
			minutesCell(row.TurnaroundTimeMinutes, row.TurnaroundLive),
		)
	}
	if len(rows) == 0 {
		fmt.Println("(board empty)")
	}
}

func minutesCell(minutes *int, live bool) string {
	if minutes == nil {
		return "-"
	}
	if live {
		return fmt.Sprintf("%dm*", *minutes)
	}
	return fmt.Sprintf("%dm", *minutes)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// refreshInterval resolves the poll cadence from configuration.
func refreshInterval(cfg *appconfig.Config) time.Duration {
	if cfg != nil && cfg.BoardPollInterval > 0 {
		return cfg.BoardPollInterval
	}
	return 30 * time.Second
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
