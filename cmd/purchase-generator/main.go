package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
)

// ticketLine and purchaseRequest mirror the body that ticket-service expects.
type ticketLine struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type purchaseRequest struct {
	AccountID int64        `json:"account_id"`
	Tickets   []ticketLine `json:"tickets"`
}

// fakePurchase is filled by faker. The ranges are wide enough that some
// generated purchases break the business rules on purpose.
type fakePurchase struct {
	AccountID int64 `faker:"boundary_start=0, boundary_end=5000"`
	Adults    int   `faker:"boundary_start=0, boundary_end=15"`
	Children  int   `faker:"boundary_start=0, boundary_end=10"`
	Infants   int   `faker:"boundary_start=0, boundary_end=6"`
}

func main() {
	// 1. Setting up flags
	targetURL := flag.String("target", "http://localhost:8080/api/v1/purchases", "Target URL for sending purchases")
	rps := flag.Int("rps", 20, "Requests per second")
	token := flag.String("token", "", "Bearer token for the API")
	flag.Parse()

	interval, err := tickInterval(*rps)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	log.Printf("Starting generator: target=%s, rps=%d\n", *targetURL, *rps)

	// 2. Managing the request frequency via ticker
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 3. Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 10 * time.Second}

	// 4. Main loop
	for {
		select {
		case <-ticker.C:
			// Start sending in a goroutine so as not to block the ticker
			go sendRequest(ctx, client, *targetURL, *token)
		case <-ctx.Done():
			log.Println("Shutting down generator...")
			return
		}
	}
}

// tickInterval is the gap between requests for the given rate.
func tickInterval(rps int) (time.Duration, error) {
	if rps <= 0 || time.Duration(rps) > time.Second {
		return 0, fmt.Errorf("rps must be between 1 and %d, got %d", int64(time.Second), rps)
	}
	return time.Second / time.Duration(rps), nil
}

func newPurchaseRequest() (purchaseRequest, error) {
	var fake fakePurchase
	if err := faker.FakeData(&fake); err != nil {
		return purchaseRequest{}, err
	}

	req := purchaseRequest{AccountID: fake.AccountID}
	for _, line := range []ticketLine{
		{Type: "ADULT", Quantity: fake.Adults},
		{Type: "CHILD", Quantity: fake.Children},
		{Type: "INFANT", Quantity: fake.Infants},
	} {
		if line.Quantity > 0 {
			req.Tickets = append(req.Tickets, line)
		}
	}
	return req, nil
}

func sendRequest(ctx context.Context, client *http.Client, url, token string) {
	reqData, err := newPurchaseRequest()
	if err != nil {
		log.Printf("ERROR: failed to generate purchase: %v", err)
		return
	}

	body, err := json.Marshal(reqData)
	if err != nil {
		log.Printf("ERROR: failed to marshal request: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("ERROR: failed to create request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("ERROR: failed to send request: %v", err)
		return
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body : %v", err)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		log.Printf("INFO: purchase accepted, account=%d tickets=%v", reqData.AccountID, reqData.Tickets)
	case resp.StatusCode == http.StatusBadRequest:
		log.Printf("INFO: purchase rejected, account=%d tickets=%v", reqData.AccountID, reqData.Tickets)
	default:
		log.Printf("WARN: received unexpected status code: %d", resp.StatusCode)
	}
}
