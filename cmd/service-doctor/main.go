package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"ticket-service/internal/config"
	"ticket-service/internal/observability"
)

// Check describes one diagnostic check
type Check struct {
	Name     string
	Func     func(ctx context.Context) error
	Error    error
	Duration time.Duration
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML config file")
	serviceURL := flag.String("service", "http://localhost:8080", "ticket-service base URL")
	flag.Parse()

	logger := observability.SetupLogger("development")
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "ERROR", err)
		os.Exit(1)
	}

	checks := buildChecks(cfg, *serviceURL, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fmt.Println("Running ticket-service diagnostics...")
	runChecks(ctx, checks)

	fmt.Println("\n--- Diagnostics report ---")
	if !report(checks) {
		fmt.Println("\nDiagnostics found problems.")
		os.Exit(1)
	}
	fmt.Println("\nAll systems healthy!")
}

// buildChecks lists the dependencies the configured service actually uses.
func buildChecks(cfg *config.Config, serviceURL string, logger *slog.Logger) []Check {
	checks := []Check{
		{Name: "Ticket Service", Func: func(ctx context.Context) error {
			return checkHTTPHealth(ctx, serviceURL+"/health", logger)
		}},
	}

	if gw := cfg.Gateways.Payment; gw.Driver == "http" {
		checks = append(checks, Check{Name: "Payment Gateway", Func: func(ctx context.Context) error {
			return checkHTTPHealth(ctx, gw.URL+"/health", logger)
		}})
	}

	switch gw := cfg.Gateways.SeatReservation; gw.Driver {
	case "http":
		checks = append(checks, Check{Name: "Seat Reservation Gateway", Func: func(ctx context.Context) error {
			return checkHTTPHealth(ctx, gw.URL+"/health", logger)
		}})
	case "kafka":
		checks = append(checks, Check{Name: "Kafka Cluster", Func: func(ctx context.Context) error {
			return checkKafka(ctx, strings.Split(cfg.Kafka.BootstrapServers, ","))
		}})
	}

	if cfg.Redis.Addr != "" {
		checks = append(checks, Check{Name: "Redis", Func: func(ctx context.Context) error {
			return checkRedis(ctx, cfg.Redis.Addr, logger)
		}})
	}

	return checks
}

func runChecks(ctx context.Context, checks []Check) {
	var wg sync.WaitGroup
	for i := range checks {
		wg.Add(1)
		go func(c *Check) {
			defer wg.Done()
			start := time.Now()
			c.Error = c.Func(ctx)
			c.Duration = time.Since(start)
		}(&checks[i])
	}
	wg.Wait()
}

// report prints one line per check and returns true when all passed.
func report(checks []Check) bool {
	ok := color.New(color.FgGreen).SprintFunc()
	failed := color.New(color.FgRed).SprintFunc()

	healthy := true
	for _, c := range checks {
		if c.Error == nil {
			fmt.Printf("[%s] %-25s (%v)\n", ok("OK"), c.Name, c.Duration.Round(time.Millisecond))
			continue
		}
		healthy = false
		fmt.Printf("[%s] %-25s (%v) - %v\n", failed("FAILED"), c.Name, c.Duration.Round(time.Millisecond), c.Error)
	}
	return healthy
}

// --- Functions for checks ---

func checkHTTPHealth(ctx context.Context, url string, logger *slog.Logger) error {
	if !strings.HasPrefix(url, "http") {
		url = "http://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "ERROR", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return nil
}

func checkRedis(ctx context.Context, addr string, logger *slog.Logger) error {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("failed to close Redis", "ERROR", err)
		}
	}()
	return rdb.Ping(ctx).Err()
}

func checkKafka(ctx context.Context, brokers []string) error {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DialTimeout(5*time.Second),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.Ping(ctx)
}
