package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ticket-service/internal/adapters/gateway/mock"
	httphandler "ticket-service/internal/adapters/http"
	"ticket-service/internal/app"
	"ticket-service/internal/config"
	"ticket-service/internal/core/domain"
	"ticket-service/internal/core/ports"
)

var (
	success = color.New(color.FgGreen, color.Bold)
	failure = color.New(color.FgRed, color.Bold)
	faint   = color.New(color.Faint)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		failure.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type options struct {
	apiURL     string
	token      string
	local      bool
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ticketctl",
		Short:         "Buy tickets and inspect prices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", "http://localhost:8080", "ticket-service base URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TICKET_API_TOKEN"), "Bearer token for /api/v1")
	rootCmd.PersistentFlags().BoolVar(&opts.local, "local", false, "Run the service in-process with log-only gateways")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file for --local (env vars still apply)")

	rootCmd.AddCommand(newPurchaseCmd(opts), newPricesCmd(opts))
	return rootCmd
}

func newPurchaseCmd(opts *options) *cobra.Command {
	var accountID int64
	var tickets []string

	cmd := &cobra.Command{
		Use:     "purchase",
		Short:   "Purchase tickets for an account",
		Example: "  ticketctl purchase --account 1 --ticket ADULT=2 --ticket CHILD=1",
		RunE: func(cmd *cobra.Command, _ []string) error {
			requests, err := parseTicketFlags(tickets)
			if err != nil {
				return err
			}

			var result *domain.PurchaseResult
			if opts.local {
				svc, err := localService(opts.configPath)
				if err != nil {
					return err
				}
				result, err = svc.PurchaseTickets(cmd.Context(), accountID, requests...)
				if err != nil {
					return err
				}
			} else {
				result, err = remotePurchase(cmd.Context(), opts, accountID, requests)
				if err != nil {
					return err
				}
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().Int64Var(&accountID, "account", 0, "Account ID")
	cmd.Flags().StringArrayVar(&tickets, "ticket", nil, "TYPE=QUANTITY, repeatable (ADULT, CHILD, INFANT)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newPricesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Show ticket prices and the purchase limit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var prices httphandler.PricesResponse
			if opts.local {
				svc, err := localService(opts.configPath)
				if err != nil {
					return err
				}
				prices = httphandler.PricesResponse{Prices: svc.Pricing(), MaxTickets: svc.MaxTickets()}
			} else if err := callAPI(cmd.Context(), opts, http.MethodGet, "/api/v1/prices", nil, &prices); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tPRICE")
			for _, t := range domain.TicketTypes {
				fmt.Fprintf(w, "%s\t%d\n", t, prices.Prices.PriceOf(t))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			faint.Fprintf(cmd.OutOrStdout(), "max %d tickets per purchase\n", prices.MaxTickets)
			return nil
		},
	}
}

// parseTicketFlags turns "ADULT=2" style flags into ticket requests.
// Quantities are passed through unchecked; the service rejects bad ones.
func parseTicketFlags(flags []string) ([]domain.TicketTypeRequest, error) {
	requests := make([]domain.TicketTypeRequest, 0, len(flags))
	for _, f := range flags {
		name, qty, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --ticket %q, expected TYPE=QUANTITY", f)
		}
		t, err := domain.ParseTicketType(strings.ToUpper(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in --ticket %q: %w", f, err)
		}
		requests = append(requests, domain.NewTicketTypeRequest(t, n))
	}
	return requests, nil
}

func localService(configPath string) (ports.TicketService, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return app.NewTicketService(mock.NewPaymentGateway(logger), mock.NewSeatReservationGateway(logger), cfg.Ticketing, logger), nil
}

func remotePurchase(ctx context.Context, opts *options, accountID int64, requests []domain.TicketTypeRequest) (*domain.PurchaseResult, error) {
	body := httphandler.PurchaseRequest{AccountID: accountID}
	for _, r := range requests {
		body.Tickets = append(body.Tickets, httphandler.TicketRequest{Type: r.Type(), Quantity: r.Quantity()})
	}

	var result domain.PurchaseResult
	if err := callAPI(ctx, opts, http.MethodPost, "/api/v1/purchases", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func callAPI(ctx context.Context, opts *options, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(opts.apiURL, "/")+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("ticket-service returned %s", resp.Status)
		}
		return fmt.Errorf("%s (%s)", apiErr.Error, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func printResult(w io.Writer, result *domain.PurchaseResult) {
	success.Fprintln(w, result.Message)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "account\t%d\n", result.AccountID)
	for _, t := range domain.TicketTypes {
		fmt.Fprintf(tw, "%s\t%d\n", strings.ToLower(t.String()), result.TicketCounts.Of(t))
	}
	fmt.Fprintf(tw, "seats\t%d\n", result.TotalSeats)
	fmt.Fprintf(tw, "total\t%d\n", result.TotalAmount)
	_ = tw.Flush()
}
