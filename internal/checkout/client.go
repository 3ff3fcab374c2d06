// Package checkout creates hosted checkout sessions with the Midtrans Snap
// gateway and interprets the transaction results it reports back.
package checkout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog"
)

const (
	// SandboxBaseURL is the Snap sandbox host.
	SandboxBaseURL = "https://app.sandbox.midtrans.com"

	// ProductionBaseURL is the Snap production host.
	ProductionBaseURL = "https://app.midtrans.com"

	transactionsPath = "/snap/v1/transactions"

	defaultItemName     = "Invoice"
	defaultCustomerName = "Client"
)

// Client opens Snap transactions and verifies their notifications.
type Client struct {
	serverKey string
	snap      snap.Client
	now       func() time.Time
	log       zerolog.Logger
}

// NewClient creates a checkout client. An empty baseURL selects the sandbox;
// any host other than the sandbox or production one receives the sandbox
// API paths, which is how local gateways are plugged in.
func NewClient(serverKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(serverKey) == "" {
		return nil, ErrMissingServerKey
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	log := logger.WithComponent("checkout")
	env := midtrans.Sandbox
	if baseURL == ProductionBaseURL {
		env = midtrans.Production
	}

	var httpClient midtrans.HttpClient = &midtrans.HttpClientImplementation{
		HttpClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     gatewayLogger{log: log},
	}
	if baseURL != "" && baseURL != SandboxBaseURL && baseURL != ProductionBaseURL {
		httpClient = &rebasedClient{from: env.SnapURL(), to: baseURL, next: httpClient}
	}

	return &Client{
		serverKey: serverKey,
		snap: snap.Client{
			ServerKey:  serverKey,
			Env:        env,
			HttpClient: httpClient,
			Options:    &midtrans.ConfigOptions{},
		},
		now: time.Now,
		log: log,
	}, nil
}

// Session is a created checkout session.
type Session struct {
	OrderID     string `json:"orderId"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// OrderID builds the gateway order id for an invoice:
// INV-<first 8 characters of the id>-<last 6 digits of the unix millis>.
func OrderID(invoiceID string, now time.Time) string {
	return fmt.Sprintf("%s%06d", orderPrefix(invoiceID), now.UnixMilli()%1_000_000)
}

func orderPrefix(invoiceID string) string {
	if len(invoiceID) > 8 {
		invoiceID = invoiceID[:8]
	}
	return "INV-" + invoiceID + "-"
}

func newSnapRequest(inv *models.Invoice, orderID string) *snap.Request {
	name := strings.TrimSpace(inv.Description)
	if name == "" {
		name = defaultItemName
	}
	customer := strings.TrimSpace(inv.ClientName)
	if customer == "" {
		customer = defaultCustomerName
	}

	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{OrderID: orderID, GrossAmt: inv.Total},
		Items: &[]midtrans.ItemDetails{{
			ID:    inv.ID,
			Name:  name,
			Price: inv.Total,
			Qty:   1,
		}},
		CustomerDetail: &midtrans.CustomerDetails{FName: customer},
		CustomField1:   inv.ID,
	}
}

// CreateSession opens a checkout session for one unpaid invoice.
func (c *Client) CreateSession(ctx context.Context, inv *models.Invoice) (*Session, error) {
	const op = "CreateSession"

	if inv.IsPaid() {
		return nil, &CheckoutError{Op: op, Err: ErrAlreadyPaid, Details: inv.ID}
	}
	if inv.Total <= 0 {
		return nil, &CheckoutError{Op: op, Err: ErrInvalidAmount, Details: inv.ID}
	}
	if err := ctx.Err(); err != nil {
		return nil, &CheckoutError{Op: op, Err: err}
	}

	orderID := OrderID(inv.ID, c.now())
	c.log.Debug().
		Str("invoice_id", inv.ID).
		Str("order_id", orderID).
		Int64("gross_amount", inv.Total).
		Msg("Creating checkout session")

	// per-call copy so concurrent sessions do not share options
	sc := c.snap
	sc.Options = &midtrans.ConfigOptions{Ctx: ctx}

	resp, gwErr := sc.CreateTransaction(newSnapRequest(inv, orderID))
	if gwErr != nil {
		c.log.Error().
			Int("status", gwErr.GetStatusCode()).
			Str("message", gwErr.GetMessage()).
			Msg("Gateway rejected checkout request")
		return nil, &CheckoutError{
			Op:         op,
			StatusCode: gwErr.GetStatusCode(),
			Err:        gwErr,
			Details:    gatewayDetails(gwErr),
		}
	}
	if resp.Token == "" {
		return nil, &CheckoutError{Op: op, Err: ErrMissingToken, Details: strings.Join(resp.ErrorMessages, "; ")}
	}

	c.log.Info().
		Str("invoice_id", inv.ID).
		Str("order_id", orderID).
		Msg("Checkout session created")

	return &Session{OrderID: orderID, Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func gatewayDetails(err *midtrans.Error) string {
	if raw := err.GetRawApiResponse(); raw != nil {
		return strings.TrimSpace(string(raw.RawBody))
	}
	return ""
}

// rebasedClient sends Snap calls to a different host.
type rebasedClient struct {
	from string
	to   string
	next midtrans.HttpClient
}

func (r *rebasedClient) Call(method, url string, apiKey *string, options *midtrans.ConfigOptions, body io.Reader, result interface{}) *midtrans.Error {
	return r.next.Call(method, r.to+strings.TrimPrefix(url, r.from), apiKey, options, body, result)
}

// gatewayLogger routes the gateway library's messages into zerolog. Debug
// output is dropped: it dumps request headers including Authorization.
type gatewayLogger struct {
	log zerolog.Logger
}

func (g gatewayLogger) Error(format string, val ...interface{}) {
	g.log.Error().Msgf(format, val...)
}

func (g gatewayLogger) Info(format string, val ...interface{}) {
	g.log.Trace().Msgf(format, val...)
}

func (g gatewayLogger) Debug(string, ...interface{}) {}
