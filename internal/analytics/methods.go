package analytics

import (
	"fmt"
	"os"

	"billing/pkg/models"
	"gopkg.in/yaml.v3"
)

// Payment method labels.
const (
	MethodBankTransfer = "Bank Transfer"
	MethodCreditCard   = "Credit Card"
	MethodEWallet      = "E-Wallet"
)

// Estimator names accepted by NewEstimator.
const (
	EstimatorFixedShare = "fixed"
	EstimatorAmountTier = "amount-tier"
)

// MethodBreakdown is one row of the payment-method chart.
//
// The records carry no payment method, so every row is an estimate produced
// by a MethodEstimator. SuccessRate is only reported by strategies that look
// at individual invoices.
type MethodBreakdown struct {
	Method      string   `json:"method"`
	Count       int      `json:"count"`
	Amount      int64    `json:"amount"`
	SuccessRate *float64 `json:"successRate,omitempty"`
}

// MethodEstimator synthesises a payment-method distribution for a set of
// invoices.
type MethodEstimator interface {
	Estimate(invoices []models.Invoice) []MethodBreakdown
}

// Share is the fraction of paid invoices and of paid revenue attributed to
// one method, in whole percent.
type Share struct {
	Method        string `yaml:"method"`
	CountPercent  int64  `yaml:"count_percent"`
	AmountPercent int64  `yaml:"amount_percent"`
}

// DefaultShares is the 60/30/10 by count, 70/25/5 by amount split that the
// existing dashboards display.
func DefaultShares() []Share {
	return []Share{
		{Method: MethodBankTransfer, CountPercent: 60, AmountPercent: 70},
		{Method: MethodCreditCard, CountPercent: 30, AmountPercent: 25},
		{Method: MethodEWallet, CountPercent: 10, AmountPercent: 5},
	}
}

// ValidateShares rejects share tables whose percentages fall outside 0..100
// or add up to more than 100.
func ValidateShares(shares []Share) error {
	if len(shares) == 0 {
		return fmt.Errorf("%w: no shares configured", ErrInvalidShares)
	}
	var countSum, amountSum int64
	for _, s := range shares {
		if s.Method == "" {
			return fmt.Errorf("%w: share without method name", ErrInvalidShares)
		}
		if s.CountPercent < 0 || s.CountPercent > 100 || s.AmountPercent < 0 || s.AmountPercent > 100 {
			return fmt.Errorf("%w: %s percentages must be within 0..100", ErrInvalidShares, s.Method)
		}
		countSum += s.CountPercent
		amountSum += s.AmountPercent
	}
	if countSum > 100 || amountSum > 100 {
		return fmt.Errorf("%w: percentages add up to more than 100 (count %d, amount %d)",
			ErrInvalidShares, countSum, amountSum)
	}
	return nil
}

type shareFile struct {
	Shares []Share `yaml:"shares"`
}

// LoadShares reads a share table from a YAML file of the form
//
//	shares:
//	  - method: Bank Transfer
//	    count_percent: 60
//	    amount_percent: 70
func LoadShares(path string) ([]Share, error) {
	const op = "LoadShares"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}

	var f shareFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: failed to parse %s: %w", op, path, err)
	}
	if err := ValidateShares(f.Shares); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return f.Shares, nil
}

// FixedShareEstimator splits the paid invoices by a fixed share table.
// Counts and amounts are floored to whole invoices and whole Rupiah, so
// their sums may fall short of the paid totals.
type FixedShareEstimator struct {
	shares []Share
}

// NewFixedShareEstimator creates an estimator over shares.
func NewFixedShareEstimator(shares []Share) *FixedShareEstimator {
	return &FixedShareEstimator{shares: shares}
}

// Estimate implements MethodEstimator. No paid invoices means no rows.
func (e *FixedShareEstimator) Estimate(invoices []models.Invoice) []MethodBreakdown {
	var paid, revenue int64
	for i := range invoices {
		if invoices[i].IsPaid() {
			paid++
			revenue += invoices[i].Total
		}
	}

	out := make([]MethodBreakdown, 0, len(e.shares))
	if paid == 0 {
		return out
	}
	for _, s := range e.shares {
		out = append(out, MethodBreakdown{
			Method: s.Method,
			Count:  int(paid * s.CountPercent / 100),
			Amount: revenue * s.AmountPercent / 100,
		})
	}
	return out
}

// AmountTierEstimator guesses a method per invoice from its total: large
// invoices as card payments, small ones as e-wallet, the rest as transfers.
type AmountTierEstimator struct {
	// Above this total an invoice counts as a card payment.
	CardAbove int64
	// Below this total (and above zero) an invoice counts as e-wallet.
	WalletBelow int64
}

// NewAmountTierEstimator creates an estimator with the 10,000,000 and
// 1,000,000 Rupiah thresholds.
func NewAmountTierEstimator() *AmountTierEstimator {
	return &AmountTierEstimator{
		CardAbove:   10_000_000,
		WalletBelow: 1_000_000,
	}
}

// Classify returns the method label for one invoice total.
func (e *AmountTierEstimator) Classify(total int64) string {
	switch {
	case total > e.CardAbove:
		return MethodCreditCard
	case total > 0 && total < e.WalletBelow:
		return MethodEWallet
	default:
		return MethodBankTransfer
	}
}

// Estimate implements MethodEstimator. Rows appear in the order their method
// is first seen and cover every invoice regardless of status.
func (e *AmountTierEstimator) Estimate(invoices []models.Invoice) []MethodBreakdown {
	type tally struct {
		count, paid int
		amount      int64
	}
	order := make([]string, 0, 3)
	tallies := make(map[string]*tally, 3)

	for i := range invoices {
		method := e.Classify(invoices[i].Total)
		t, ok := tallies[method]
		if !ok {
			t = &tally{}
			tallies[method] = t
			order = append(order, method)
		}
		t.count++
		t.amount += invoices[i].Total
		if invoices[i].IsPaid() {
			t.paid++
		}
	}

	out := make([]MethodBreakdown, 0, len(order))
	for _, method := range order {
		t := tallies[method]
		rate := 100 * float64(t.paid) / float64(t.count)
		out = append(out, MethodBreakdown{
			Method:      method,
			Count:       t.count,
			Amount:      t.amount,
			SuccessRate: &rate,
		})
	}
	return out
}

// NewEstimator builds a strategy by name. sharesPath is only used by the
// fixed-share strategy; when empty the default shares apply.
func NewEstimator(name, sharesPath string) (MethodEstimator, error) {
	switch name {
	case EstimatorFixedShare, "":
		shares := DefaultShares()
		if sharesPath != "" {
			loaded, err := LoadShares(sharesPath)
			if err != nil {
				return nil, err
			}
			shares = loaded
		}
		return NewFixedShareEstimator(shares), nil
	case EstimatorAmountTier:
		return NewAmountTierEstimator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEstimator, name)
	}
}
