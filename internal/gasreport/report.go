package gasreport

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Report renders a Summary as a plain text table.
type Report struct {
	Summary Summary

	// BlockGasLimit is used for the "% of limit" column of deployments.
	BlockGasLimit uint64

	// Pricing is optional. The cost column is shown when GasPriceGwei and
	// TokenPrice are both positive.
	GasPriceGwei float64
	TokenPrice   float64
	Currency     string
	Token        string
}

func (r Report) priced() bool {
	return r.GasPriceGwei > 0 && r.TokenPrice > 0
}

// Cost converts gas into the report currency.
func (r Report) Cost(gas uint64) float64 {
	return float64(gas) * r.GasPriceGwei * 1e-9 * r.TokenPrice
}

// WriteTo writes the report to w.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	costHeader := ""
	if r.priced() {
		costHeader = fmt.Sprintf("\t%s (avg)", r.currency())
	}

	fmt.Fprintf(tw, "Methods\n")
	fmt.Fprintf(tw, "Contract\tMethod\tMin\tMax\tAvg\t# calls%s\n", costHeader)
	for _, m := range r.Summary.Methods {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d%s\n",
			m.Contract, m.Method, m.Min, m.Max, m.Avg, m.Calls, r.costCell(m.Avg))
	}
	if len(r.Summary.Methods) == 0 {
		fmt.Fprintf(tw, "(none)\n")
	}
	fmt.Fprintf(tw, "\n")

	fmt.Fprintf(tw, "Deployments\n")
	fmt.Fprintf(tw, "Contract\tMin\tMax\tAvg\t%% of limit%s\n", costHeader)
	for _, d := range r.Summary.Deployments {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s%s\n",
			d.Contract, d.Min, d.Max, d.Avg, r.limitCell(d.Avg), r.costCell(d.Avg))
	}
	if len(r.Summary.Deployments) == 0 {
		fmt.Fprintf(tw, "(none)\n")
	}

	if err := tw.Flush(); err != nil {
		return 0, err
	}

	if r.priced() {
		fmt.Fprintf(&b, "\n%s price: %.2f %s, gas price: %.2f gwei\n", r.token(), r.TokenPrice, r.currency(), r.GasPriceGwei)
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// String renders the report.
func (r Report) String() string {
	var b strings.Builder
	_, _ = r.WriteTo(&b)
	return b.String()
}

// WriteFile writes the report to path.
func (r Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create gas report: %w", err)
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write gas report: %w", err)
	}
	return f.Close()
}

func (r Report) costCell(gas uint64) string {
	if !r.priced() {
		return ""
	}
	return fmt.Sprintf("\t%.2f", r.Cost(gas))
}

func (r Report) limitCell(gas uint64) string {
	if r.BlockGasLimit == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f %%", float64(gas)*100/float64(r.BlockGasLimit))
}

func (r Report) currency() string {
	if r.Currency == "" {
		return "USD"
	}
	return strings.ToUpper(r.Currency)
}

func (r Report) token() string {
	if r.Token == "" {
		return "ETH"
	}
	return strings.ToUpper(r.Token)
}
