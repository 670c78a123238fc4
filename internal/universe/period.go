package universe

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/perfscope/internal/core"
)

// Periods lists the supported look-back windows.
var Periods = []string{"1y", "3y", "5y"}

// MaxRiskFreePercent bounds the risk-free rate accepted from user input.
const MaxRiskFreePercent = 15.0

// Period is a look-back window in whole years.
type Period struct {
	Label string
	Years int
}

// ParsePeriod parses a label such as "3y".
func ParsePeriod(s string) (Period, error) {
	label := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Periods {
		if p == label {
			years, _ := strconv.Atoi(strings.TrimSuffix(label, "y"))
			return Period{Label: label, Years: years}, nil
		}
	}
	return Period{}, core.WrapError(core.ErrInvalidParameter,
		fmt.Errorf("unsupported period %q (want one of %s)", s, strings.Join(Periods, ", ")))
}

// Start returns the beginning of the window ending at end.
func (p Period) Start(end time.Time) time.Time {
	return end.AddDate(-p.Years, 0, 0)
}

// RiskFreeFromPercent converts a percentage input (6 = 6%) into the annual
// fraction the metrics engine takes.
func RiskFreeFromPercent(pct float64) (float64, error) {
	if math.IsNaN(pct) || pct < 0 || pct > MaxRiskFreePercent {
		return 0, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("risk-free rate must be between 0 and %.0f%%, got %v", MaxRiskFreePercent, pct))
	}
	return pct / 100, nil
}
