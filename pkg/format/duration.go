package format

import (
	"fmt"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

// Months renders a number of months as "X years Y months", dropping a zero part.
func Months(months int) string {
	if months < 0 {
		return "-" + Months(-months)
	}

	years := months / constants.MonthsPerYear
	remaining := months % constants.MonthsPerYear

	switch {
	case years == 0:
		return plural(remaining, "month")
	case remaining == 0:
		return plural(years, "year")
	default:
		return plural(years, "year") + " " + plural(remaining, "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
