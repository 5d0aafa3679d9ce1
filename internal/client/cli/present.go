package cli

import (
	"fmt"

	"github.com/dmitrijs2005/gophcheck/internal/client/services"
)

// formatOutcome renders one result line.
func formatOutcome(o services.Outcome) string {
	trigger := "check"
	if o.Result.Auto {
		trigger = "auto"
	}
	return fmt.Sprintf("[%s] %s  %s", trigger, o.Result.Input, o.Display.Message)
}

func present(o services.Outcome) {
	printlnFn(formatOutcome(o))
}
