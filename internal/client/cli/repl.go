package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophcheck/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL needs.
// *services.AuthenticationService satisfies it.
type execIface interface {
	Input(value string)
	Submit() (services.Outcome, bool)
	Clear()
	Status() services.Status
}

const helpText = `Scan or type a code and press Enter to check it.
Commands:
  :type <code>   change the input without pressing Enter (checked after a pause)
  :check         check the current input now
  :clear         clear the input and the result
  :status        show database and analytics status
  :help          show this help
  :quit          leave the program`

// runREPL reads lines from scanner until EOF or :quit. A line that is not a
// command is a code: it replaces the input and is submitted. Results are
// printed by the presenter installed on the service, not here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gophcheck (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, ":") {
			a.Input(line)
			a.Submit()
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case ":type":
			a.Input(arg)

		case ":check":
			if _, ok := a.Submit(); !ok {
				printlnFn("Nothing new to check.")
			}

		case ":clear":
			a.Clear()

		case ":status":
			printlnFn("Database:", a.Status().String())

		case ":help":
			printlnFn(helpText)

		case ":quit", ":exit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
