package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/sealer"
)

func main() {

	cfg := sealer.LoadConfig()
	logger := logging.NewText(os.Stderr, cfg.LogLevel)

	rep, err := sealer.Run(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("sealed %d codes (%d malformed) into %s\n", rep.Codes, rep.Malformed, cfg.Out)

}
