package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chrissnell/snowprofile/internal/cli"
	"github.com/chrissnell/snowprofile/internal/log"
)

func main() {
	err := cli.Command().ExecuteContext(context.Background())
	log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "snowprofile: %v\n", err)
		os.Exit(1)
	}
}
