package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hasbyte1/go-dictcrack/app"
)

func main() {
	err := app.New(app.Deps{}).Execute()
	if err != nil && !errors.Is(err, app.ErrNoMatch) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(app.ExitCode(err))
}
