// Command sitecrew is the operator CLI for the time-tracking ledger
package main

import (
	"fmt"
	"os"
)

func main() {
	app := &App{}
	defer app.Close()

	if err := SetupCommands(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
