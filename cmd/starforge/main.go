/*
Package main
File: cmd/starforge/main.go
Description:
    Entry point. Two subcommands: `serve` runs the game server, `migrate`
    runs the store's auto-migration and exits. Grounded on
    orbas1-Synnergy's cmd/synnergy layout (a root cobra.Command wiring
    subcommand constructors) in place of the teacher's flat main().
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "starforge"}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
