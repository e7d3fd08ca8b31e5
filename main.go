// Package main is the entry point for the eto CLI.
package main

import "eto.dev/pkg/eto/cmd"

func main() {
	cmd.Execute()
}
