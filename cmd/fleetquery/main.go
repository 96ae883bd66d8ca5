package main

import "github.com/fleetops/fleetquery/cmd/fleetquery/cmd"

func main() {
	cmd.Execute()
}
