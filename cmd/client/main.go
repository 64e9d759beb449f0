package main

import "contafeira/cmd/client/cmd"

func main() {
	cmd.Execute()
}
