package main

import "archive-sync/cmd"

func main() {
	cmd.Execute()
}
