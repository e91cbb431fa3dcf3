package main

import "smplay/cmd"

func main() {
	cmd.Execute()
}
