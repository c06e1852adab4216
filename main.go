package main

import "notewise/cmd"

func main() {
	cmd.Execute()
}
