package main

import "c6t/cmd"

func main() {
	cmd.Execute()
}
