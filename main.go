package main

import "drop-auction/cmd"

func main() {
	cmd.Execute()
}
