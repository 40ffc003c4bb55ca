package main

import (
	"os"

	"rtchat/cmd/rtchat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
