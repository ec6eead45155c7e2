package main

import (
	"emsbot/cmd/emsbot"
	"fmt"
	"os"
)

func main() {
	if err := emsbot.Command.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
