package main

import "github.com/mselser95/rit-tender-bot/cmd"

func main() {
	cmd.Execute()
}
