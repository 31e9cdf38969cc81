package main

import "github.com/AykhanUV/pstream-bot/cmd"

func main() {
	cmd.Execute()
}
