package main

import "github.com/allencass/aistudio/cmd"

func main() {
	cmd.Execute()
}
