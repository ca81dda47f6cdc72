package main

import "github.com/cppla/standupbot/cmd"

func main() {
	cmd.Execute()
}
