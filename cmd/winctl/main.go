package main

import "github.com/bryanchriswhite/winctl/cmd/winctl/commands"

func main() {
	commands.Execute()
}
