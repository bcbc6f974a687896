package main

import "crateaudit/cmd"

func main() {
	cmd.Execute()
}
