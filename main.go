package main

import "github.com/frahmantamala/envelope-budget/cmd"

func main() {
	cmd.Execute()
}
