package main

import "github.com/theirongolddev/spendline/cmd"

func main() {
	cmd.Execute()
}
