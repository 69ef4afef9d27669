package main

import "github.com/Mohsinsiddi/fundme/cmd"

func main() {
	cmd.Execute()
}
