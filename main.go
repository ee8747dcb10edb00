package main

import "github.com/Mohsinsiddi/stxtoken/cmd"

func main() {
	cmd.Execute()
}
