package main

import "storesync/cmd"

func main() {
	cmd.Execute()
}
