package main

import "github.com/frahmantamala/request-management/cmd"

func main() {
	cmd.Execute()
}
