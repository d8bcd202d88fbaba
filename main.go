package main

import "github.com/samuel262816/curry-company/cmd"

func main() {
	cmd.Execute()
}
