package main

import "github.com/yumyai/emgapi/cmd"

func main() {
	cmd.Execute()
}
