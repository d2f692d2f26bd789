package main

import "github.com/crmkit/crm-gateway/cmd"

func main() {
	cmd.Execute()
}
