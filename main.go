package main

import (
	"fmt"
	"os"

	"github.com/yonatanbot/yonatan/cmd/yonatan"
)

func main() {
	if err := yonatan.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
