package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
