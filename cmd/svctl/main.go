package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/svpddu/studentrecords/internal/cli"
)

func main() {
	_ = godotenv.Load()

	root := cli.NewRootCommand(cli.OpenContainer, time.Now)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
