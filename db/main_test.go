package db

import (
	"context"
	"fmt"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	if os.Getenv("POSTGRES_URL") != "" {
		os.Exit(m.Run())
	}

	fmt.Printf("\033[1;33m%s\033[0m", "> Setup postgres container\n")
	container, url := StartPostgresContainer()
	os.Setenv("POSTGRES_URL", url)

	code := m.Run()

	if err := container.Terminate(context.Background()); err != nil {
		fmt.Printf("\033[1;31m%s\033[0m", "> Teardown failed\n")
	}
	os.Exit(code)
}
