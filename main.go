/*
Copyright © 2025 silicus-edu
*/
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/silicus-edu/ta-backend/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}
}
