package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Quick utility to generate the bcrypt hash of an admin console password
// Usage: go run scripts/admin_password.go <email> <password>
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/admin_password.go <email> <password>")
		fmt.Println("Example: go run scripts/admin_password.go dj@radiosantana.com 0i2rinbcp12yc31h")
		os.Exit(1)
	}

	email := strings.ToLower(strings.TrimSpace(os.Args[1]))
	password := os.Args[2]

	// Generate bcrypt hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Email: %s\n", email)
	fmt.Printf("Bcrypt Hash: %s\n", string(hashedPassword))
	fmt.Printf("\nTo create or update the admin in MongoDB, run:\n")
	fmt.Printf("db.admins.updateOne(\n")
	fmt.Printf("  {\"email\": \"%s\"},\n", email)
	fmt.Printf("  {$set: {\"passwordHash\": \"%s\"}, $setOnInsert: {\"name\": \"%s\"}},\n", string(hashedPassword), email)
	fmt.Printf("  {upsert: true}\n")
	fmt.Printf(")\n")
	fmt.Printf("\nRemember to add %s to ADMIN_EMAILS.\n", email)
}
