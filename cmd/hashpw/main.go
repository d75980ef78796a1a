// Command hashpw hashes a plain-text password with bcrypt for seeding
// staff accounts.  The cost factor comes from BCRYPT_COST (default 12):
//
//	hashpw <password>
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/restaurant-kot/internal/config"
	"github.com/iliyamo/restaurant-kot/internal/utils"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}

	hash, err := utils.HashPassword(os.Args[1], config.BcryptCost())
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
