// Command hashpw prints the bcrypt hash of a password for pasting into a
// credential CSV row (username,hash,storeName). Provisioning itself happens
// out of band; this only saves operators from hand-rolling hashes.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/iliyamo/food-court-orders/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	cost := 10
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cost = n
		}
	}
	hash, err := utils.HashPassword(os.Args[1], cost)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(hash)
}
