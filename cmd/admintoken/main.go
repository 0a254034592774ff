package main

import (
	"log"
	"os"
	"strconv"

	"staking_bot/internal/service"
)

// Mints a bearer token for the operator HTTP API. The chat ID must
// belong to an operator, or the API will reject the token's requests.
func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	if len(os.Args) < 2 {
		log.Fatal("usage: admintoken <chat_id>")
	}

	chatID, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil {
		log.Fatalf("invalid chat id: %v", err)
	}

	service.InitJWT(secret)
	token, err := service.GenerateJWT(chatID)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
