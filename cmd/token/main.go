// cmd/token/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// tokenRequest describes the identity a token is issued for.
type tokenRequest struct {
	UserID   string        `validate:"required"`
	Username string        `validate:"required"`
	Role     string        `validate:"required,oneof=admin customer"`
	TTL      time.Duration `validate:"gt=0"`
}

// token issues a signed access token with the server's JWT secret, for
// operators and scripts that call the admin routes.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	req := tokenRequest{}
	flag.StringVar(&req.UserID, "user-id", "", "subject of the token")
	flag.StringVar(&req.Username, "username", "", "display name carried in the token")
	flag.StringVar(&req.Role, "role", utils.RoleAdmin, "role claim (admin or customer)")
	flag.DurationVar(&req.TTL, "ttl", time.Duration(cfg.JWT.AccessTokenTTL)*time.Hour, "token lifetime")
	flag.Parse()

	if err := utils.ValidateStruct(req); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	token, err := utils.GenerateJWT(req.UserID, req.Username, req.Role, req.TTL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to sign token")
	}

	fmt.Println(token)
}
