package main

import (
	"flag"

	"go-retail-erp/internal/model"
	"go-retail-erp/pkg/database"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log := logrus.New()

	loginName := flag.String("login", "admin", "login name of the account to reset")
	newPassword := flag.String("password", "admin123", "new password to set")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, relying on system env")
	}

	db := database.ConnectDB(log)

	var user model.User
	if err := db.Where("login_name = ?", *loginName).First(&user).Error; err != nil {
		log.WithError(err).Fatalf("User %s not found in database", *loginName)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash password")
	}

	if err := db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		log.WithError(err).Fatal("Failed to update password in DB")
	}

	log.Infof("Password for %s has been reset", *loginName)
}
