package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"be04/models"

	"golang.org/x/crypto/bcrypt"
)

// validRoles a user may register as. Administrator accounts are approved
// immediately; every other role waits for an administrator.
var validRoles = map[string]bool{
	"administrator": true,
	"store":         true,
	"manager":       true,
	"vendor":        true,
}

const resetOTPTTL = 15 * time.Minute

// RegisterUser creates an account with the given role. storeCode, when
// non-empty, attaches the account to an existing store (managers/vendors).
func RegisterUser(username, email, password, roleName, storeCode string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required")
	}
	if len(password) < 6 { // basic password policy
		return fmt.Errorf("password too short (min 6)")
	}
	if roleName == "" {
		roleName = "store"
	}
	if !validRoles[roleName] {
		return fmt.Errorf("unknown role %q", roleName)
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return fmt.Errorf("user already exists")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// ensure role exists (idempotent)
	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		role = models.Role{Name: roleName}
		if err2 := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err2 != nil {
			return fmt.Errorf("failed to ensure role %s: %v", roleName, err2)
		}
	}
	var storeID *uint
	if storeCode != "" {
		var st models.Store
		if err := db.Where("store_code = ?", storeCode).First(&st).Error; err != nil {
			return fmt.Errorf("store %s not found", storeCode)
		}
		storeID = &st.ID
	}
	rid := role.ID
	user := models.User{
		Username:       username,
		Email:          strings.TrimSpace(email),
		HashedPassword: hashedPassword,
		RoleID:         &rid,
		StoreID:        storeID,
		Approved:       roleName == "administrator",
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return fmt.Errorf("user already exists")
		}
		return err
	}
	return nil
}

// Authenticate verifies credentials and the approval gate.
func Authenticate(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if !user.Approved {
		return models.User{}, fmt.Errorf("account pending approval")
	}
	return user, nil
}

// IssueResetOTP generates a 6-digit one-time code for the account with the
// given email, stores it hashed with a 15 minute expiry, and returns the raw
// code. Delivery (mail/SMS) is an external concern; the code is logged so
// operators can relay it in development.
func IssueResetOTP(email string) (string, error) {
	email = strings.TrimSpace(email)
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", fmt.Errorf("no account for that email")
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	otp := fmt.Sprintf("%06d", n.Int64())
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user.ResetOTPHash = hash
	user.ResetOTPExpiresAt = time.Now().Add(resetOTPTTL)
	if err := db.Save(&user).Error; err != nil {
		return "", err
	}
	log.Printf("password reset OTP issued for user id=%d", user.ID)
	return otp, nil
}

// ResetPasswordWithOTP verifies the code and sets the new password. The OTP
// is single-use: the stored hash is cleared on success.
func ResetPasswordWithOTP(email, otp, newPassword string) error {
	email = strings.TrimSpace(email)
	if len(newPassword) < 6 {
		return fmt.Errorf("password too short (min 6)")
	}
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return fmt.Errorf("no account for that email")
	}
	if len(user.ResetOTPHash) == 0 || time.Now().After(user.ResetOTPExpiresAt) {
		return fmt.Errorf("invalid or expired code")
	}
	if err := bcrypt.CompareHashAndPassword(user.ResetOTPHash, []byte(otp)); err != nil {
		return fmt.Errorf("invalid or expired code")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	user.ResetOTPHash = nil
	user.ResetOTPExpiresAt = time.Time{}
	return db.Save(&user).Error
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
