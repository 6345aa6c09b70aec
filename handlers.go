package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"be04/models"
	"be04/pkg/recognize"
	"be04/pkg/scale"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// scanner is the recognition chain used by the scan endpoint. It holds no
// per-call state, so one instance serves concurrent requests.
var scanner *recognize.Orchestrator

func setupRoutes(r *gin.Engine) {
	if scanner == nil {
		scanner = recognize.NewOrchestrator()
	}
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)
	r.POST("/password/forgot", forgotPasswordHandler)
	r.POST("/password/reset", resetPasswordHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.GET("/stores", listStoresHandler)
	authGroup.GET("/stores/:id", getStoreHandler)
	authGroup.POST("/stores", adminOnly(), createStoreHandler)
	authGroup.PUT("/stores/:id", adminOnly(), updateStoreHandler)
	authGroup.DELETE("/stores/:id", adminOnly(), deleteStoreHandler)
	authGroup.GET("/managers", adminOnly(), listManagersHandler)
	authGroup.POST("/managers/:id/approve", adminOnly(), approveManagerHandler)
	authGroup.POST("/scale/scan", scanWeightHandler)
	authGroup.POST("/scale/weight", submitWeightHandler)
	authGroup.GET("/scale/weights", listWeightsHandler)
	authGroup.DELETE("/scale/weight/:id", adminOnly(), deleteWeightHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

// adminOnly gates a route on the administrator role claim.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != "administrator" {
			c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	role, _ := c.Get("role")
	c.JSON(http.StatusOK, gin.H{"username": usernameVal.(string), "role": role})
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	uname := unameVal.(string)
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required"`
		Email     string `json:"email"`
		Password  string `json:"password" binding:"required"`
		Role      string `json:"role"`
		StoreCode string `json:"store_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Email, req.Password, req.Role, req.StoreCode); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	// Generate JWT token. Resolve role name from RoleID (we only store role_id).
	roleName := roleNameFor(&user)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "refresh_token": refreshToken})
}

func roleNameFor(user *models.User) string {
	if user.RoleID == nil {
		return ""
	}
	var r models.Role
	if err := db.First(&r, *user.RoleID).Error; err != nil {
		return ""
	}
	return r.Name
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	// generate random 32-byte token (hex)
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	// hash for storage
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{UserID: userID, TokenHash: th, ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// helper to find refresh token record by raw token string
func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleNameFor(&user),
		"exp":      time.Now().Add(15 * time.Minute).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

func forgotPasswordHandler(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Respond identically whether or not the account exists so the endpoint
	// cannot be used to probe registered emails.
	if otp, err := IssueResetOTP(req.Email); err == nil && os.Getenv("DEBUG_OTP") == "1" {
		log.Printf("DEBUG_OTP: reset code for %s is %s", req.Email, otp)
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset code was issued"})
}

func resetPasswordHandler(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ResetPasswordWithOTP(req.Email, req.OTP, req.NewPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset successfully"})
}

// ---- stores ----

func createStoreHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		StoreCode     string `json:"store_code" binding:"required"`
		Name          string `json:"name" binding:"required"`
		Location      string `json:"location" binding:"required"`
		ContactNumber string `json:"contact_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var existing models.Store
	if err := db.Where("store_code = ?", req.StoreCode).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "store already exists"})
		return
	}
	uid := user.ID
	st := models.Store{StoreCode: req.StoreCode, Name: req.Name, Location: req.Location, ContactNumber: req.ContactNumber, CreatedByID: &uid}
	if err := db.Create(&st).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "store already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": st.ID})
}

func listStoresHandler(c *gin.Context) {
	var stores []models.Store
	if err := db.Order("id").Limit(500).Find(&stores).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, stores)
}

func getStoreHandler(c *gin.Context) {
	var st models.Store
	if err := db.First(&st, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func updateStoreHandler(c *gin.Context) {
	var st models.Store
	if err := db.First(&st, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req struct {
		Name          string `json:"name"`
		Location      string `json:"location"`
		ContactNumber string `json:"contact_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != "" {
		st.Name = req.Name
	}
	if req.Location != "" {
		st.Location = req.Location
	}
	if req.ContactNumber != "" {
		st.ContactNumber = req.ContactNumber
	}
	if err := db.Save(&st).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func deleteStoreHandler(c *gin.Context) {
	var st models.Store
	if err := db.First(&st, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := db.Delete(&st).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "store deleted"})
}

// ---- managers ----

func listManagersHandler(c *gin.Context) {
	var role models.Role
	if err := db.Where("name = ?", "manager").First(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "manager role missing"})
		return
	}
	var managers []models.User
	if err := db.Preload("Store").Where("role_id = ?", role.ID).Order("id").Find(&managers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]gin.H, 0, len(managers))
	for _, m := range managers {
		item := gin.H{"id": m.ID, "username": m.Username, "email": m.Email, "approved": m.Approved}
		if m.Store != nil {
			item["store"] = m.Store.Name
			item["store_code"] = m.Store.StoreCode
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "managers": out})
}

func approveManagerHandler(c *gin.Context) {
	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	user.Approved = true
	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "approve failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "approved"})
}

// ---- scale readings ----

// scanWeightHandler accepts a scale photo, runs the recognition chain and
// returns the estimate plus the per-strategy attempt log. A resolved value
// is recorded as a WeightReading unless dry_run=1.
func scanWeightHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	baseDir := filepath.Join(uploadBaseDir(), "scale")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	fullPath := filepath.Join(baseDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	res := scanner.ScanImage(c.Request.Context(), fullPath)
	resp := gin.H{"estimate": res.Estimate, "attempts": res.Attempts}

	if res.Estimate.Found() && c.PostForm("dry_run") != "1" {
		uid := user.ID
		reading := models.WeightReading{
			WeightKg:      *res.Estimate.ValueKg,
			ImageURI:      fullPath,
			RawText:       res.Estimate.RawText,
			Source:        res.Estimate.Source,
			Confidence:    res.Estimate.Confidence,
			Timestamp:     time.Now(),
			SubmittedByID: &uid,
			StoreID:       user.StoreID,
		}
		if err := db.Create(&reading).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
			return
		}
		resp["reading_id"] = reading.ID
	}
	c.JSON(http.StatusOK, resp)
}

// submitWeightHandler records a confirmed or manually entered reading.
func submitWeightHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Weight     float64 `json:"weight" binding:"required"`
		ImageURI   string  `json:"image_uri"`
		Timestamp  string  `json:"timestamp"` // optional ISO8601
		RawOcrText string  `json:"raw_ocr_text"`
		Source     string  `json:"source"`
		Confidence int     `json:"confidence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Weight <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weight must be positive"})
		return
	}
	source := req.Source
	if source == "" {
		source = scale.SourceManual
	}
	ts := time.Now()
	if req.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			ts = t
		}
	}
	uid := user.ID
	reading := models.WeightReading{
		WeightKg:      req.Weight,
		ImageURI:      req.ImageURI,
		RawText:       req.RawOcrText,
		Source:        source,
		Confidence:    req.Confidence,
		Timestamp:     ts,
		SubmittedByID: &uid,
		StoreID:       user.StoreID,
	}
	if err := db.Create(&reading).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": reading.ID})
}

// listWeightsHandler lists recent readings; admins see all, others their own.
func listWeightsHandler(c *gin.Context) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var readings []models.WeightReading
	q := db.Model(&models.WeightReading{})
	if role != "administrator" {
		q = q.Where("submitted_by_id = ?", user.ID)
	}
	if err := q.Order("id desc").Limit(200).Find(&readings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(readings), "weights": readings})
}

func deleteWeightHandler(c *gin.Context) {
	var reading models.WeightReading
	if err := db.First(&reading, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "weight record not found"})
		return
	}
	if err := db.Delete(&reading).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "weight record deleted"})
}
