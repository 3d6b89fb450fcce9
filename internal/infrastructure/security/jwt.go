package security

import (
	"errors"
	"time"

	"github.com/brightforge/brightforge-go/internal/domain/user"
	"github.com/golang-jwt/jwt/v4"
)

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GetProfileFromClaims extracts a lead profile from JWT claims
func GetProfileFromClaims(claims jwt.MapClaims) *user.Profile {
	profileData, ok := claims["profile"].(map[string]any)
	if !ok {
		return nil
	}
	profile := &user.Profile{}
	if v, ok := claims["leadId"].(string); ok {
		profile.LeadID = v
	}
	if v, ok := profileData["firstname"].(string); ok {
		profile.Firstname = v
	}
	if v, ok := profileData["email"].(string); ok {
		profile.Email = v
	}
	if v, ok := profileData["company"].(string); ok {
		profile.Company = v
	}
	if profile.LeadID == "" && profile.Email == "" {
		return nil
	}
	return profile
}

// GenerateProfileToken creates a JWT token for a lead profile
func GenerateProfileToken(profile *user.Profile, jwtSecret string, ttl time.Duration) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("jwt secret not configured")
	}

	claims := jwt.MapClaims{
		"leadId": profile.LeadID,
		"profile": map[string]string{
			"firstname": profile.Firstname,
			"email":     profile.Email,
			"company":   profile.Company,
		},
		"iat": time.Now().UTC().Unix(),
		"exp": time.Now().UTC().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
