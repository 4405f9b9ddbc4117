package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"flightdeck/logbook/internal/auth"
	"flightdeck/logbook/internal/db/repositories"
)

// AuthMiddleware authenticates every request either by bearer token or by
// API key plus the X-User-Id header. Requests without a resolvable user get
// a 401 before any handler runs.
func AuthMiddleware(userRepo *repositories.UserRepositoryGORM, keysRepo *repositories.KeysRepo) func(http.Handler) http.Handler {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))

	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			var claims auth.UserClaims

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

				token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, jwt.ErrSignatureInvalid
					}
					return jwtSecret, nil
				})
				if err != nil || !token.Valid {
					http.Error(w, "Unauthorized. Invalid Token", http.StatusUnauthorized)
					return
				}

				mapClaims, ok := token.Claims.(jwt.MapClaims)
				if !ok {
					http.Error(w, "Unauthorized. Invalid Token", http.StatusUnauthorized)
					return
				}
				sub, _ := mapClaims["sub"].(string)
				ext, _ := mapClaims["ext"].(string)
				if sub == "" {
					http.Error(w, "Unauthorized. Invalid Token", http.StatusUnauthorized)
					return
				}

				claims = &auth.JWTClaims{UserUUID: sub, ExternalIDVal: ext}

			case apiKey != "":
				userId := r.Header.Get("X-User-Id")

				keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}

				if !keyRes.Status {
					http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
					return
				}

				apiClaims := auth.MakeClaimsFromApi(r.Context(), userRepo, userId)
				if apiClaims.UserUUID == "" {
					http.Error(w, "Unauthorized. Unknown User", http.StatusUnauthorized)
					return
				}
				claims = apiClaims

			default:
				http.Error(w, "Unauthorized. Missing Credentials", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
