package middleware

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	EmailKey  contextKey = "email"
	NameKey   contextKey = "name"
)

type AuthMiddleware struct {
	jwtSecret    string
	supabaseURL  string
	publicKeyMu  sync.RWMutex
	publicKeys   map[string]*ecdsa.PublicKey
	lastFetch    time.Time
	fetchTimeout time.Duration
}

func NewAuthMiddleware(jwtSecret, supabaseURL string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:    jwtSecret,
		supabaseURL:  supabaseURL,
		fetchTimeout: 1 * time.Hour,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		tokenString := parts[1]
		if len(tokenString) == 0 {
			respondError(w, http.StatusUnauthorized, "empty token")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if m.jwtSecret == "" {
				return nil, fmt.Errorf("jwt secret not configured")
			}

			switch alg := token.Method.Alg(); alg {
			case "HS256":
				if decodedSecret, err := base64.StdEncoding.DecodeString(m.jwtSecret); err == nil {
					return decodedSecret, nil
				}
				return []byte(m.jwtSecret), nil
			case "ES256":
				kid, _ := token.Header["kid"].(string)
				publicKey, err := m.getPublicKey(kid)
				if err != nil {
					zap.L().Warn("Failed to resolve JWKS public key", zap.Error(err))
					return nil, fmt.Errorf("ES256 verification failed: %w", err)
				}
				return publicKey, nil
			default:
				return nil, fmt.Errorf("unexpected signing method: %v", alg)
			}
		})

		if err != nil {
			zap.L().Debug("Token parsing failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			respondError(w, http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
			return
		}

		if !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		userID, ok := claims["sub"].(string)
		if !ok {
			respondError(w, http.StatusUnauthorized, "user id not found in token")
			return
		}

		email, _ := claims["email"].(string)
		name := ""
		if metadata, ok := claims["user_metadata"].(map[string]interface{}); ok {
			if n, ok := metadata["full_name"].(string); ok {
				name = n
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		if email != "" {
			ctx = context.WithValue(ctx, EmailKey, email)
		}
		if name != "" {
			ctx = context.WithValue(ctx, NameKey, name)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

func GetUserName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(NameKey).(string)
	return name, ok
}

func (m *AuthMiddleware) getPublicKey(kid string) (*ecdsa.PublicKey, error) {
	m.publicKeyMu.RLock()
	if m.publicKeys != nil && time.Since(m.lastFetch) < m.fetchTimeout {
		if key, ok := m.publicKeys[kid]; ok {
			m.publicKeyMu.RUnlock()
			return key, nil
		}
	}
	m.publicKeyMu.RUnlock()

	m.publicKeyMu.Lock()
	defer m.publicKeyMu.Unlock()

	if m.publicKeys != nil && time.Since(m.lastFetch) < m.fetchTimeout {
		if key, ok := m.publicKeys[kid]; ok {
			return key, nil
		}
	}

	if m.supabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL not configured")
	}

	url := strings.TrimSuffix(m.supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating JWKS request: %w", err)
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS fetch returned status %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			X   string `json:"x"`
			Y   string `json:"y"`
			Crv string `json:"crv"`
		} `json:"keys"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("decoding JWKS: %w", err)
	}

	newPublicKeys := make(map[string]*ecdsa.PublicKey)
	for _, key := range jwks.Keys {
		xBytes, err := base64.RawURLEncoding.DecodeString(key.X)
		if err != nil {
			continue
		}
		yBytes, err := base64.RawURLEncoding.DecodeString(key.Y)
		if err != nil {
			continue
		}

		newPublicKeys[key.Kid] = &ecdsa.PublicKey{
			Curve: getCurve(key.Crv),
			X:     new(big.Int).SetBytes(xBytes),
			Y:     new(big.Int).SetBytes(yBytes),
		}
	}

	m.publicKeys = newPublicKeys
	m.lastFetch = time.Now()

	if key, ok := m.publicKeys[kid]; ok {
		return key, nil
	}
	if kid == "" {
		for _, key := range m.publicKeys {
			return key, nil
		}
	}

	return nil, fmt.Errorf("key with kid %q not found in JWKS (available keys: %d)", kid, len(m.publicKeys))
}

func getCurve(crv string) *elliptic.CurveParams {
	switch crv {
	case "P-256":
		return elliptic.P256().Params()
	case "P-384":
		return elliptic.P384().Params()
	case "P-521":
		return elliptic.P521().Params()
	default:
		return elliptic.P256().Params()
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
