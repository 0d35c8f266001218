package service

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/yourusername/examsim-api/internal/config"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

const (
	googleTokenEndpoint = "https://oauth2.googleapis.com/token"
	googleJWKSEndpoint  = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleProfile представляет проверенные данные пользователя из id_token
type GoogleProfile struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleOAuthService обменивает код авторизации на id_token и проверяет
// его подпись по JWKS Google. Ключи кешируются до истечения Cache-Control.
type GoogleOAuthService struct {
	cfg        config.GoogleOAuthConfig
	httpClient *http.Client
	jwksMu     sync.RWMutex
	jwksKeys   map[string]*rsa.PublicKey
	jwksExpiry time.Time
}

// NewGoogleOAuthService создает новый сервис входа через Google
func NewGoogleOAuthService(cfg config.GoogleOAuthConfig) (*GoogleOAuthService, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	return &GoogleOAuthService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Exchange обменивает authorization code на id_token и возвращает
// проверенный профиль пользователя
func (s *GoogleOAuthService) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", apperrors.ErrValidation)
	}

	idToken, err := s.exchangeCodeForIDToken(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.verifyIDToken(ctx, idToken)
}

// VerifyIDToken проверяет готовый id_token, полученный клиентом напрямую
// от Google, и возвращает профиль пользователя
func (s *GoogleOAuthService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, fmt.Errorf("%w: id_token is required", apperrors.ErrValidation)
	}
	return s.verifyIDToken(ctx, idToken)
}

func (s *GoogleOAuthService) exchangeCodeForIDToken(ctx context.Context, code string) (string, error) {
	values := url.Values{}
	values.Set("code", code)
	values.Set("client_id", s.cfg.ClientID)
	values.Set("client_secret", s.cfg.ClientSecret)
	values.Set("redirect_uri", s.cfg.RedirectURI)
	values.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenEndpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create google token exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("google token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: google token exchange status=%d body=%s", ErrGoogleTokenVerificationFailed, resp.StatusCode, string(body))
	}

	var payload struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse google token exchange response: %w", err)
	}
	if payload.IDToken == "" {
		return "", fmt.Errorf("%w: id_token not returned by google token exchange", ErrGoogleTokenVerificationFailed)
	}

	return payload.IDToken, nil
}

type googleIDTokenClaims struct {
	Email         string      `json:"email"`
	EmailVerified interface{} `json:"email_verified"`
	Name          string      `json:"name"`
	Picture       string      `json:"picture"`
	jwt.RegisteredClaims
}

type googleJWKSet struct {
	Keys []googleJWK `json:"keys"`
}

type googleJWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (s *GoogleOAuthService) verifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, fmt.Errorf("%w: empty id token", ErrGoogleTokenVerificationFailed)
	}

	claims := &googleIDTokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	token, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("%w: missing kid header", ErrGoogleTokenVerificationFailed)
		}
		return s.getGooglePublicKey(ctx, strings.TrimSpace(kid))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleTokenVerificationFailed, err)
	}
	if token == nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrGoogleTokenVerificationFailed)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrGoogleTokenVerificationFailed)
	}
	if claims.Issuer != "accounts.google.com" && claims.Issuer != "https://accounts.google.com" {
		return nil, fmt.Errorf("%w: invalid issuer", ErrGoogleTokenVerificationFailed)
	}
	audMatched := false
	for _, aud := range claims.Audience {
		if strings.TrimSpace(aud) == strings.TrimSpace(s.cfg.ClientID) {
			audMatched = true
			break
		}
	}
	if !audMatched {
		return nil, fmt.Errorf("%w: audience mismatch", ErrGoogleTokenVerificationFailed)
	}
	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: token expired", ErrGoogleTokenVerificationFailed)
	}

	emailVerified, ok := parseGoogleEmailVerifiedClaim(claims.EmailVerified)
	if !ok {
		return nil, fmt.Errorf("%w: invalid email_verified claim", ErrGoogleTokenVerificationFailed)
	}

	return &GoogleProfile{
		Sub:           strings.TrimSpace(claims.Subject),
		Email:         strings.TrimSpace(claims.Email),
		EmailVerified: emailVerified,
		Name:          strings.TrimSpace(claims.Name),
		Picture:       strings.TrimSpace(claims.Picture),
	}, nil
}

func parseGoogleEmailVerifiedClaim(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			return true, true
		case "false":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

func (s *GoogleOAuthService) getGooglePublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := time.Now()
	s.jwksMu.RLock()
	if key, ok := s.jwksKeys[kid]; ok && now.Before(s.jwksExpiry) {
		s.jwksMu.RUnlock()
		return key, nil
	}
	s.jwksMu.RUnlock()

	if err := s.refreshGoogleJWKS(ctx); err != nil {
		return nil, err
	}

	s.jwksMu.RLock()
	defer s.jwksMu.RUnlock()
	key, ok := s.jwksKeys[kid]
	if !ok || key == nil {
		return nil, fmt.Errorf("%w: jwks key not found", ErrGoogleTokenVerificationFailed)
	}
	return key, nil
}

func (s *GoogleOAuthService) refreshGoogleJWKS(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleJWKSEndpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create google jwks request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch google jwks: %v", ErrGoogleTokenVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: jwks status=%d body=%s", ErrGoogleTokenVerificationFailed, resp.StatusCode, string(body))
	}

	var set googleJWKSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("failed to decode google jwks response: %w", err)
	}
	if len(set.Keys) == 0 {
		return fmt.Errorf("%w: empty google jwks response", ErrGoogleTokenVerificationFailed)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if strings.TrimSpace(jwk.Kid) == "" || jwk.Kty != "RSA" {
			continue
		}
		pub, err := parseGoogleRSAPublicKey(jwk)
		if err != nil {
			continue
		}
		keys[jwk.Kid] = pub
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: no usable rsa keys in google jwks", ErrGoogleTokenVerificationFailed)
	}

	ttl := parseGoogleJWKSMaxAge(resp.Header.Get("Cache-Control"))
	if ttl <= 0 {
		ttl = time.Hour
	}

	s.jwksMu.Lock()
	s.jwksKeys = keys
	s.jwksExpiry = time.Now().Add(ttl)
	s.jwksMu.Unlock()
	return nil
}

func parseGoogleRSAPublicKey(jwk googleJWK) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, err
	}

	n := new(big.Int).SetBytes(nBytes)
	eInt := 0
	for _, b := range eBytes {
		eInt = eInt<<8 + int(b)
	}
	if n.Sign() <= 0 || eInt <= 0 {
		return nil, fmt.Errorf("invalid rsa jwk")
	}

	return &rsa.PublicKey{N: n, E: eInt}, nil
}

func parseGoogleJWKSMaxAge(cacheControl string) time.Duration {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(strings.ToLower(part), "max-age=") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(part), "max-age="))
		seconds, err := time.ParseDuration(value + "s")
		if err != nil {
			return 0
		}
		if seconds < time.Minute {
			return time.Minute
		}
		return seconds
	}
	return 0
}
