package auth

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectClaim accepts the user id as a JSON string or number,
// since tokens signed by the account service carry a numeric userId.
type SubjectClaim string

func (s *SubjectClaim) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SubjectClaim(str)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*s = SubjectClaim(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID SubjectClaim `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HMAC-signed bearer tokens against a shared secret.
type Verifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

// NewVerifier builds a Verifier. An empty issuer disables the issuer check.
func NewVerifier(secret, issuer string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, parser: jwt.NewParser(opts...)}
}

// Verify returns the subject encoded in the token.
// Any malformed, unsigned, wrongly signed or expired token yields ok == false.
func (v *Verifier) Verify(tokenString string) (string, bool) {
	claims, err := v.ValidateToken(tokenString)
	if err != nil {
		return "", false
	}
	subject := string(claims.UserID)
	if subject == "" {
		subject = claims.Subject
	}
	return subject, subject != ""
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (v *Verifier) ValidateToken(tokenString string) (*CustomClaims, error) {
	if tokenString == "" || len(v.secret) == 0 {
		return nil, jwt.ErrTokenMalformed
	}
	token, err := v.parser.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// GenerateToken creates a signed JWT for a specific user.
// A zero duration produces a token without expiry, like the account service does.
func (v *Verifier) GenerateToken(userID string, authTokenDuration time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: SubjectClaim(userID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   v.issuer,
		},
	}
	if authTokenDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(authTokenDuration))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
