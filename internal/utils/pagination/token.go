package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	svcErr "github.com/oggyb/muzz-matching/internal/errors"
)

// Token is the opaque page state handed back to clients as next_page_token.
type Token struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// EncodeToken converts a Token into a Base64 string.
func EncodeToken(t Token) (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to marshal page token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// DecodeToken parses a Base64 string into a Token.
// Empty token → zero Token (caller applies defaults).
func DecodeToken(token string) (Token, error) {
	if token == "" {
		return Token{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Token{}, fmt.Errorf("%w: invalid pagination token", svcErr.ErrInvalidArgument)
	}

	var t Token
	if err := json.Unmarshal(b, &t); err != nil {
		return Token{}, fmt.Errorf("%w: invalid pagination token", svcErr.ErrInvalidArgument)
	}
	return t, nil
}

// NextToken returns the token for the page after p, or nil on the last page.
func NextToken[T any](p *Page[T]) *string {
	if !p.HasNext() {
		return nil
	}
	token, err := EncodeToken(Token{Page: p.PageNumber + 1, Size: p.PageSize})
	if err != nil {
		return nil
	}
	return &token
}
