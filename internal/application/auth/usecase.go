package auth

import (
	"github.com/fatoora-tn/compta-api/internal/application/dto"
	"github.com/fatoora-tn/compta-api/internal/domain"
	"github.com/fatoora-tn/compta-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuration d'émission des tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Client identifiants d'un client d'API autorisé. Le secret est stocké haché
// en bcrypt dans la configuration, jamais en clair.
type Client struct {
	ID         string
	SecretHash string
}

// AuthUseCase échange d'identifiants client contre un token d'accès.
type AuthUseCase struct {
	clients map[string]Client
	jwtCfg  JWTConfig
}

// NewAuthUseCase construit le cas d'usage avec les clients configurés.
func NewAuthUseCase(clients []Client, jwtCfg JWTConfig) *AuthUseCase {
	byID := make(map[string]Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	return &AuthUseCase{clients: byID, jwtCfg: jwtCfg}
}

// Token vérifie le couple client_id / client_secret et émet un JWT.
// Retourne ErrUnauthorized sans distinguer client inconnu et secret faux.
func (uc *AuthUseCase) Token(in dto.TokenRequest) (*dto.TokenResponse, error) {
	client, ok := uc.clients[in.ClientID]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(in.ClientSecret)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, client.ID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   uc.jwtCfg.ExpMinutes * 60,
	}, nil
}
