package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/seu-usuario/nfe-gateway/internal/application/dto"
	"github.com/seu-usuario/nfe-gateway/internal/domain"
	"github.com/seu-usuario/nfe-gateway/pkg/config"
	"github.com/seu-usuario/nfe-gateway/pkg/jwt"
)

// AuthUseCase emite tokens JWT para o único operador do gateway, definido
// inteiramente por configuração externa (usuário + hash bcrypt). Não existe
// credencial embutida no binário: sem AUTH_USUARIO e AUTH_SENHA_BCRYPT o
// login é recusado incondicionalmente.
type AuthUseCase struct {
	cfg config.AuthConfig
}

// NewAuthUseCase constrói o caso de uso de auth.
func NewAuthUseCase(cfg config.AuthConfig) *AuthUseCase {
	return &AuthUseCase{cfg: cfg}
}

// Habilitado informa se o login por usuário/senha está configurado.
func (uc *AuthUseCase) Habilitado() bool {
	return uc.cfg.Usuario != "" && uc.cfg.SenhaBcrypt != "" && uc.cfg.JWTSecret != ""
}

// Login compara as credenciais com a configuração e emite um JWT.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if !uc.Habilitado() {
		return nil, domain.ErrForbidden
	}
	if in.Usuario != uc.cfg.Usuario {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(uc.cfg.SenhaBcrypt), []byte(in.Senha)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := jwt.Generate(uc.cfg.JWTSecret, in.Usuario, "operador", uc.cfg.JWTIssuer, uc.cfg.JWTExpMin)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.cfg.JWTExpMin * 60,
	}, nil
}
