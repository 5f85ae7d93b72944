package dto

// ErrorResponse corpo de erro HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LoginRequest body para POST /auth/token.
type LoginRequest struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

// LoginResponse token emitido para o operador do gateway.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // segundos
}
