package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa a configuração da aplicação (leitura via Viper de env e opcionalmente arquivo).
type Config struct {
	App   AppConfig
	HTTP  HTTPConfig
	Auth  AuthConfig
	SEFAZ SEFAZConfig
}

// AppConfig configuração geral da aplicação.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuração do servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devolve o endereço de escuta (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig credenciais do gateway. Sem valores embutidos no binário:
// se APIToken ou JWTSecret estiverem vazios, os endpoints de auth recusam operar.
type AuthConfig struct {
	APIToken    string // token estático aceito no header Authorization
	JWTSecret   string
	JWTExpMin   int    // minutos de validade do JWT
	JWTIssuer   string
	Usuario     string // usuário para POST /auth/token
	SenhaBcrypt string // hash bcrypt da senha do usuário
}

// SEFAZConfig endpoints e política de transporte para o webservice da SEFAZ.
// Os seis endpoints são configuráveis individualmente; os defaults apontam
// para o ambiente SVRS usado pelo DF.
type SEFAZConfig struct {
	Homologacao EndpointSet
	Producao    EndpointSet

	TimeoutSegundos int // teto único da chamada SOAP (default 30)

	// TLSInsecureHomolog desativa a verificação da cadeia de certificados
	// SOMENTE em homologação (endpoints auto-assinados). Nunca vale em produção.
	TLSInsecureHomolog bool
}

// EndpointSet as três operações expostas por cada ambiente.
type EndpointSet struct {
	Autorizacao   string
	Consulta      string
	StatusServico string
}

// URLs oficiais SVRS (defaults; podem ser trocadas por env var).
const (
	defaultHomologAutorizacao = "https://nfe-homologacao.svrs.rs.gov.br/ws/NfeAutorizacao/NFeAutorizacao4.asmx"
	defaultHomologConsulta    = "https://nfe-homologacao.svrs.rs.gov.br/ws/NfeRetAutorizacao/NFeRetAutorizacao4.asmx"
	defaultHomologStatus      = "https://nfe-homologacao.svrs.rs.gov.br/ws/NfeStatusServico/NFeStatusServico4.asmx"
	defaultProdAutorizacao    = "https://nfe.svrs.rs.gov.br/ws/NfeAutorizacao/NFeAutorizacao4.asmx"
	defaultProdConsulta       = "https://nfe.svrs.rs.gov.br/ws/NfeRetAutorizacao/NFeRetAutorizacao4.asmx"
	defaultProdStatus         = "https://nfe.svrs.rs.gov.br/ws/NfeStatusServico/NFeStatusServico4.asmx"
)

// Load lê a configuração de variáveis de ambiente (e opcionalmente de arquivo .env).
// As env vars têm prioridade. Nomes esperados: APP_ENV, HTTP_PORT, AUTH_API_TOKEN,
// SEFAZ_HOMOLOG_AUTORIZACAO, SEFAZ_TIMEOUT_SEGUNDOS etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: arquivo de configuração (.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos erro se não existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "nfe-gateway"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 3001),
		},
		Auth: AuthConfig{
			APIToken:    getString(v, "AUTH_API_TOKEN", ""),
			JWTSecret:   getString(v, "AUTH_JWT_SECRET", ""),
			JWTExpMin:   getInt(v, "AUTH_JWT_EXP_MINUTOS", 24*60),
			JWTIssuer:   getString(v, "AUTH_JWT_ISSUER", "nfe-gateway"),
			Usuario:     getString(v, "AUTH_USUARIO", ""),
			SenhaBcrypt: getString(v, "AUTH_SENHA_BCRYPT", ""),
		},
		SEFAZ: SEFAZConfig{
			Homologacao: EndpointSet{
				Autorizacao:   getString(v, "SEFAZ_HOMOLOG_AUTORIZACAO", defaultHomologAutorizacao),
				Consulta:      getString(v, "SEFAZ_HOMOLOG_CONSULTA", defaultHomologConsulta),
				StatusServico: getString(v, "SEFAZ_HOMOLOG_STATUS", defaultHomologStatus),
			},
			Producao: EndpointSet{
				Autorizacao:   getString(v, "SEFAZ_PROD_AUTORIZACAO", defaultProdAutorizacao),
				Consulta:      getString(v, "SEFAZ_PROD_CONSULTA", defaultProdConsulta),
				StatusServico: getString(v, "SEFAZ_PROD_STATUS", defaultProdStatus),
			},
			TimeoutSegundos:    getInt(v, "SEFAZ_TIMEOUT_SEGUNDOS", 30),
			TLSInsecureHomolog: getBool(v, "SEFAZ_TLS_INSECURE_HOMOLOG", false),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
