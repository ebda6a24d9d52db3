// internal/core/auth/service.go
package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"
)

// PermissionImport libera importação, exclusão de histórico e factory reset.
const PermissionImport = "import"

var errInvalidCredentials = errors.New("usuário ou senha inválidos")

type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type service struct {
	db        *firestore.Client
	jwtSecret []byte
	fallback  map[string]fallbackUser
}

type fallbackUser struct {
	passwordHash []byte
	roles        []string
}

// NewService cria o serviço de autenticação. A chave de assinatura vem do
// chamador, resolvida depois do carregamento do .env: ler JWT_SECRET em
// init de pacote assinaria tokens com a chave vazia quando o segredo chega
// via dotenv. Sem Firestore configurado (db nil), vale o par de usuários
// semeado por ambiente: cfsmart com permissão de importação e lamole somente
// leitura.
func NewService(db *firestore.Client, jwtSecret []byte) Service {
	return &service{db: db, jwtSecret: jwtSecret, fallback: seedFallbackUsers()}
}

func seedFallbackUsers() map[string]fallbackUser {
	users := make(map[string]fallbackUser)
	seed := func(username, envVar string, roles []string) {
		password := os.Getenv(envVar)
		if password == "" {
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return
		}
		users[username] = fallbackUser{passwordHash: hash, roles: roles}
	}
	seed("cfsmart", "CFSMART_PASSWORD", []string{PermissionImport})
	seed("lamole", "LAMOLE_PASSWORD", nil)
	return users
}

// User representa a estrutura de um usuário no Firestore.
type User struct {
	Username     string   `firestore:"username"`
	PasswordHash string   `firestore:"passwordHash"`
	Roles        []string `firestore:"roles"`
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if s.db == nil {
		return s.loginFallback(username, password)
	}

	query := s.db.Collection("users").Where("username", "==", username).Limit(1).Documents(ctx)
	defer query.Stop()

	doc, err := query.Next()
	if err == iterator.Done {
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", errors.New("erro ao consultar o banco de dados")
	}

	var user User
	if err := doc.DataTo(&user); err != nil {
		return "", errors.New("erro ao ler dados do usuário")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errInvalidCredentials
	}

	return s.signToken(user.Username, user.Roles)
}

func (s *service) loginFallback(username, password string) (string, error) {
	user, ok := s.fallback[username]
	if !ok {
		return "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)); err != nil {
		return "", errInvalidCredentials
	}
	return s.signToken(username, user.roles)
}

func (s *service) signToken(username string, roles []string) (string, error) {
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"roles":    roles,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := claims.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.New("erro ao gerar token de acesso")
	}
	return tokenString, nil
}
