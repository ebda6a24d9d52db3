package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cfsmart/painel-lamole/internal/core/auth"
)

// Fluxo completo de autenticação: o segredo chega ao ambiente depois do init
// dos pacotes (como acontece com .env carregado no main), é resolvido uma vez
// e injetado tanto no serviço que assina quanto no middleware que valida.
func TestAuthMiddlewareAceitaTokenDoServico(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "segredo-do-dotenv")
	t.Setenv("CFSMART_PASSWORD", "senha-forte")

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	svc := auth.NewService(nil, jwtSecret)

	token, err := svc.Login(context.Background(), "cfsmart", "senha-forte")
	if err != nil {
		t.Fatalf("login deveria ter sucesso: %v", err)
	}

	router := gin.New()
	router.Use(AuthMiddleware(jwtSecret))
	router.GET("/protegida", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"usuario": Username(c)})
	})

	t.Run("token emitido pelo serviço é aceito", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("token emitido pelo próprio serviço foi rejeitado: status %d", rec.Code)
		}
	})

	t.Run("sem token é rejeitado", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("requisição sem token deveria ser 401, obteve %d", rec.Code)
		}
	})

	t.Run("token assinado com outra chave é rejeitado", func(t *testing.T) {
		outro := auth.NewService(nil, []byte("outra-chave"))
		forged, err := outro.Login(context.Background(), "cfsmart", "senha-forte")
		if err != nil {
			t.Fatalf("login deveria ter sucesso: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("token de outra chave deveria ser 401, obteve %d", rec.Code)
		}
	})

	t.Run("rota de importação exige a permissão", func(t *testing.T) {
		restricted := gin.New()
		restricted.Use(AuthMiddleware(jwtSecret), PermissionMiddleware(auth.PermissionImport))
		restricted.POST("/import", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodPost, "/import", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		restricted.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("cfsmart tem a permissão de importação, obteve %d", rec.Code)
		}
	})
}
