// internal/api/responses/responses.go
package responses

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Log é o logger estruturado compartilhado pela aplicação.
var Log *zap.SugaredLogger

// InitLogger inicializa o logger de produção. Deve ser chamado uma única vez
// no início do main.
func InitLogger() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("não foi possível inicializar o logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// Error responde com o payload de erro padrão e registra a ocorrência.
func Error(c *gin.Context, status int, message string, details ...string) {
	payload := gin.H{"error": message}
	if len(details) > 0 {
		payload["details"] = details
	}
	if Log != nil {
		Log.Warnw("requisição falhou",
			"status", status,
			"rota", c.FullPath(),
			"mensagem", message,
		)
	}
	c.JSON(status, payload)
}
