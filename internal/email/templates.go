package email

import (
	"fmt"
	"time"
)

// ReavaliacaoAlertTemplate gera o HTML do alerta de reavaliação vencida
func ReavaliacaoAlertTemplate(titulo, mensagem, solicitacaoID string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .header { background-color: #D32F2F; color: white; padding: 20px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 30px; }
        .alert-box { background-color: #FFF3CD; border-left: 4px solid #D32F2F; padding: 15px; margin: 20px 0; }
        .footer { background-color: #f8f9fa; padding: 15px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⚠️ %s</h1>
        </div>
        <div class="content">
            <div class="alert-box">
                %s
            </div>

            <p><strong>Solicitação:</strong> %s</p>
            <p><strong>Data/Hora:</strong> %s</p>

            <p>Este alerta foi enviado por email porque nenhum dispositivo da equipe recebeu a notificação push.</p>
        </div>
        <div class="footer">
            <p>Este é um email automático do sistema VITAL - Time de Resposta Rápida</p>
            <p>Não responda a este email</p>
        </div>
    </div>
</body>
</html>
    `, titulo, mensagem, solicitacaoID, time.Now().Format("02/01/2006 15:04"))
}
