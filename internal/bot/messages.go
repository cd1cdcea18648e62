package bot

// User-facing texts. The audience is PT-BR; all of them are sent with
// Telegram's legacy Markdown parse mode.
const (
	msgStart = "🎬 *Gerador de Clips Virais*\n\n" +
		"Envie um link do YouTube e eu vou:\n\n" +
		"✅ Transcrever automaticamente\n" +
		"✅ Identificar 7 momentos virais\n" +
		"✅ Gerar clips 9:16 com legendas\n" +
		"✅ Enviar de volta para você\n\n" +
		"⏱️ Tempo: 10-15 minutos\n\n" +
		"💡 *Envie o link agora!*"

	msgHelp = "📖 *Como usar:*\n\n" +
		"1️⃣ Envie um link do YouTube\n" +
		"2️⃣ Aguarde o processamento\n" +
		"3️⃣ Receba 7 clips prontos!\n\n" +
		"🔗 Formatos aceitos:\n" +
		"• youtube.com/watch?v=...\n" +
		"• youtu.be/...\n\n" +
		"❓ Dúvidas? Fale com @gxbriex"

	msgAdminOnly = "❌ Comando apenas para admin"

	msgStats = "📊 *Estatísticas:*\n\n" +
		"Status: Online ✅\n" +
		"Uptime: %s\n" +
		"Pedidos: %d (%d em andamento)\n" +
		"Concluídos: %d\n" +
		"Falhas: %d\n" +
		"Clips enviados: %d\n" +
		"Admin: %d"

	msgInvalidLink = "❌ *Link inválido!*\n\n" +
		"Envie um link do YouTube:\n" +
		"• youtube.com/watch?v=...\n" +
		"• youtu.be/..."

	msgReceived = "✅ *Link recebido!*\n\n" +
		"🔄 Iniciando processamento...\n" +
		"⏱️ Tempo estimado: 10-15 min\n\n" +
		"Você será notificado! ⏰"

	msgProcessed = "✅ *Processamento concluído!*\n\n" +
		"📊 %d clips gerados\n" +
		"📤 Enviando arquivos..."

	msgClipCaption = "🎬 *Clip %d/%d*\n\n%s"

	msgReady = "🎉 *Pronto!*\n\n" +
		"Todos os clips foram enviados.\n\n" +
		"💡 Quer processar outro? Envie o link!"

	msgFailed = "❌ *Erro:*\n\n%s\n\n" +
		"Tente novamente ou fale com @gxbriex"

	msgUnexpected = "❌ *Erro inesperado!*\n\n" +
		"Tente novamente em alguns minutos."
)
