package bot

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Franca20/telegram-motorista-bot/internal/audit"
	"github.com/Franca20/telegram-motorista-bot/internal/driver"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/config"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/telegram"
	"github.com/Franca20/telegram-motorista-bot/internal/ownership"
)

// Sender delivers replies to operators. Implemented by telegram.Client.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, path string) error
}

// Renderer produces the closing spreadsheet from report rows.
// Implemented by report.Renderer.
type Renderer interface {
	Render(rows []driver.ReportRow) (string, error)
}

// Telemetry receives optional command metrics. Implemented by
// influxdb.Client; a nil Telemetry disables recording.
type Telemetry interface {
	WriteCommandMetric(command, outcome string, duration time.Duration)
	WritePollMetric(batchSize, processed int, lastSeenID int64)
}

// RouterConfig carries the router's collaborators. Registry, Owners,
// Sender, Renderer and Auth are required; the rest are optional.
type RouterConfig struct {
	Registry  *driver.Registry
	Owners    *ownership.Store
	Sender    Sender
	Renderer  Renderer
	Auth      config.AuthConfig
	Audit     audit.Repository
	Telemetry Telemetry
	Pool      *Pool
	Logger    Logger
}

// Router interprets operator commands and composes the replies.
//
// Every message flows through HandleUpdate. Apart from /login, commands
// require prior authentication; /remove, /concluidos and /cancelados
// additionally require that the operator registered the key being
// touched. Unknown commands and plain text are ignored without a reply.
type Router struct {
	registry  *driver.Registry
	owners    *ownership.Store
	sender    Sender
	renderer  Renderer
	auth      config.AuthConfig
	audit     audit.Repository
	telemetry Telemetry
	pool      *Pool
	logger    Logger
}

// NewRouter builds a Router from its collaborators.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Router{
		registry:  cfg.Registry,
		owners:    cfg.Owners,
		sender:    cfg.Sender,
		renderer:  cfg.Renderer,
		auth:      cfg.Auth,
		audit:     cfg.Audit,
		telemetry: cfg.Telemetry,
		pool:      cfg.Pool,
		logger:    logger,
	}
}

// HandleUpdate processes one update from the ingestion loop.
//
// Updates without a message or without text are dropped silently, as are
// messages that do not start with a known command.
func (r *Router) HandleUpdate(ctx context.Context, upd telegram.Update) {
	if upd.Message == nil || upd.Message.Text == "" {
		return
	}

	chatID := upd.Message.Chat.ID
	operator := strconv.FormatInt(chatID, 10)
	text := strings.TrimSpace(upd.Message.Text)

	command, args := splitCommand(text)
	if command == "" {
		return
	}

	name := "Desconhecido"
	if upd.Message.From != nil && upd.Message.From.FirstName != "" {
		name = upd.Message.From.FirstName
	}
	r.logger.Info("message received", "operator", operator, "name", name, "command", command)

	started := time.Now()
	outcome := r.dispatch(ctx, chatID, operator, command, args)
	if outcome == "" {
		return
	}

	if r.telemetry != nil {
		r.telemetry.WriteCommandMetric(strings.TrimPrefix(command, "/"), outcome, time.Since(started))
	}
}

// splitCommand separates a message into its command token and argument
// remainder. Messages that are not commands yield an empty command.
func splitCommand(text string) (command, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	command, args, _ = strings.Cut(text, " ")
	return command, strings.TrimSpace(args)
}

// dispatch routes one command and returns the audit outcome, or an empty
// string for unknown commands that produce no reply.
func (r *Router) dispatch(ctx context.Context, chatID int64, operator, command, args string) string {
	if command == "/login" {
		return r.handleLogin(ctx, chatID, operator, args)
	}

	if !r.owners.IsAuthenticated(operator) {
		r.reply(ctx, chatID, "[ERRO] Você não está autenticado!\nUse: /login SENHA")
		r.logger.Warn("unauthenticated access denied", "operator", operator, "command", command)
		r.record(ctx, command, "", operator, audit.OutcomeUnauthorized, "not authenticated")
		return audit.OutcomeUnauthorized
	}

	switch command {
	case "/help":
		r.reply(ctx, chatID, helpText)
		return audit.OutcomeOK
	case "/add":
		return r.handleAdd(ctx, chatID, operator, args)
	case "/placa":
		return r.handleSearch(ctx, chatID, operator, command, args)
	case "/lh":
		return r.handleSearch(ctx, chatID, operator, command, args)
	case "/remove":
		return r.handleRemove(ctx, chatID, operator, args)
	case "/concluidos":
		return r.handleMark(ctx, chatID, operator, command, args)
	case "/cancelados":
		return r.handleMark(ctx, chatID, operator, command, args)
	case "/planilha":
		return r.handleReport(ctx, chatID, operator, args)
	default:
		return ""
	}
}

func (r *Router) handleLogin(ctx context.Context, chatID int64, operator, password string) string {
	if password == "" {
		r.reply(ctx, chatID, "[AVISO] Use: /login SENHA")
		return audit.OutcomeRejected
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(r.auth.LoginSecret)) != 1 {
		r.logger.Warn("login with wrong password", "operator", operator)
		r.reply(ctx, chatID, "[ERRO] Senha incorreta! Autenticação falhou.")
		r.record(ctx, "/login", "", operator, audit.OutcomeUnauthorized, "wrong password")
		return audit.OutcomeUnauthorized
	}

	if err := r.owners.Authenticate(operator); err != nil {
		if errors.Is(err, ownership.ErrAlreadyAuthenticated) {
			r.reply(ctx, chatID, "[AVISO] Você já está autenticado!")
			return audit.OutcomeRejected
		}
		r.reply(ctx, chatID, "[ERRO] Erro ao autenticar.")
		return audit.OutcomeError
	}

	r.reply(ctx, chatID, "[OK] Autenticação realizada com sucesso! Bem-vindo ao sistema.\n\nDigite /help para ver os comandos disponíveis.")
	r.logger.Info("operator authenticated", "operator", operator)
	r.record(ctx, "/login", "", operator, audit.OutcomeOK, "")
	return audit.OutcomeOK
}

func (r *Router) handleAdd(ctx context.Context, chatID int64, operator, args string) string {
	if args == "" {
		r.reply(ctx, chatID, "[ERRO] Uso: /add LH_1234567890123 NOME PLACA")
		return audit.OutcomeRejected
	}

	rec, err := r.registry.Add(args)
	switch {
	case errors.Is(err, driver.ErrDriverExists):
		r.reply(ctx, chatID, fmt.Sprintf(
			"[AVISO] Motorista com LH %s já existe no sistema.\nDados existentes: Nome=%s, Placa=%s",
			rec.Key, rec.Name, rec.Plate))
		r.logger.Warn("duplicate driver rejected", "operator", operator, "key", rec.Key)
		r.record(ctx, "/add", rec.Key, operator, audit.OutcomeRejected, "duplicate key")
		return audit.OutcomeRejected
	case errors.Is(err, driver.ErrMalformedEntry):
		r.reply(ctx, chatID, "[ERRO] Formato inválido. Use: /add LH_NUMERO NOME PLACA")
		r.record(ctx, "/add", "", operator, audit.OutcomeRejected, "malformed entry")
		return audit.OutcomeRejected
	case err != nil:
		r.reply(ctx, chatID, "[ERRO] Erro ao adicionar motorista.")
		r.record(ctx, "/add", "", operator, audit.OutcomeError, err.Error())
		return audit.OutcomeError
	}

	r.owners.RecordOwnership(operator, rec.Key)
	r.reply(ctx, chatID, fmt.Sprintf("[OK] Motorista %s (%s) adicionado com sucesso.", rec.Name, rec.Key))
	r.logger.Info("driver added", "operator", operator, "key", rec.Key)
	r.record(ctx, "/add", rec.Key, operator, audit.OutcomeOK, "")
	return audit.OutcomeOK
}

func (r *Router) handleSearch(ctx context.Context, chatID int64, operator, command, query string) string {
	if query == "" {
		if command == "/placa" {
			r.reply(ctx, chatID, "[ERRO] Uso: /placa ABC1234")
		} else {
			r.reply(ctx, chatID, "[ERRO] Uso: /lh 1234567890123")
		}
		return audit.OutcomeRejected
	}

	// Searches run through the pool so lookups never block ingestion.
	r.submit(ctx, func(taskCtx context.Context) {
		rec, err := r.registry.Search(query)
		switch {
		case errors.Is(err, driver.ErrInvalidQueryLength):
			r.reply(taskCtx, chatID, "[ERRO] Valor de pesquisa invalido. Insira uma Placa (7 caracteres) ou LH (13 caracteres).")
			r.record(taskCtx, command, "", operator, audit.OutcomeRejected, "invalid query length")
		case errors.Is(err, driver.ErrDriverNotFound):
			if command == "/placa" {
				r.reply(taskCtx, chatID, fmt.Sprintf("[FALHA] Nenhum motorista encontrado para placa %s", query))
			} else {
				r.reply(taskCtx, chatID, fmt.Sprintf("[FALHA] Nenhum motorista encontrado para LH %s", query))
			}
			r.record(taskCtx, command, query, operator, audit.OutcomeOK, "not found")
		case err != nil:
			r.reply(taskCtx, chatID, "[ERRO] Erro na busca.")
			r.record(taskCtx, command, query, operator, audit.OutcomeError, err.Error())
		default:
			r.reply(taskCtx, chatID, fmt.Sprintf(
				"[OK] Motorista encontrado: LH=%s, Nome=%s, Placa=%s", rec.Key, rec.Name, rec.Plate))
			r.record(taskCtx, command, rec.Key, operator, audit.OutcomeOK, "")
		}
	})
	return audit.OutcomeOK
}

func (r *Router) handleRemove(ctx context.Context, chatID int64, operator, key string) string {
	if key == "" {
		r.reply(ctx, chatID, "[ERRO] Uso: /remove LH_1234567890123")
		return audit.OutcomeRejected
	}

	if !r.owners.CanEdit(operator, key) {
		r.reply(ctx, chatID, "[ERRO] Você não tem permissão para remover este motorista!\nVocê só pode remover motoristas que criou.")
		r.logger.Warn("remove denied", "operator", operator, "key", key)
		r.record(ctx, "/remove", key, operator, audit.OutcomeUnauthorized, "not owner")
		return audit.OutcomeUnauthorized
	}

	rec, err := r.registry.Remove(key)
	if err != nil {
		r.reply(ctx, chatID, "[ERRO] Motorista não encontrado.")
		r.record(ctx, "/remove", key, operator, audit.OutcomeRejected, "not found")
		return audit.OutcomeRejected
	}

	r.owners.ReleaseOwnership(operator, key)
	r.reply(ctx, chatID, fmt.Sprintf("[OK] Motorista %s removido com sucesso.", rec.Name))
	r.logger.Info("driver removed", "operator", operator, "key", key)
	r.record(ctx, "/remove", key, operator, audit.OutcomeOK, "")
	return audit.OutcomeOK
}

func (r *Router) handleMark(ctx context.Context, chatID int64, operator, command, key string) string {
	if key == "" {
		if command == "/concluidos" {
			r.reply(ctx, chatID, "[ERRO] Uso: /concluidos LH_1234567890123")
		} else {
			r.reply(ctx, chatID, "[ERRO] Uso: /cancelados LH_1234567890123")
		}
		return audit.OutcomeRejected
	}

	if !r.owners.CanEdit(operator, key) {
		r.reply(ctx, chatID, "[ERRO] Você não tem permissão para marcar este motorista!\nVocê só pode editar motoristas que criou.")
		r.logger.Warn("mark denied", "operator", operator, "key", key, "command", command)
		r.record(ctx, command, key, operator, audit.OutcomeUnauthorized, "not owner")
		return audit.OutcomeUnauthorized
	}

	var (
		rec  *driver.Record
		err  error
		word string
	)
	if command == "/concluidos" {
		rec, err = r.registry.MarkCompleted(key)
		word = "concluído"
	} else {
		rec, err = r.registry.MarkCancelled(key)
		word = "cancelado"
	}
	if err != nil {
		r.reply(ctx, chatID, "[ERRO] Motorista não encontrado.")
		r.record(ctx, command, key, operator, audit.OutcomeRejected, "not found")
		return audit.OutcomeRejected
	}

	r.reply(ctx, chatID, fmt.Sprintf("[OK] Motorista %s marcado como %s.", rec.Name, word))
	r.logger.Info("driver marked", "operator", operator, "key", key, "status", word)
	r.record(ctx, command, key, operator, audit.OutcomeOK, "")
	return audit.OutcomeOK
}

func (r *Router) handleReport(ctx context.Context, chatID int64, operator, password string) string {
	if password == "" {
		r.reply(ctx, chatID, "[AVISO] Esta planilha requer senha.\nUso: /planilha SENHA")
		return audit.OutcomeRejected
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(r.auth.ReportSecret)) != 1 {
		r.logger.Warn("report access with wrong password", "operator", operator)
		r.reply(ctx, chatID, "[ERRO] Senha incorreta! Acesso negado.")
		r.record(ctx, "/planilha", "", operator, audit.OutcomeUnauthorized, "wrong password")
		return audit.OutcomeUnauthorized
	}

	rows := r.registry.Report()
	if len(rows) == 0 {
		r.reply(ctx, chatID, "[AVISO] Nenhum motorista registrado para gerar planilha.")
		r.record(ctx, "/planilha", "", operator, audit.OutcomeRejected, "empty report")
		return audit.OutcomeRejected
	}

	r.logger.Info("report access granted", "operator", operator, "rows", len(rows))

	// Rendering and the upload run off the polling goroutine.
	r.submit(ctx, func(taskCtx context.Context) {
		r.reply(taskCtx, chatID, "[INFO] Gerando planilha de fechamento...")

		path, err := r.renderer.Render(rows)
		if err != nil {
			r.logger.Error("report render failed", "error", err)
			r.reply(taskCtx, chatID, "[ERRO] Erro ao gerar planilha.")
			r.record(taskCtx, "/planilha", "", operator, audit.OutcomeError, err.Error())
			return
		}

		if err := r.sender.SendDocument(taskCtx, chatID, path); err != nil {
			r.logger.Error("report upload failed", "error", err, "path", path)
			r.reply(taskCtx, chatID, "[ERRO] Falha ao enviar planilha.")
			r.record(taskCtx, "/planilha", "", operator, audit.OutcomeError, err.Error())
			return
		}

		r.reply(taskCtx, chatID, "[OK] Planilha de fechamento enviada!\nCores:\n- Amarelo = Motorista Ativo\n- Verde = Motorista Concluido\n- Vermelho = Motorista Cancelado")
		r.logger.Info("report delivered", "operator", operator, "path", path)
		r.record(taskCtx, "/planilha", "", operator, audit.OutcomeOK, "")
	})
	return audit.OutcomeOK
}

// submit runs fn through the pool, falling back to inline execution when
// no pool is configured or its queue is full.
func (r *Router) submit(ctx context.Context, fn Task) {
	if r.pool != nil && r.pool.Submit(fn) {
		return
	}
	fn(ctx)
}

// reply sends a message and logs delivery failures. A lost reply does not
// roll back the state change that triggered it.
func (r *Router) reply(ctx context.Context, chatID int64, text string) {
	if err := r.sender.SendMessage(ctx, chatID, text); err != nil {
		r.logger.Error("reply delivery failed", "chat_id", chatID, "error", err)
	}
}

// record writes an audit entry when a repository is configured. Audit
// failures are logged and never affect command handling.
func (r *Router) record(ctx context.Context, action, key, operator, outcome, details string) {
	if r.audit == nil {
		return
	}
	entry := &audit.Entry{
		Action:     strings.TrimPrefix(action, "/"),
		DriverKey:  key,
		OperatorID: operator,
		Outcome:    outcome,
		Details:    details,
	}
	if err := r.audit.Create(ctx, entry); err != nil {
		r.logger.Warn("audit write failed", "action", entry.Action, "error", err)
	}
}
