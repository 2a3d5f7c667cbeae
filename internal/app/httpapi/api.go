// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para o serviço de sorteio.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wewei/ems-lottery/internal/app/sorteio"
	"github.com/wewei/ems-lottery/internal/domain"
	"github.com/wewei/ems-lottery/internal/platform/antifraude"
	"github.com/wewei/ems-lottery/internal/platform/metrics"
)

// API empacota handlers HTTP ligados ao serviço de sorteio e ao logger.
type API struct {
	service domain.SorteioService
	logger  *slog.Logger
}

func New(service domain.SorteioService, logger *slog.Logger) *API {
	return &API{service: service, logger: logger}
}

func (a *API) Register(mux *http.ServeMux) {
	// Mantemos as rotas centralizadas para facilitar testes e reuso em servidores diferentes.
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/premios", a.listarPremios)
	mux.HandleFunc("/premios/", a.handlePremioDetalhes)
	mux.HandleFunc("/sorteios/", a.handleSorteios)
	mux.HandleFunc("/usuarios/", a.handleUsuarios)
	mux.HandleFunc("/registros", a.listarRegistros)
	mux.HandleFunc("/registros/", a.handleRegistroDetalhes)
	mux.HandleFunc("/configuracao", a.handleConfiguracao)
	mux.HandleFunc("/estatisticas", a.obterEstatisticas)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *API) listarPremios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "metodo nao suportado", http.StatusMethodNotAllowed)
		return
	}

	premios, err := a.service.ListarPremios(r.Context())
	if err != nil {
		a.logger.Error("erro ao listar premios", "err", err)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, premios)
}

func (a *API) handlePremioDetalhes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/premios/")
	partes := strings.Split(path, "/")
	if len(partes) == 0 || partes[0] == "" {
		http.NotFound(w, r)
		return
	}

	id := domain.PremioID(partes[0])

	switch {
	case len(partes) == 2 && partes[1] == "restante" && r.Method == http.MethodGet:
		a.obterRestante(w, r, id)
	case len(partes) == 1 && r.Method == http.MethodPut:
		a.atualizarPremio(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type premioRequest struct {
	Nome                string `json:"nome"`
	ImagemURL           string `json:"imagem_url"`
	QuantidadeTotal     int    `json:"quantidade_total"`
	QuantidadePorRodada int    `json:"quantidade_por_rodada"`
}

func (a *API) atualizarPremio(w http.ResponseWriter, r *http.Request, id domain.PremioID) {
	var req premioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	premio := domain.Premio{
		ID:                  id,
		Nome:                req.Nome,
		ImagemURL:           req.ImagemURL,
		QuantidadeTotal:     req.QuantidadeTotal,
		QuantidadePorRodada: req.QuantidadePorRodada,
	}
	if err := a.service.AtualizarPremio(r.Context(), premio); err != nil {
		a.logger.Warn("falha ao atualizar premio", "err", err, "premio", id)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, premio)
	a.logger.Info("premio atualizado", "premio", id)
}

func (a *API) obterRestante(w http.ResponseWriter, r *http.Request, id domain.PremioID) {
	restante, err := a.service.Restante(r.Context(), id)
	if err != nil {
		a.logger.Error("erro ao obter restante", "err", err, "premio", id)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, map[string]int{"restante": restante})
}

type sorteioRequest struct {
	Ganhadores []domain.Candidato `json:"ganhadores"`
}

type aleatorioRequest struct {
	Quantidade int `json:"quantidade"`
}

func (a *API) handleSorteios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "metodo nao suportado", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/sorteios/")
	partes := strings.Split(path, "/")
	if len(partes) == 0 || partes[0] == "" {
		http.NotFound(w, r)
		return
	}

	id := domain.PremioID(partes[0])

	switch {
	case len(partes) == 1:
		a.sortear(w, r, id)
	case len(partes) == 2 && partes[1] == "aleatorio":
		a.sortearAleatorio(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) sortear(w http.ResponseWriter, r *http.Request, id domain.PremioID) {
	var req sorteioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveDrawRequest("invalid_payload")
		a.logger.Warn("payload invalido ao sortear", "err", err)
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	inicio := time.Now()
	resultado, err := a.service.Sortear(r.Context(), id, req.Ganhadores)
	metrics.ObserveDrawDuration(time.Since(inicio).Seconds())
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveDrawRequest(status)
		a.logger.Warn("falha ao sortear", "err", err, "premio", id, "status", status)
		responderErro(w, err)
		return
	}

	metrics.ObserveDrawRequest("ok")
	responderJSON(w, http.StatusOK, resultado)
	a.logger.Info("rodada gravada", "premio", id, "ganhadores", len(resultado.Ganhadores), "restante", resultado.Restante)
}

func (a *API) sortearAleatorio(w http.ResponseWriter, r *http.Request, id domain.PremioID) {
	var req aleatorioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveDrawRequest("invalid_payload")
		a.logger.Warn("payload invalido ao sortear aleatorio", "err", err)
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	inicio := time.Now()
	resultado, err := a.service.SortearAleatorio(r.Context(), id, req.Quantidade)
	metrics.ObserveDrawDuration(time.Since(inicio).Seconds())
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveDrawRequest(status)
		a.logger.Warn("falha ao sortear aleatorio", "err", err, "premio", id, "status", status)
		responderErro(w, err)
		return
	}

	metrics.ObserveDrawRequest("ok")
	responderJSON(w, http.StatusOK, resultado)
	a.logger.Info("rodada aleatoria gravada", "premio", id, "ganhadores", len(resultado.Ganhadores), "restante", resultado.Restante)
}

type ativacaoRequest struct {
	NavegadorID string `json:"navegador_id"`
}

func (a *API) handleUsuarios(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/usuarios/")
	partes := strings.Split(path, "/")
	if len(partes) == 0 || partes[0] == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case partes[0] == "ativos" && len(partes) == 1 && r.Method == http.MethodGet:
		a.listarElegiveis(w, r)
	case partes[0] == "ativado-por-navegador" && len(partes) == 1 && r.Method == http.MethodGet:
		a.ativadoPorNavegador(w, r)
	case partes[0] == "ativar" && len(partes) == 2 && r.Method == http.MethodPost:
		a.ativar(w, r, partes[1])
	case partes[0] == "ativar-admin" && len(partes) == 2 && r.Method == http.MethodPost:
		a.ativarPeloAdmin(w, r, partes[1])
	case partes[0] == "desativar" && len(partes) == 2 && r.Method == http.MethodPost:
		a.desativar(w, r, partes[1])
	default:
		http.NotFound(w, r)
	}
}

func (a *API) listarElegiveis(w http.ResponseWriter, r *http.Request) {
	premioID := domain.PremioID(r.URL.Query().Get("premio"))
	candidatos, err := a.service.Candidatos(r.Context(), premioID)
	if err != nil {
		a.logger.Error("erro ao listar elegiveis", "err", err, "premio", premioID)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, map[string]any{"usuarios": candidatos})
}

func (a *API) ativar(w http.ResponseWriter, r *http.Request, alias string) {
	var req ativacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveActivationRequest("invalid_payload")
		http.Error(w, "payload invalido", http.StatusBadRequest)
		return
	}

	usuario, err := a.service.Ativar(r.Context(), domain.Ativacao{
		Alias:       alias,
		NavegadorID: req.NavegadorID,
		OrigemIP:    origemIP(r),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveActivationRequest(status)
		a.logger.Warn("falha ao ativar", "err", err, "alias", alias, "status", status)
		responderErro(w, err)
		return
	}

	metrics.ObserveActivationRequest("ok")
	responderJSON(w, http.StatusOK, usuario)
	a.logger.Info("participante ativado", "alias", alias)
}

func (a *API) ativarPeloAdmin(w http.ResponseWriter, r *http.Request, alias string) {
	usuario, err := a.service.AtivarPeloAdmin(r.Context(), alias)
	if err != nil {
		a.logger.Warn("falha ao ativar pelo admin", "err", err, "alias", alias)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, usuario)
	a.logger.Info("participante ativado pelo admin", "alias", alias)
}

func (a *API) desativar(w http.ResponseWriter, r *http.Request, alias string) {
	if err := a.service.Desativar(r.Context(), alias); err != nil {
		a.logger.Warn("falha ao desativar", "err", err, "alias", alias)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, map[string]string{"status": "desativado"})
	a.logger.Info("participante desativado", "alias", alias)
}

func (a *API) ativadoPorNavegador(w http.ResponseWriter, r *http.Request) {
	navegadorID := r.URL.Query().Get("navegador_id")
	usuario, err := a.service.AtivadoPorNavegador(r.Context(), navegadorID)
	if err != nil {
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, usuario)
}

func (a *API) listarRegistros(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "metodo nao suportado", http.StatusMethodNotAllowed)
		return
	}

	pagina := queryInt(r, "pagina", 1)
	limite := queryInt(r, "limite", 10)

	registros, err := a.service.Registros(r.Context(), pagina, limite)
	if err != nil {
		a.logger.Error("erro ao listar registros", "err", err)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, registros)
}

func (a *API) handleRegistroDetalhes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/registros/")
	partes := strings.Split(path, "/")
	if len(partes) == 0 || partes[0] == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case partes[0] == "ganhador" && len(partes) == 2 && r.Method == http.MethodGet:
		a.registrosPorGanhador(w, r, partes[1])
	case partes[0] == "premio" && len(partes) == 2 && r.Method == http.MethodGet:
		a.registrosPorPremio(w, r, domain.PremioID(partes[1]))
	case len(partes) == 1 && r.Method == http.MethodDelete:
		a.removerRegistro(w, r, domain.RegistroID(partes[0]))
	default:
		http.NotFound(w, r)
	}
}

func (a *API) registrosPorGanhador(w http.ResponseWriter, r *http.Request, alias string) {
	registros, err := a.service.RegistrosPorGanhador(r.Context(), alias)
	if err != nil {
		a.logger.Error("erro ao listar registros do ganhador", "err", err, "alias", alias)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, map[string]any{"registros": registros})
}

func (a *API) registrosPorPremio(w http.ResponseWriter, r *http.Request, id domain.PremioID) {
	registros, err := a.service.RegistrosPorPremio(r.Context(), id)
	if err != nil {
		a.logger.Error("erro ao listar registros do premio", "err", err, "premio", id)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, map[string]any{"registros": registros})
}

func (a *API) removerRegistro(w http.ResponseWriter, r *http.Request, id domain.RegistroID) {
	if err := a.service.RemoverRegistro(r.Context(), id); err != nil {
		a.logger.Warn("falha ao remover registro", "err", err, "registro", id)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, map[string]string{"status": "removido"})
	a.logger.Info("registro removido, estoque devolvido", "registro", id)
}

type configuracaoRequest struct {
	PermitirMultiplasVitorias bool `json:"permitir_multiplas_vitorias"`
}

func (a *API) handleConfiguracao(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := a.service.ObterConfiguracao(r.Context())
		if err != nil {
			a.logger.Error("erro ao obter configuracao", "err", err)
			responderErro(w, err)
			return
		}
		responderJSON(w, http.StatusOK, cfg)
	case http.MethodPost:
		var req configuracaoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "payload invalido", http.StatusBadRequest)
			return
		}
		cfg, err := a.service.AtualizarConfiguracao(r.Context(), req.PermitirMultiplasVitorias)
		if err != nil {
			a.logger.Error("erro ao atualizar configuracao", "err", err)
			responderErro(w, err)
			return
		}
		responderJSON(w, http.StatusOK, cfg)
	default:
		http.Error(w, "metodo nao suportado", http.StatusMethodNotAllowed)
	}
}

func (a *API) obterEstatisticas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "metodo nao suportado", http.StatusMethodNotAllowed)
		return
	}

	estatisticas, err := a.service.Estatisticas(r.Context())
	if err != nil {
		a.logger.Error("erro ao obter estatisticas", "err", err)
		responderErro(w, err)
		return
	}

	responderJSON(w, http.StatusOK, estatisticas)
}

func origemIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return strings.Split(r.RemoteAddr, ":")[0]
}

func queryInt(r *http.Request, chave string, fallback int) int {
	valor := r.URL.Query().Get(chave)
	if valor == "" {
		return fallback
	}
	n, err := strconv.Atoi(valor)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderErro(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, sorteio.ErrPremioNaoEncontrado),
		errors.Is(err, sorteio.ErrUsuarioNaoEncontrado),
		errors.Is(err, sorteio.ErrRegistroNaoEncontrado):
		status = http.StatusNotFound
	case errors.Is(err, sorteio.ErrQuantidadeInvalida),
		errors.Is(err, sorteio.ErrEstoqueInsuficiente),
		errors.Is(err, sorteio.ErrGanhadorInelegivel),
		errors.Is(err, sorteio.ErrAtivacaoInvalida),
		errors.Is(err, sorteio.ErrAmostraInvalida),
		errors.Is(err, sorteio.ErrNavegadorVinculado):
		status = http.StatusBadRequest
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	}

	responderJSON(w, status, map[string]string{"erro": err.Error()})
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, sorteio.ErrEstoqueInsuficiente):
		return "insufficient"
	case errors.Is(err, sorteio.ErrGanhadorInelegivel):
		return "ineligible"
	case errors.Is(err, sorteio.ErrPremioNaoEncontrado),
		errors.Is(err, sorteio.ErrUsuarioNaoEncontrado),
		errors.Is(err, sorteio.ErrRegistroNaoEncontrado):
		return "not_found"
	case errors.Is(err, sorteio.ErrQuantidadeInvalida),
		errors.Is(err, sorteio.ErrAtivacaoInvalida),
		errors.Is(err, sorteio.ErrAmostraInvalida),
		errors.Is(err, sorteio.ErrNavegadorVinculado):
		return "invalid"
	default:
		return "error"
	}
}
