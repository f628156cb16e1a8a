package api

import (
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/admin"
	"storefront/internal/domain/customer"
	"storefront/internal/metrics"
	jwtpkg "storefront/internal/platform/jwt"
	"storefront/internal/platform/paging"
)

type registerClienteRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Senha    string `json:"senha"`
	Telefone string `json:"telefone"`
	Endereco string `json:"endereco"`
	Cidade   string `json:"cidade"`
	Estado   string `json:"estado"`
	CEP      string `json:"cep"`
}

type updateClienteRequest struct {
	Nome     *string `json:"nome"`
	Email    *string `json:"email"`
	Telefone *string `json:"telefone"`
	Endereco *string `json:"endereco"`
	Cidade   *string `json:"cidade"`
	Estado   *string `json:"estado"`
	CEP      *string `json:"cep"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email     string `json:"email"`
	Codigo    string `json:"codigo"`
	NovaSenha string `json:"novaSenha"`
}

type clienteLoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Cliente   *customer.Cliente `json:"cliente"`
}

// handleRegisterCliente godoc
// @Summary  Customer self-registration
// @Tags     clientes
// @Accept   json
// @Produce  json
// @Param    body body registerClienteRequest true "new customer"
// @Success  201 {object} envelope
// @Failure  409 {object} envelope
// @Router   /clientes/cadastro [post]
func (h *Handler) handleRegisterCliente(w http.ResponseWriter, r *http.Request) {
	var req registerClienteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	c, err := h.clientes.Register(r.Context(), customer.RegisterInput{
		Nome:     req.Nome,
		Email:    req.Email,
		Senha:    req.Senha,
		Telefone: req.Telefone,
		Endereco: req.Endereco,
		Cidade:   req.Cidade,
		Estado:   req.Estado,
		CEP:      req.CEP,
	})
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

// handleClienteLogin godoc
// @Summary  Customer login
// @Tags     clientes
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} envelope
// @Failure  401 {object} envelope
// @Failure  403 {object} envelope
// @Router   /clientes/login [post]
func (h *Handler) handleClienteLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	c, err := h.clientes.Login(r.Context(), req.Email, req.Senha)
	metrics.IncLogin(string(jwtpkg.KindCliente), err == nil)
	if err != nil {
		errorResponse(w, err)
		return
	}

	token, exp, err := h.tokens.Issue(c.ID, jwtpkg.KindCliente, "")
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, clienteLoginResponse{Token: token, ExpiresAt: exp, Cliente: c})
}

func (h *Handler) handleClienteConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	c, err := h.clientes.ConfirmEmail(r.Context(), req.Token)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) handleResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	if err := h.clientes.ResendConfirmation(r.Context(), req.Email); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "email de confirmacao reenviado")
}

// handleRequestPasswordReset answers the same way whether or not the email
// belongs to an account.
func (h *Handler) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	if err := h.clientes.RequestPasswordReset(r.Context(), req.Email); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "se o email estiver cadastrado, um codigo foi enviado")
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	if err := h.clientes.ResetPassword(r.Context(), req.Email, req.Codigo, req.NovaSenha); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "senha redefinida")
}

func (h *Handler) handleClienteMe(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, principalFromCtx(r).Cliente)
}

func (h *Handler) handleClienteLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.clientes.Logout(r.Context(), principalFromCtx(r).Cliente.ID); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "logout realizado")
}

func (h *Handler) handleListClientes(w http.ResponseWriter, r *http.Request) {
	verificado, err := queryBool(r, "verificado")
	if err != nil {
		errorResponse(w, err)
		return
	}
	params, err := pagingParams(r)
	if err != nil {
		errorResponse(w, err)
		return
	}
	f := customer.ListFilter{
		Busca:      strings.TrimSpace(r.URL.Query().Get("busca")),
		Verificado: verificado,
		Params:     params,
	}

	items, total, err := h.clientes.List(r.Context(), f)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, paging.NewPage(items, total, f.Params))
}

// clienteTarget resolves the {id} path parameter and checks that the caller is
// that customer or an ADMIN+ admin.
func (h *Handler) clienteTarget(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return 0, false
	}
	p := principalFromCtx(r)
	switch {
	case p.Admin != nil && admin.CheckLevel(p.Admin.AccessLevel, admin.LevelAdmin):
		return id, true
	case p.Cliente != nil && p.Cliente.ID == id:
		return id, true
	default:
		errorResponse(w, admin.ErrForbidden)
		return 0, false
	}
}

func (h *Handler) handleGetCliente(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clienteTarget(w, r)
	if !ok {
		return
	}
	c, err := h.clientes.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) handleUpdateCliente(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clienteTarget(w, r)
	if !ok {
		return
	}
	var req updateClienteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	c, err := h.clientes.Update(r.Context(), id, customer.UpdateInput{
		Nome:     req.Nome,
		Email:    req.Email,
		Telefone: req.Telefone,
		Endereco: req.Endereco,
		Cidade:   req.Cidade,
		Estado:   req.Estado,
		CEP:      req.CEP,
	})
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCliente(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clienteTarget(w, r)
	if !ok {
		return
	}
	if err := h.clientes.Delete(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "cliente removido")
}
