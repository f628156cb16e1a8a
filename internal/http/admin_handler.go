package api

import (
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/admin"
	"storefront/internal/metrics"
	jwtpkg "storefront/internal/platform/jwt"
	"storefront/internal/platform/paging"
)

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type adminLoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Admin     *admin.Admin `json:"admin"`
}

type createAdminRequest struct {
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	Senha       string `json:"senha"`
	AccessLevel string `json:"accessLevel"`
}

type updateAdminRequest struct {
	Nome        *string `json:"nome"`
	Email       *string `json:"email"`
	Senha       *string `json:"senha"`
	AccessLevel *string `json:"accessLevel"`
}

// handleAdminLogin godoc
// @Summary  Admin login
// @Tags     admin
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} envelope
// @Failure  401 {object} envelope
// @Router   /admin/auth/login [post]
func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	a, err := h.admins.Login(r.Context(), req.Email, req.Senha)
	metrics.IncLogin(string(jwtpkg.KindAdmin), err == nil)
	if err != nil {
		errorResponse(w, err)
		return
	}

	token, exp, err := h.tokens.Issue(a.ID, jwtpkg.KindAdmin, string(a.AccessLevel))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, adminLoginResponse{Token: token, ExpiresAt: exp, Admin: a})
}

func (h *Handler) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	p := principalFromCtx(r)
	if err := h.admins.Logout(r.Context(), p.Admin.ID); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "logout realizado")
}

func (h *Handler) handleAdminConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	a, err := h.admins.ConfirmEmail(r.Context(), req.Token)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

// handleAdminMe godoc
// @Summary  Current admin
// @Tags     admin
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} envelope
// @Router   /admin/me [get]
func (h *Handler) handleAdminMe(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, principalFromCtx(r).Admin)
}

func (h *Handler) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := admin.ListFilter{Busca: strings.TrimSpace(q.Get("busca"))}
	if v := q.Get("accessLevel"); v != "" {
		level, err := admin.ParseAccessLevel(v)
		if err != nil {
			errorResponse(w, err)
			return
		}
		f.AccessLevel = level
	}
	params, err := pagingParams(r)
	if err != nil {
		errorResponse(w, err)
		return
	}
	f.Params = params

	items, total, err := h.admins.List(r.Context(), f)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, paging.NewPage(items, total, f.Params))
}

func (h *Handler) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	level := admin.LevelEditor
	if req.AccessLevel != "" {
		parsed, err := admin.ParseAccessLevel(req.AccessLevel)
		if err != nil {
			errorResponse(w, err)
			return
		}
		level = parsed
	}

	a, err := h.admins.Create(r.Context(), principalFromCtx(r).Admin, admin.CreateInput{
		Nome:        req.Nome,
		Email:       req.Email,
		Senha:       req.Senha,
		AccessLevel: level,
	})
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusCreated, a)
}

// handleGetAdmin serves ADMIN+ callers and any admin reading its own record.
func (h *Handler) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}
	actor := principalFromCtx(r).Admin
	if actor.ID != id && !admin.CheckLevel(actor.AccessLevel, admin.LevelAdmin) {
		errorResponse(w, admin.ErrForbidden)
		return
	}

	a, err := h.admins.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (h *Handler) handleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}
	var req updateAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	in := admin.UpdateInput{Nome: req.Nome, Email: req.Email, Senha: req.Senha}
	if req.AccessLevel != nil {
		level, err := admin.ParseAccessLevel(*req.AccessLevel)
		if err != nil {
			errorResponse(w, err)
			return
		}
		in.AccessLevel = &level
	}

	a, err := h.admins.Update(r.Context(), principalFromCtx(r).Admin, id, in)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (h *Handler) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}
	if err := h.admins.Delete(r.Context(), principalFromCtx(r).Admin, id); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "administrador removido")
}
