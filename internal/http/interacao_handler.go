package api

import (
	"net/http"

	"storefront/internal/domain/interaction"
	"storefront/internal/platform/paging"
)

type createInteracaoRequest struct {
	ProdutoID int64  `json:"produtoId"`
	Tipo      string `json:"tipo"`
	Conteudo  string `json:"conteudo"`
	Nota      *int   `json:"nota"`
}

type replyRequest struct {
	Conteudo string `json:"conteudo"`
}

func (h *Handler) handleListInteracoes(w http.ResponseWriter, r *http.Request) {
	var (
		f   interaction.ListFilter
		err error
	)
	if f.ProdutoID, err = queryID(r, "produtoId"); err != nil {
		errorResponse(w, err)
		return
	}
	if f.ClienteID, err = queryID(r, "clienteId"); err != nil {
		errorResponse(w, err)
		return
	}
	if v := r.URL.Query().Get("tipo"); v != "" {
		if f.Tipo, err = interaction.ParseTipo(v); err != nil {
			errorResponse(w, err)
			return
		}
	}
	if f.Params, err = pagingParams(r); err != nil {
		errorResponse(w, err)
		return
	}

	items, total, err := h.interacoes.List(r.Context(), f)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, paging.NewPage(items, total, f.Params))
}

// handleCreateInteracao godoc
// @Summary  Record a customer interaction with a product
// @Tags     interacoes
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body createInteracaoRequest true "interaction"
// @Success  201 {object} envelope
// @Failure  404 {object} envelope
// @Failure  409 {object} envelope
// @Router   /interacoes [post]
func (h *Handler) handleCreateInteracao(w http.ResponseWriter, r *http.Request) {
	var req createInteracaoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	tipo, err := interaction.ParseTipo(req.Tipo)
	if err != nil {
		errorResponse(w, err)
		return
	}

	i, err := h.interacoes.Create(r.Context(), principalFromCtx(r).Cliente.ID, interaction.CreateInput{
		ProdutoID: req.ProdutoID,
		Tipo:      tipo,
		Conteudo:  req.Conteudo,
		Nota:      req.Nota,
	})
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusCreated, i)
}

func (h *Handler) handleReplyInteracao(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}
	var req replyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	i, err := h.interacoes.Reply(r.Context(), principalFromCtx(r).Admin.ID, id, req.Conteudo)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusCreated, i)
}

func (h *Handler) handleDeleteInteracao(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}

	var actor interaction.Actor
	p := principalFromCtx(r)
	if p.Admin != nil {
		actor.AdminLevel = p.Admin.AccessLevel
	}
	if p.Cliente != nil {
		actor.ClienteID = p.Cliente.ID
	}

	if err := h.interacoes.Delete(r.Context(), actor, id); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "interacao removida")
}
