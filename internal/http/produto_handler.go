package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"storefront/internal/domain/product"
	"storefront/internal/platform/apperr"
	"storefront/internal/platform/paging"
)

type produtoRequest struct {
	Nome       string   `json:"nome"`
	Descricao  string   `json:"descricao"`
	Preco      float64  `json:"preco"`
	Categoria  string   `json:"categoria"`
	Tamanhos   []string `json:"tamanhos"`
	Cores      []string `json:"cores"`
	Imagens    []string `json:"imagens"`
	Estoque    int      `json:"estoque"`
	Disponivel *bool    `json:"disponivel"`
}

type updateProdutoRequest struct {
	Nome       *string   `json:"nome"`
	Descricao  *string   `json:"descricao"`
	Preco      *float64  `json:"preco"`
	Categoria  *string   `json:"categoria"`
	Tamanhos   *[]string `json:"tamanhos"`
	Cores      *[]string `json:"cores"`
	Imagens    *[]string `json:"imagens"`
	Estoque    *int      `json:"estoque"`
	Disponivel *bool     `json:"disponivel"`
}

// handleListProdutos godoc
// @Summary  List products
// @Tags     produtos
// @Produce  json
// @Param    categoria  query string false "category"
// @Param    busca      query string false "name or description search"
// @Param    disponivel query bool   false "availability"
// @Param    precoMin   query number false "minimum price"
// @Param    precoMax   query number false "maximum price"
// @Param    page       query int    false "page"
// @Param    limit      query int    false "page size"
// @Success  200 {object} envelope
// @Router   /produtos [get]
func (h *Handler) handleListProdutos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := product.ListFilter{
		Categoria: q.Get("categoria"),
		Busca:     q.Get("busca"),
	}

	var err error
	if f.Disponivel, err = queryBool(r, "disponivel"); err != nil {
		errorResponse(w, err)
		return
	}
	if f.PrecoMin, err = queryFloat(r, "precoMin"); err != nil {
		errorResponse(w, err)
		return
	}
	if f.PrecoMax, err = queryFloat(r, "precoMax"); err != nil {
		errorResponse(w, err)
		return
	}
	if f.Params, err = pagingParams(r); err != nil {
		errorResponse(w, err)
		return
	}

	items, total, err := h.produtos.List(r.Context(), f)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, paging.NewPage(items, total, f.Params))
}

func (h *Handler) handleGetProduto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}
	p, err := h.produtos.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *Handler) handleProdutoResumo(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}
	sum, err := h.interacoes.Summary(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, sum)
}

func (h *Handler) handleCreateProduto(w http.ResponseWriter, r *http.Request) {
	var req produtoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}
	p, err := h.produtos.Create(r.Context(), product.Input{
		Nome:       req.Nome,
		Descricao:  req.Descricao,
		Preco:      req.Preco,
		Categoria:  req.Categoria,
		Tamanhos:   req.Tamanhos,
		Cores:      req.Cores,
		Imagens:    req.Imagens,
		Estoque:    req.Estoque,
		Disponivel: req.Disponivel,
	})
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdateProduto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}
	var req updateProdutoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errorResponse(w, err)
		return
	}

	p, err := h.produtos.Update(r.Context(), id, product.UpdateInput{
		Nome:       req.Nome,
		Descricao:  req.Descricao,
		Preco:      req.Preco,
		Categoria:  req.Categoria,
		Tamanhos:   req.Tamanhos,
		Cores:      req.Cores,
		Imagens:    req.Imagens,
		Estoque:    req.Estoque,
		Disponivel: req.Disponivel,
	})
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProduto(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, err)
		return
	}
	if err := h.produtos.Delete(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "produto removido")
}

// handleImportProdutos godoc
// @Summary  Import products from an .xlsx sheet
// @Tags     produtos
// @Accept   mpfd
// @Produce  json
// @Security BearerAuth
// @Param    arquivo formData file true "spreadsheet with nome, categoria, preco, descricao, estoque"
// @Success  200 {object} envelope
// @Router   /produtos/importar [post]
func (h *Handler) handleImportProdutos(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		errorResponse(w, apperr.BadRequest("PLANILHA_INVALIDA", "envie o arquivo no campo 'arquivo'", err))
		return
	}
	file, header, err := r.FormFile("arquivo")
	if err != nil {
		errorResponse(w, apperr.BadRequest("PLANILHA_INVALIDA", "envie o arquivo no campo 'arquivo'", err))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		errorResponse(w, apperr.BadRequest("PLANILHA_INVALIDA", "apenas arquivos .xlsx sao aceitos", nil))
		return
	}

	res, err := h.produtos.Import(r.Context(), file)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeData(w, http.StatusOK, res)
}
