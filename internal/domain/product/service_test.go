package product

import (
	"bytes"
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"storefront/internal/platform/validate"
)

type memoryProdutoRepo struct {
	mu       sync.Mutex
	produtos map[int64]*Produto
	nextID   int64
}

func newMemoryProdutoRepo() *memoryProdutoRepo {
	return &memoryProdutoRepo{produtos: make(map[int64]*Produto), nextID: 1}
}

func (r *memoryProdutoRepo) Create(ctx context.Context, p *Produto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.produtos[p.ID] = &cp
	return nil
}

func (r *memoryProdutoRepo) GetByID(ctx context.Context, id int64) (*Produto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produtos[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryProdutoRepo) List(ctx context.Context, f ListFilter) ([]Produto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []Produto
	for _, p := range r.produtos {
		if f.Categoria != "" && p.Categoria != f.Categoria {
			continue
		}
		if f.Busca != "" && !strings.Contains(strings.ToLower(p.Nome), strings.ToLower(f.Busca)) {
			continue
		}
		if f.Disponivel != nil && p.Disponivel != *f.Disponivel {
			continue
		}
		if f.PrecoMin != nil && p.Preco < *f.PrecoMin {
			continue
		}
		if f.PrecoMax != nil && p.Preco > *f.PrecoMax {
			continue
		}
		res = append(res, *p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, int64(len(res)), nil
}

func (r *memoryProdutoRepo) Update(ctx context.Context, p *Produto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.produtos[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	r.produtos[p.ID] = &cp
	return nil
}

func (r *memoryProdutoRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.produtos[id]; !ok {
		return ErrNotFound
	}
	delete(r.produtos, id)
	return nil
}

func (r *memoryProdutoRepo) Exists(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.produtos[id]
	return ok, nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateDefaultsAvailabilityFromStock(t *testing.T) {
	svc := NewService(newMemoryProdutoRepo())
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Nome: " Camiseta ", Preco: 59.9, Estoque: 3, Tamanhos: []string{"P", " ", "M"}})
	require.NoError(t, err)
	assert.Equal(t, "Camiseta", p.Nome)
	assert.True(t, p.Disponivel)
	assert.Equal(t, []string{"P", "M"}, p.Tamanhos)
	assert.NotNil(t, p.Cores)

	p, err = svc.Create(ctx, Input{Nome: "Bone", Preco: 30})
	require.NoError(t, err)
	assert.False(t, p.Disponivel)

	p, err = svc.Create(ctx, Input{Nome: "Meia", Preco: 10, Disponivel: ptr(true)})
	require.NoError(t, err)
	assert.True(t, p.Disponivel)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryProdutoRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Nome: "  ", Preco: 1})
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = svc.Create(ctx, Input{Nome: "X", Preco: -1})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = svc.Create(ctx, Input{Nome: "X", Preco: 1, Estoque: -2})
	assert.ErrorIs(t, err, ErrInvalidStock)
	_, err = svc.Create(ctx, Input{Nome: "X", Preco: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = svc.Create(ctx, Input{Nome: "X", Preco: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = svc.Create(ctx, Input{Nome: "X", Preco: 1, Categoria: strings.Repeat("c", 81)})
	assert.ErrorIs(t, err, validate.ErrTooLong)
}

func TestUpdatePartial(t *testing.T) {
	svc := NewService(newMemoryProdutoRepo())
	ctx := context.Background()
	p, err := svc.Create(ctx, Input{Nome: "Jaqueta", Preco: 200, Categoria: "casacos", Estoque: 1})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, UpdateInput{Preco: ptr(180.0), Cores: ptr([]string{"preto"})})
	require.NoError(t, err)
	assert.Equal(t, 180.0, updated.Preco)
	assert.Equal(t, "Jaqueta", updated.Nome)
	assert.Equal(t, []string{"preto"}, updated.Cores)

	_, err = svc.Update(ctx, p.ID, UpdateInput{Nome: ptr("")})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Update(ctx, 999, UpdateInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRejectsInvertedPriceRange(t *testing.T) {
	svc := NewService(newMemoryProdutoRepo())
	_, _, err := svc.List(context.Background(), ListFilter{PrecoMin: ptr(50.0), PrecoMax: ptr(10.0)})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, _, err = svc.List(context.Background(), ListFilter{PrecoMax: ptr(math.Inf(1))})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestListFilters(t *testing.T) {
	svc := NewService(newMemoryProdutoRepo())
	ctx := context.Background()
	for _, in := range []Input{
		{Nome: "Camiseta Azul", Preco: 50, Categoria: "camisetas", Estoque: 1},
		{Nome: "Camiseta Preta", Preco: 80, Categoria: "camisetas"},
		{Nome: "Calca", Preco: 120, Categoria: "calcas", Estoque: 4},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, ListFilter{Categoria: "camisetas"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	items, _, err = svc.List(ctx, ListFilter{Disponivel: ptr(true), PrecoMax: ptr(100.0)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Camiseta Azul", items[0].Nome)
}

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImport(t *testing.T) {
	repo := newMemoryProdutoRepo()
	svc := NewService(repo)

	buf := buildWorkbook(t, [][]any{
		{"nome", "categoria", "preco", "descricao", "estoque"},
		{"Camiseta", "camisetas", "49,90", "algodao", "10"},
		{"Bermuda", "bermudas", "79.5", "", ""},
		{"Sem preco", "outros", "abc", "", "1"},
		{"", "outros", "10", "", "1"},
		{"Negativo", "outros", "5", "", "-1"},
		{"Sem numero", "outros", "NaN", "", "1"},
		{"Infinito", "outros", "Inf", "", "1"},
		{strings.Repeat("n", 161), "outros", "5", "", "1"},
	})

	res, err := svc.Import(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Criados)
	assert.Equal(t, 6, res.Ignorados)
	require.Len(t, res.Erros, 6)
	assert.Equal(t, 4, res.Erros[0].Linha)
	assert.Contains(t, res.Erros[0].Erro, "preco")
	assert.Equal(t, 5, res.Erros[1].Linha)
	assert.Equal(t, 6, res.Erros[2].Linha)
	assert.Equal(t, 7, res.Erros[3].Linha)
	assert.Contains(t, res.Erros[3].Erro, "preco")
	assert.Equal(t, 8, res.Erros[4].Linha)
	assert.Equal(t, 9, res.Erros[5].Linha)
	assert.Contains(t, res.Erros[5].Erro, "nome")

	items, _, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 49.9, items[0].Preco)
	assert.True(t, items[0].Disponivel)
	assert.False(t, items[1].Disponivel)
}

func TestImportRejectsNonSpreadsheet(t *testing.T) {
	svc := NewService(newMemoryProdutoRepo())
	_, err := svc.Import(context.Background(), strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, ErrInvalidSpreadsheet)
}
