package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/domain/admin"
	"storefront/internal/domain/customer"
	"storefront/internal/domain/interaction"
	"storefront/internal/domain/product"
	"storefront/internal/platform/database"
	"storefront/internal/platform/paging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(false))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := NewStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestAdminRepoUniqueEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Admins()

	a := &admin.Admin{Nome: "Root", Email: "root@loja.com", SenhaHash: "x", AccessLevel: admin.LevelSuperAdmin}
	require.NoError(t, repo.Create(ctx, a))
	assert.NotZero(t, a.ID)

	dup := &admin.Admin{Nome: "Other", Email: "root@loja.com", SenhaHash: "x", AccessLevel: admin.LevelEditor}
	assert.ErrorIs(t, repo.Create(ctx, dup), admin.ErrEmailTaken)

	n, err := repo.CountByLevel(ctx, admin.LevelSuperAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAdminRepoDeleteKeepsLastSuperAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Admins()

	root := &admin.Admin{Nome: "Root", Email: "root@loja.com", SenhaHash: "x", AccessLevel: admin.LevelSuperAdmin}
	second := &admin.Admin{Nome: "Second", Email: "second@loja.com", SenhaHash: "x", AccessLevel: admin.LevelSuperAdmin}
	require.NoError(t, repo.Create(ctx, root))
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.Delete(ctx, second.ID))
	assert.ErrorIs(t, repo.Delete(ctx, root.ID), admin.ErrLastSuperAdmin)
	assert.ErrorIs(t, repo.Delete(ctx, second.ID), admin.ErrNotFound)

	_, err := repo.GetByID(ctx, root.ID)
	assert.NoError(t, err)
}

func TestAdminRepoUpdateKeepsLastSuperAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Admins()

	root := &admin.Admin{Nome: "Root", Email: "root@loja.com", SenhaHash: "x", AccessLevel: admin.LevelSuperAdmin}
	second := &admin.Admin{Nome: "Second", Email: "second@loja.com", SenhaHash: "x", AccessLevel: admin.LevelSuperAdmin}
	require.NoError(t, repo.Create(ctx, root))
	require.NoError(t, repo.Create(ctx, second))

	second.AccessLevel = admin.LevelAdmin
	require.NoError(t, repo.Update(ctx, second))

	root.AccessLevel = admin.LevelEditor
	assert.ErrorIs(t, repo.Update(ctx, root), admin.ErrLastSuperAdmin)

	root.AccessLevel = admin.LevelSuperAdmin
	root.Nome = "Root Renamed"
	require.NoError(t, repo.Update(ctx, root))

	got, err := repo.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.LevelSuperAdmin, got.AccessLevel)
	assert.Equal(t, "Root Renamed", got.Nome)
}

func TestAdminRepoConcurrentSelfDemotion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Admins()

	a := &admin.Admin{Nome: "A", Email: "a@loja.com", SenhaHash: "x", AccessLevel: admin.LevelSuperAdmin}
	b := &admin.Admin{Nome: "B", Email: "b@loja.com", SenhaHash: "x", AccessLevel: admin.LevelSuperAdmin}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	// Both callers already read "two superadmins" before writing.
	a.AccessLevel = admin.LevelEditor
	b.AccessLevel = admin.LevelEditor

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, target := range []*admin.Admin{a, b} {
		i, target := i, target
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = repo.Update(ctx, target)
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, admin.ErrLastSuperAdmin)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	n, err := repo.CountByLevel(ctx, admin.LevelSuperAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAdminRepoDeleteRemovesReplies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := &admin.Admin{Nome: "Root", Email: "root@loja.com", SenhaHash: "x", AccessLevel: admin.LevelSuperAdmin}
	editor := &admin.Admin{Nome: "Ed", Email: "ed@loja.com", SenhaHash: "x", AccessLevel: admin.LevelEditor}
	require.NoError(t, s.Admins().Create(ctx, root))
	require.NoError(t, s.Admins().Create(ctx, editor))

	p := &product.Produto{Nome: "Camiseta", Preco: 10}
	require.NoError(t, s.Produtos().Create(ctx, p))
	c := &customer.Cliente{Nome: "Ana", Email: "ana@x.com", SenhaHash: "x"}
	require.NoError(t, s.Clientes().Create(ctx, c))

	comment := &interaction.Interacao{Tipo: interaction.TipoComentario, ProdutoID: p.ID, ClienteID: &c.ID, Conteudo: "gostei"}
	require.NoError(t, s.Interacoes().Create(ctx, comment))
	reply := &interaction.Interacao{Tipo: interaction.TipoRespostaAdmin, ProdutoID: p.ID, AdminID: &editor.ID, RespostaA: &comment.ID, Conteudo: "obrigado"}
	require.NoError(t, s.Interacoes().Create(ctx, reply))

	require.NoError(t, s.Admins().Delete(ctx, editor.ID))

	_, err := s.Interacoes().GetByID(ctx, reply.ID)
	assert.ErrorIs(t, err, interaction.ErrNotFound)
	_, err = s.Interacoes().GetByID(ctx, comment.ID)
	assert.NoError(t, err)
}

func TestAdminRepoUpdateAndTouch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Admins()

	a := &admin.Admin{Nome: "Ed", Email: "ed@loja.com", SenhaHash: "x", AccessLevel: admin.LevelEditor, EmailConfirmado: true}
	require.NoError(t, repo.Create(ctx, a))

	a.EmailConfirmado = false
	a.AccessLevel = admin.LevelAdmin
	require.NoError(t, repo.Update(ctx, a))

	at := time.Now().Truncate(time.Millisecond)
	require.NoError(t, repo.TouchLogout(ctx, a.ID, at))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.EmailConfirmado)
	assert.Equal(t, admin.LevelAdmin, got.AccessLevel)
	require.NotNil(t, got.LastLogout)
	assert.True(t, got.LastLogout.Equal(at))

	assert.ErrorIs(t, repo.TouchLogin(ctx, 999, at), admin.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &admin.Admin{ID: 999, Nome: "x"}), admin.ErrNotFound)
}

func TestAdminRepoListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Admins()

	for _, a := range []admin.Admin{
		{Nome: "Maria", Email: "maria@loja.com", AccessLevel: admin.LevelAdmin},
		{Nome: "Joao", Email: "joao@loja.com", AccessLevel: admin.LevelEditor},
		{Nome: "Marta", Email: "marta@loja.com", AccessLevel: admin.LevelEditor},
	} {
		a.SenhaHash = "x"
		require.NoError(t, repo.Create(ctx, &a))
	}

	items, total, err := repo.List(ctx, admin.ListFilter{Busca: "MAR"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	items, total, err = repo.List(ctx, admin.ListFilter{AccessLevel: admin.LevelEditor, Params: paging.Params{Page: 2, Limit: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Marta", items[0].Nome)
}

func seedCatalog(t *testing.T, s *Store) (*customer.Cliente, *product.Produto, *product.Produto) {
	t.Helper()
	ctx := context.Background()

	c := &customer.Cliente{Nome: "Ana", Email: "ana@x.com", SenhaHash: "x"}
	require.NoError(t, s.Clientes().Create(ctx, c))

	p1 := &product.Produto{Nome: "Camiseta", Preco: 50, Categoria: "camisetas", Estoque: 2, Disponivel: true, Tamanhos: []string{"P", "M"}}
	p2 := &product.Produto{Nome: "Calca", Preco: 120, Categoria: "calcas"}
	require.NoError(t, s.Produtos().Create(ctx, p1))
	require.NoError(t, s.Produtos().Create(ctx, p2))
	return c, p1, p2
}

func TestClienteRepoDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, p1, _ := seedCatalog(t, s)
	irepo := s.Interacoes()

	adminID := int64(1)
	comment := &interaction.Interacao{Tipo: interaction.TipoComentario, ProdutoID: p1.ID, ClienteID: &c.ID, Conteudo: "ok"}
	require.NoError(t, irepo.Create(ctx, comment))
	reply := &interaction.Interacao{Tipo: interaction.TipoRespostaAdmin, ProdutoID: p1.ID, AdminID: &adminID, RespostaA: &comment.ID, Conteudo: "obrigado"}
	require.NoError(t, irepo.Create(ctx, reply))

	other := &customer.Cliente{Nome: "Bia", Email: "bia@x.com", SenhaHash: "x"}
	require.NoError(t, s.Clientes().Create(ctx, other))
	keep := &interaction.Interacao{Tipo: interaction.TipoCurtida, ProdutoID: p1.ID, ClienteID: &other.ID}
	require.NoError(t, irepo.Create(ctx, keep))

	require.NoError(t, s.Clientes().Delete(ctx, c.ID))

	_, err := s.Clientes().GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, customer.ErrNotFound)
	_, err = irepo.GetByID(ctx, comment.ID)
	assert.ErrorIs(t, err, interaction.ErrNotFound)
	_, err = irepo.GetByID(ctx, reply.ID)
	assert.ErrorIs(t, err, interaction.ErrNotFound)
	_, err = irepo.GetByID(ctx, keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Clientes().Delete(ctx, c.ID), customer.ErrNotFound)
}

func TestClienteRepoUniqueEmailOnUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Clientes()

	a := &customer.Cliente{Nome: "Ana", Email: "ana@x.com", SenhaHash: "x"}
	b := &customer.Cliente{Nome: "Bia", Email: "bia@x.com", SenhaHash: "x"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	b.Email = "ana@x.com"
	assert.ErrorIs(t, repo.Update(ctx, b), customer.ErrEmailTaken)

	token := "tok-123"
	a.TokenVerificacao = &token
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.GetByVerificationToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	verified := false
	items, total, err := repo.List(ctx, customer.ListFilter{Verificado: &verified, Busca: "bia"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Bia", items[0].Nome)
}

func TestProdutoRepoListAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, p1, p2 := seedCatalog(t, s)
	repo := s.Produtos()

	got, err := repo.GetByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"P", "M"}, got.Tamanhos)

	available := true
	maxPreco := 100.0
	items, total, err := repo.List(ctx, product.ListFilter{Disponivel: &available, PrecoMax: &maxPreco})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, p1.ID, items[0].ID)

	items, _, err = repo.List(ctx, product.ListFilter{Busca: "cal"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p2.ID, items[0].ID)

	like := &interaction.Interacao{Tipo: interaction.TipoCurtida, ProdutoID: p1.ID, ClienteID: &c.ID}
	require.NoError(t, s.Interacoes().Create(ctx, like))

	require.NoError(t, repo.Delete(ctx, p1.ID))
	ok, err := repo.Exists(ctx, p1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = s.Interacoes().GetByID(ctx, like.ID)
	assert.ErrorIs(t, err, interaction.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, p1.ID), product.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &product.Produto{ID: p1.ID, Nome: "x"}), product.ErrNotFound)
}

func TestInteracaoRepoAggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, p1, p2 := seedCatalog(t, s)
	repo := s.Interacoes()

	five, three := 5, 3
	for _, i := range []interaction.Interacao{
		{Tipo: interaction.TipoAvaliacao, ProdutoID: p1.ID, ClienteID: &c.ID, Nota: &five},
		{Tipo: interaction.TipoAvaliacao, ProdutoID: p1.ID, ClienteID: &c.ID, Nota: &three},
		{Tipo: interaction.TipoCurtida, ProdutoID: p1.ID, ClienteID: &c.ID},
		{Tipo: interaction.TipoVisualizacao, ProdutoID: p2.ID, ClienteID: &c.ID},
	} {
		require.NoError(t, repo.Create(ctx, &i))
	}

	counts, err := repo.CountByTipo(ctx, p1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[interaction.TipoAvaliacao])
	assert.EqualValues(t, 1, counts[interaction.TipoCurtida])
	assert.Zero(t, counts[interaction.TipoVisualizacao])

	avg, err := repo.AverageNota(ctx, p1.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 0.001)

	avg, err = repo.AverageNota(ctx, p2.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)

	liked, err := repo.HasInteraction(ctx, c.ID, p1.ID, interaction.TipoCurtida)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = repo.HasInteraction(ctx, c.ID, p2.ID, interaction.TipoCurtida)
	require.NoError(t, err)
	assert.False(t, liked)

	items, total, err := repo.List(ctx, interaction.ListFilter{ClienteID: &c.ID, Tipo: interaction.TipoAvaliacao})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
}

func TestInteracaoRepoOneCurtidaPerCliente(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, p1, p2 := seedCatalog(t, s)
	repo := s.Interacoes()

	other := &customer.Cliente{Nome: "Bia", Email: "bia@x.com", SenhaHash: "x"}
	require.NoError(t, s.Clientes().Create(ctx, other))

	require.NoError(t, repo.Create(ctx, &interaction.Interacao{Tipo: interaction.TipoCurtida, ProdutoID: p1.ID, ClienteID: &c.ID}))
	err := repo.Create(ctx, &interaction.Interacao{Tipo: interaction.TipoCurtida, ProdutoID: p1.ID, ClienteID: &c.ID})
	assert.ErrorIs(t, err, interaction.ErrAlreadyLiked)

	for _, i := range []interaction.Interacao{
		{Tipo: interaction.TipoCurtida, ProdutoID: p2.ID, ClienteID: &c.ID},
		{Tipo: interaction.TipoCurtida, ProdutoID: p1.ID, ClienteID: &other.ID},
		{Tipo: interaction.TipoComentario, ProdutoID: p1.ID, ClienteID: &c.ID, Conteudo: "um"},
		{Tipo: interaction.TipoComentario, ProdutoID: p1.ID, ClienteID: &c.ID, Conteudo: "dois"},
	} {
		require.NoError(t, repo.Create(ctx, &i))
	}

	counts, err := repo.CountByTipo(ctx, p1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[interaction.TipoCurtida])
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%camiseta%`, likePattern("camiseta"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\d%`, likePattern(`c:\d`))
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Produtos()

	for _, p := range []product.Produto{
		{Nome: "Camiseta 100% algodao", Preco: 10},
		{Nome: "Camiseta basica", Preco: 10},
		{Nome: "bone_aba_reta", Preco: 10},
	} {
		require.NoError(t, repo.Create(ctx, &p))
	}

	tests := []struct {
		busca string
		want  int64
	}{
		{"%", 1},
		{"100%", 1},
		{"_", 1},
		{"camiseta", 2},
		{"x%y", 0},
	}
	for _, tc := range tests {
		_, total, err := repo.List(ctx, product.ListFilter{Busca: tc.busca})
		require.NoError(t, err)
		assert.Equal(t, tc.want, total, tc.busca)
	}
}
