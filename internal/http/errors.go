package api

import (
	"errors"
	"net/http"

	"storefront/internal/domain/admin"
	"storefront/internal/domain/customer"
	"storefront/internal/domain/interaction"
	"storefront/internal/domain/product"
	"storefront/internal/domain/verification"
	"storefront/internal/platform/apperr"
	"storefront/internal/platform/validate"
)

var (
	errInvalidBody = apperr.BadRequest("CORPO_INVALIDO", "corpo da requisicao invalido", nil)
	errInvalidID   = apperr.BadRequest("ID_INVALIDO", "id invalido", nil)
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		slogLogger.Error("request failed", "code", appErr.Code, "error", err)
	}
	writeJSON(w, appErr.StatusCode(), envelope{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("ERRO_INTERNO", "erro interno do servidor", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	// validation
	case errors.Is(err, validate.ErrInvalidEmail):
		return apperr.BadRequest("EMAIL_INVALIDO", "email invalido", err)
	case errors.Is(err, validate.ErrPasswordTooShort):
		return apperr.BadRequest("SENHA_CURTA", "a senha deve ter pelo menos 6 caracteres", err)
	case errors.Is(err, validate.ErrPasswordTooLong):
		return apperr.BadRequest("SENHA_LONGA", "a senha deve ter no maximo 72 bytes", err)
	case errors.Is(err, validate.ErrTooLong):
		return apperr.BadRequest("CAMPO_MUITO_LONGO", validate.FieldOf(err)+" excede o tamanho maximo", err)
	case errors.Is(err, validate.ErrNameRequired), errors.Is(err, product.ErrNameRequired):
		return apperr.BadRequest("NOME_OBRIGATORIO", "nome e obrigatorio", err)
	case errors.Is(err, admin.ErrInvalidAccessLevel):
		return apperr.BadRequest("NIVEL_INVALIDO", "nivel de acesso invalido", err)

	// tokens and codes
	case errors.Is(err, verification.ErrTokenExpired):
		return apperr.BadRequest("TOKEN_EXPIRADO", "token expirado", err)
	case errors.Is(err, verification.ErrTokenInvalid):
		return apperr.BadRequest("TOKEN_INVALIDO", "token invalido ou ja utilizado", err)
	case errors.Is(err, customer.ErrInvalidResetCode):
		return apperr.BadRequest("CODIGO_INVALIDO", "codigo invalido ou ja utilizado", err)

	// admins
	case errors.Is(err, admin.ErrInvalidCredentials), errors.Is(err, customer.ErrInvalidCredentials):
		return apperr.Unauthorized("CREDENCIAIS_INVALIDAS", "email ou senha incorretos", err)
	case errors.Is(err, admin.ErrForbidden):
		return apperr.Forbidden("NIVEL_INSUFICIENTE", "nivel de acesso insuficiente", err)
	case errors.Is(err, admin.ErrNotFound):
		return apperr.NotFound("ADMIN_NAO_ENCONTRADO", "administrador nao encontrado", err)
	case errors.Is(err, admin.ErrEmailTaken), errors.Is(err, customer.ErrEmailTaken):
		return apperr.Conflict("EMAIL_EM_USO", "email ja cadastrado", err)
	case errors.Is(err, admin.ErrSelfDelete):
		return apperr.BadRequest("AUTO_EXCLUSAO", "um administrador nao pode excluir a si mesmo", err)
	case errors.Is(err, admin.ErrLastSuperAdmin):
		return apperr.Conflict("ULTIMO_SUPERADMIN", "nao e possivel remover o ultimo SUPERADMIN", err)
	case errors.Is(err, admin.ErrSuperAdminExists):
		return apperr.Conflict("SUPERADMIN_EXISTENTE", "ja existe um SUPERADMIN", err)

	// clientes
	case errors.Is(err, customer.ErrNotFound):
		return apperr.NotFound("CLIENTE_NAO_ENCONTRADO", "cliente nao encontrado", err)
	case errors.Is(err, customer.ErrEmailNotVerified):
		return apperr.Forbidden("EMAIL_NAO_VERIFICADO", "confirme seu email antes de entrar", err)
	case errors.Is(err, customer.ErrAlreadyVerified):
		return apperr.BadRequest("EMAIL_JA_VERIFICADO", "email ja verificado", err)

	// produtos
	case errors.Is(err, product.ErrNotFound), errors.Is(err, interaction.ErrProductNotFound):
		return apperr.NotFound("PRODUTO_NAO_ENCONTRADO", "produto nao encontrado", err)
	case errors.Is(err, product.ErrInvalidPrice):
		return apperr.BadRequest("PRECO_INVALIDO", "preco invalido", err)
	case errors.Is(err, product.ErrInvalidStock):
		return apperr.BadRequest("ESTOQUE_INVALIDO", "estoque invalido", err)
	case errors.Is(err, product.ErrInvalidFilter):
		return apperr.BadRequest("FILTRO_INVALIDO", "precoMin nao pode ser maior que precoMax", err)
	case errors.Is(err, product.ErrInvalidSpreadsheet):
		return apperr.BadRequest("PLANILHA_INVALIDA", "arquivo .xlsx invalido", err)

	// interacoes
	case errors.Is(err, interaction.ErrNotFound):
		return apperr.NotFound("INTERACAO_NAO_ENCONTRADA", "interacao nao encontrada", err)
	case errors.Is(err, interaction.ErrInvalidTipo):
		return apperr.BadRequest("TIPO_INVALIDO", "tipo de interacao invalido", err)
	case errors.Is(err, interaction.ErrMissingProdutoID):
		return apperr.BadRequest("PRODUTO_OBRIGATORIO", "produtoId e obrigatorio", err)
	case errors.Is(err, interaction.ErrContentRequired):
		return apperr.BadRequest("CONTEUDO_OBRIGATORIO", "conteudo e obrigatorio", err)
	case errors.Is(err, interaction.ErrInvalidNota):
		return apperr.BadRequest("NOTA_INVALIDA", "nota deve estar entre 1 e 5", err)
	case errors.Is(err, interaction.ErrReplyNotAllowed):
		return apperr.BadRequest("RESPOSTA_NAO_PERMITIDA", "respostas de administradores usam /interacoes/{id}/resposta", err)
	case errors.Is(err, interaction.ErrAlreadyLiked):
		return apperr.Conflict("CURTIDA_DUPLICADA", "produto ja curtido", err)
	case errors.Is(err, interaction.ErrForbidden):
		return apperr.Forbidden("ACESSO_NEGADO", "sem permissao para esta interacao", err)

	default:
		return apperr.FromError(err)
	}
}
