package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"storefront/internal/platform/validate"
)

var ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")

// Import column order; the first row is a header.
const (
	colNome = iota
	colCategoria
	colPreco
	colDescricao
	colEstoque
)

type RowError struct {
	Linha int    `json:"linha"`
	Erro  string `json:"erro"`
}

type ImportResult struct {
	Criados   int        `json:"criados"`
	Ignorados int        `json:"ignorados"`
	Erros     []RowError `json:"erros"`
}

// Import creates one product per row of the first sheet of an .xlsx workbook.
// Bad rows are skipped and reported; they do not abort the import.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrInvalidSpreadsheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}

	res := &ImportResult{Erros: []RowError{}}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line := i + 1

		if blank(row) {
			res.Ignorados++
			continue
		}

		in, err := parseRow(row)
		if err != nil {
			res.Ignorados++
			res.Erros = append(res.Erros, RowError{Linha: line, Erro: err.Error()})
			continue
		}
		if _, err := s.Create(ctx, in); err != nil {
			if isValidation(err) {
				res.Ignorados++
				res.Erros = append(res.Erros, RowError{Linha: line, Erro: err.Error()})
				continue
			}
			return res, err
		}
		res.Criados++
	}
	return res, nil
}

func parseRow(row []string) (Input, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	preco, err := strconv.ParseFloat(strings.ReplaceAll(cell(colPreco), ",", "."), 64)
	if err != nil || !finite(preco) {
		return Input{}, fmt.Errorf("preco invalido: %q", cell(colPreco))
	}

	estoque := 0
	if v := cell(colEstoque); v != "" {
		estoque, err = strconv.Atoi(v)
		if err != nil {
			return Input{}, fmt.Errorf("estoque invalido: %q", v)
		}
	}

	return Input{
		Nome:      cell(colNome),
		Categoria: cell(colCategoria),
		Preco:     preco,
		Descricao: cell(colDescricao),
		Estoque:   estoque,
	}, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isValidation(err error) bool {
	return errors.Is(err, ErrNameRequired) || errors.Is(err, ErrInvalidPrice) || errors.Is(err, ErrInvalidStock) ||
		errors.Is(err, validate.ErrTooLong)
}
