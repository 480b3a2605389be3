package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// Valores por defecto de paginación. Las páginas se numeran desde cero.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

const dateLayout = "2006-01-02"

func parsePagination(r *http.Request) (page, size int) {
	page = 0
	size = defaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			size = v
		}
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// parseTransactionFilter lee los filtros opcionales del historial. Las
// fechas llegan como YYYY-MM-DD; toDate es inclusivo hasta fin de día.
func parseTransactionFilter(r *http.Request) (model.TransactionFilter, error) {
	filter := model.TransactionFilter{
		AccountNumber: r.URL.Query().Get("accountNumber"),
		Status:        r.URL.Query().Get("status"),
	}

	if raw := r.URL.Query().Get("fromDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, fmt.Errorf("fromDate debe tener formato YYYY-MM-DD")
		}
		filter.From = &t
	}
	if raw := r.URL.Query().Get("toDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, fmt.Errorf("toDate debe tener formato YYYY-MM-DD")
		}
		filter.To = &t
	}
	return filter, nil
}
