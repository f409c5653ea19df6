package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/bkostadinov/finman/internal/repository"
)

// Serialization format for creation dates
const dateLayout = "02/01/2006"

// queryFromRequest reads listing parameters from the url query string.
// Malformed numbers are left zero and fall back to defaults on Normalize
func queryFromRequest(r *http.Request) repository.Query {
	values := r.URL.Query()

	page, _ := strconv.Atoi(values.Get("page"))
	pageSize, _ := strconv.Atoi(values.Get("page_size"))

	return repository.Query{
		Search:   values.Get("search"),
		SortBy:   values.Get("sort_by"),
		Order:    values.Get("order"),
		Page:     page,
		PageSize: pageSize,
	}
}

// idFromRequest parses the id path segment. Responds not found on garbage:
// a malformed id can't name an existing resource
func idFromRequest(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
