package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tableview/internal/core"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrBadRequest, err)
	}
	return nil
}

func viewID(r *http.Request) string {
	return chi.URLParam(r, "viewID")
}

// splitList splits a comma-separated form value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type openViewRequest struct {
	Source string `json:"source"`
}

type columnRequest struct {
	Column int `json:"column"`
}

type sortRequest struct {
	Column    int  `json:"column"`
	Ascending bool `json:"ascending"`
}

type naturalRequest struct {
	Enabled bool `json:"enabled"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type filterToggleRequest struct {
	Value string `json:"value"`
	All   bool   `json:"all"`
}

type columnEnabledRequest struct {
	Index   int  `json:"index"`
	Enabled bool `json:"enabled"`
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type resizeRequest struct {
	Column int     `json:"column"`
	Width  float64 `json:"width"`
}

type cellRequest struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

type nameRequest struct {
	Name string `json:"name"`
}
